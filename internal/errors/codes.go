package errors

// Error code constants returned to clients.
// Format: CATEGORY_SPECIFIC_DETAIL. The admin UI maps codes to explanations,
// so invariant-guard failures carry a distinct code per blocked reason.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_ALREADY_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Categories (CATEGORY_) ====================
	CategoryNotFound      = "CATEGORY_NOT_FOUND"
	CategoryNameExists    = "CATEGORY_NAME_EXISTS"  // duplicate (name, parent)
	CategorySelfParent    = "CATEGORY_SELF_PARENT"  // category set as its own parent
	CategoryCycle         = "CATEGORY_CYCLE"        // reparent would create a cycle
	CategoryHasChildren   = "CATEGORY_HAS_CHILDREN" // delete blocked by subcategories
	CategoryInUse         = "CATEGORY_IN_USE"       // delete blocked by linked products
	CategoryParentMissing = "CATEGORY_PARENT_MISSING"

	// ==================== Attributes (ATTRIBUTE_) ====================
	AttributeNotFound   = "ATTRIBUTE_NOT_FOUND"
	AttributeNameExists = "ATTRIBUTE_NAME_EXISTS"

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
