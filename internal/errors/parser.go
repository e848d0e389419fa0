package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a storage error into a code and message suitable for the
// client. Sensitive detail stays out of the message; the code tells the admin
// UI what happened ("conflict" vs "validation" matters there, a duplicate name
// gets a rename suggestion rather than a generic failure).
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An unexpected error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// 2. PostgreSQL constraint violations

	// Unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// Foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "The operation conflicts with linked data",
		}
	}

	// Not null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 3. Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The service is temporarily unavailable. Please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "An unexpected error occurred. Please try again later",
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "idx_categories_name_parent") {
		return ErrorInfo{
			Code:    CategoryNameExists,
			Message: "A category with the same name already exists under the selected parent",
		}
	}

	if strings.Contains(errLower, "attributes") && strings.Contains(errLower, "name") {
		return ErrorInfo{
			Code:    AttributeNameExists,
			Message: "Attribute name must be unique",
		}
	}

	if strings.Contains(errLower, "users") && strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This email is already in use",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func notFoundMessage(context string) string {
	switch {
	case strings.Contains(context, "category"):
		return "Category not found"
	case strings.Contains(context, "attribute"):
		return "Attribute not found"
	case strings.Contains(context, "product"):
		return "Product not found"
	case strings.Contains(context, "user"):
		return "User not found"
	default:
		return "Requested data not found"
	}
}
