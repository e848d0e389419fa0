package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jwliao/babymall-backend/internal/app/service"
	apperrors "github.com/jwliao/babymall-backend/internal/errors"
	"github.com/jwliao/babymall-backend/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCategoryRequest keeps parent_id as raw JSON so an absent field and an
// explicit null stay distinguishable: null detaches the category to top level,
// a missing field leaves the parent untouched.
type UpdateCategoryRequest struct {
	Name     string          `json:"name"`
	ParentID json.RawMessage `json:"parent_id"`
}

type CategoryAttributeRequest struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

// ListCategories returns the flat list and nested tree of active categories
// GET /api/v1/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	listing, err := ctrl.categoryService.ListCategories()
	if err != nil {
		log.Error("Failed to list categories", err, nil)
		apperrors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": listing.Categories,
		"tree":       listing.Tree,
	})
}

// CreateCategory creates a category, optionally under a parent (Admin only)
// POST /api/v1/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid category creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	category, err := ctrl.categoryService.CreateCategory(service.CreateCategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		ctrl.respondCategoryError(c, err, "Failed to create category")
		return
	}

	log.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": category,
	})
}

// UpdateCategory renames and/or reparents a category (Admin only)
// PUT /api/v1/categories/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid category update request", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	input := service.UpdateCategoryInput{}
	if req.Name != "" {
		input.Name = &req.Name
	}
	if len(req.ParentID) > 0 {
		input.SetParent = true
		if string(req.ParentID) != "null" {
			var parentID uint
			if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
				apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "parent_id must be a number or null")
				return
			}
			input.ParentID = &parentID
		}
	}

	category, err := ctrl.categoryService.UpdateCategory(id, input)
	if err != nil {
		ctrl.respondCategoryError(c, err, "Failed to update category")
		return
	}

	log.Info("Category updated", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// DeleteCategory removes a category if nothing depends on it (Admin only)
// DELETE /api/v1/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(id); err != nil {
		ctrl.respondCategoryError(c, err, "Failed to delete category")
		return
	}

	log.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}

// SyncCategories backfills main categories from product name strings (Admin only)
// POST /api/v1/categories/sync
func (ctrl *CategoryController) SyncCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.categoryService.SyncFromProducts()
	if err != nil {
		log.Error("Category sync failed", err, nil)
		apperrors.InternalError(c, "Failed to sync categories from products")
		return
	}

	log.Info("Categories synced from products", map[string]interface{}{
		"created_main": result.CreatedMain,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":      "Categories synced successfully",
		"created_main": result.CreatedMain,
		"categories":   result.Listing.Categories,
		"tree":         result.Listing.Tree,
	})
}

// RemoveAllSubCategories deletes every non-root category and detaches the
// products that referenced them (Admin only)
// DELETE /api/v1/categories/sub-categories
func (ctrl *CategoryController) RemoveAllSubCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cleanup, err := ctrl.categoryService.RemoveAllSubCategories()
	if err != nil {
		log.Error("Failed to remove subcategories", err, nil)
		apperrors.InternalError(c, "Failed to remove subcategories")
		return
	}

	log.Info("All subcategories removed", map[string]interface{}{
		"removed":          cleanup.Removed,
		"updated_products": cleanup.UpdatedProducts,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":          "Subcategories removed successfully",
		"removed":          cleanup.Removed,
		"updated_products": cleanup.UpdatedProducts,
	})
}

// AttachAttribute upserts an attribute by name and links it to the category
// (Admin only)
// POST /api/v1/categories/:id/attributes
func (ctrl *CategoryController) AttachAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CategoryAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	category, attribute, err := ctrl.categoryService.AttachAttribute(id, service.CategoryAttributeInput{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		ctrl.respondCategoryError(c, err, "Failed to attach attribute")
		return
	}

	log.Info("Attribute attached to category", map[string]interface{}{
		"category_id":  category.ID,
		"attribute_id": attribute.ID,
		"attribute":    attribute.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Attribute attached successfully",
		"category":  category,
		"attribute": attribute,
	})
}

// UpdateCategoryAttribute updates an attribute's fields in the context of a
// category, linking it if it was not yet attached (Admin only)
// PUT /api/v1/categories/:id/attributes/:attributeId
func (ctrl *CategoryController) UpdateCategoryAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseIDParam(c, "attributeId")
	if !ok {
		return
	}

	var req CategoryAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	category, attribute, err := ctrl.categoryService.UpdateCategoryAttribute(id, attributeID, service.CategoryAttributeInput{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		ctrl.respondCategoryError(c, err, "Failed to update attribute")
		return
	}

	log.Info("Category attribute updated", map[string]interface{}{
		"category_id":  category.ID,
		"attribute_id": attribute.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Attribute updated successfully",
		"category":  category,
		"attribute": attribute,
	})
}

// DetachAttribute unlinks an attribute from a category and strips its values
// from every product (Admin only)
// DELETE /api/v1/categories/:id/attributes/:attributeId
func (ctrl *CategoryController) DetachAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseIDParam(c, "attributeId")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.DetachAttribute(id, attributeID)
	if err != nil {
		ctrl.respondCategoryError(c, err, "Failed to detach attribute")
		return
	}

	log.Info("Attribute detached from category", map[string]interface{}{
		"category_id":  category.ID,
		"attribute_id": attributeID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Attribute detached successfully",
		"category": category,
	})
}

// respondCategoryError maps category service errors onto error codes the
// admin UI understands.
func (ctrl *CategoryController) respondCategoryError(c *gin.Context, err error, fallback string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
	case errors.Is(err, service.ErrCategoryNameRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
	case errors.Is(err, service.ErrCategoryNameConflict):
		apperrors.Conflict(c, apperrors.CategoryNameExists, "A category with this name already exists under the same parent")
	case errors.Is(err, service.ErrCategoryParentNotFound):
		apperrors.BadRequest(c, apperrors.CategoryParentMissing, "Selected parent category does not exist")
	case errors.Is(err, service.ErrCategorySelfParent):
		apperrors.BadRequest(c, apperrors.CategorySelfParent, "A category cannot be its own parent")
	case errors.Is(err, service.ErrCategoryCycle):
		apperrors.Conflict(c, apperrors.CategoryCycle, "This parent change would create a cycle in the category tree")
	case errors.Is(err, service.ErrCategoryHasChildren):
		apperrors.Conflict(c, apperrors.CategoryHasChildren, "Remove or reassign subcategories before deleting this category")
	case errors.Is(err, service.ErrCategoryInUse):
		apperrors.Conflict(c, apperrors.CategoryInUse, "Products still reference this category")
	case errors.Is(err, service.ErrAttributeNotFound):
		apperrors.NotFound(c, apperrors.AttributeNotFound, "Attribute not found")
	case errors.Is(err, service.ErrAttributeFieldsMissing):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Attribute name and label are required")
	case errors.Is(err, service.ErrAttributeNameConflict):
		apperrors.Conflict(c, apperrors.AttributeNameExists, "An attribute with this name already exists")
	default:
		log.Error(fallback, err, nil)
		apperrors.InternalError(c, fallback)
	}
}

// parseIDParam parses a numeric path parameter, responding 400 on failure.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
