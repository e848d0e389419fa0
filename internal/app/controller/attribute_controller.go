package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jwliao/babymall-backend/internal/app/service"
	apperrors "github.com/jwliao/babymall-backend/internal/errors"
	"github.com/jwliao/babymall-backend/internal/middleware"
)

type AttributeController struct {
	attributeService service.AttributeService
}

func NewAttributeController(attributeService service.AttributeService) *AttributeController {
	return &AttributeController{attributeService: attributeService}
}

type CreateAttributeRequest struct {
	Name        string `json:"name" binding:"required"`
	Label       string `json:"label" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// ListAttributes returns all active attributes
// GET /api/v1/attributes
func (ctrl *AttributeController) ListAttributes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	attributes, err := ctrl.attributeService.ListAttributes()
	if err != nil {
		log.Error("Failed to list attributes", err, nil)
		apperrors.InternalError(c, "Failed to fetch attributes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attributes": attributes,
		"count":      len(attributes),
	})
}

// CreateAttribute creates a standalone attribute (Admin only)
// POST /api/v1/attributes
func (ctrl *AttributeController) CreateAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid attribute creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	attribute, err := ctrl.attributeService.CreateAttribute(service.CreateAttributeInput{
		Name:        req.Name,
		Label:       req.Label,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		if errors.Is(err, service.ErrAttributeNameConflict) {
			apperrors.Conflict(c, apperrors.AttributeNameExists, "An attribute with this name already exists")
			return
		}
		if errors.Is(err, service.ErrAttributeFieldsMissing) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Attribute name and label are required")
			return
		}
		log.Error("Failed to create attribute", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "Failed to create attribute")
		return
	}

	log.Info("Attribute created", map[string]interface{}{
		"attribute_id": attribute.ID,
		"name":         attribute.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Attribute created successfully",
		"attribute": attribute,
	})
}

// AttributesForSelection returns the attributes inherited by a category
// selection, ordered main to third with duplicates removed
// GET /api/v1/attributes/for-selection
// Query params: category_id, sub_category_id, third_category_id (all optional)
func (ctrl *AttributeController) AttributesForSelection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	selection := service.AttributeSelection{}
	var ok bool
	if selection.MainID, ok = parseOptionalIDQuery(c, "category_id"); !ok {
		return
	}
	if selection.SubID, ok = parseOptionalIDQuery(c, "sub_category_id"); !ok {
		return
	}
	if selection.ThirdID, ok = parseOptionalIDQuery(c, "third_category_id"); !ok {
		return
	}

	attributes, err := ctrl.attributeService.AttributesForSelection(selection)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to resolve attributes for selection", err, nil)
		apperrors.InternalError(c, "Failed to fetch attributes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attributes": attributes,
		"count":      len(attributes),
	})
}

// parseOptionalIDQuery parses a numeric query parameter that may be absent.
// The second return is false when the parameter was present but malformed.
func parseOptionalIDQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name+" parameter")
		return nil, false
	}
	value := uint(id)
	return &value, true
}
