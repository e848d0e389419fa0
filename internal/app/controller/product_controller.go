package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jwliao/babymall-backend/internal/app/service"
	apperrors "github.com/jwliao/babymall-backend/internal/errors"
	"github.com/jwliao/babymall-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
	exportService  service.ExportService
}

func NewProductController(productService service.ProductService, exportService service.ExportService) *ProductController {
	return &ProductController{
		productService: productService,
		exportService:  exportService,
	}
}

type ProductAttributeValueRequest struct {
	AttributeID uint   `json:"attribute_id"`
	Value       string `json:"value"`
}

type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	Bestseller  bool     `json:"bestseller"`

	Category      string `json:"category"`
	SubCategory   string `json:"sub_category"`
	ThirdCategory string `json:"third_category"`

	CategoryID      *uint `json:"category_id"`
	SubCategoryID   *uint `json:"sub_category_id"`
	ThirdCategoryID *uint `json:"third_category_id"`

	Attributes []ProductAttributeValueRequest `json:"attributes"`
}

func (req *ProductRequest) toInput() service.ProductInput {
	input := service.ProductInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Images:          req.Images,
		Sizes:           req.Sizes,
		Bestseller:      req.Bestseller,
		Category:        req.Category,
		SubCategory:     req.SubCategory,
		ThirdCategory:   req.ThirdCategory,
		CategoryID:      req.CategoryID,
		SubCategoryID:   req.SubCategoryID,
		ThirdCategoryID: req.ThirdCategoryID,
	}
	if req.Attributes != nil {
		input.Attributes = make([]service.ProductAttributeInput, 0, len(req.Attributes))
		for _, attr := range req.Attributes {
			input.Attributes = append(input.Attributes, service.ProductAttributeInput{
				AttributeID: attr.AttributeID,
				Value:       attr.Value,
			})
		}
	}
	return input
}

// ListProducts returns products with pagination and optional search
// GET /api/v1/products
// Query params: page, limit, search, all
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	all := c.Query("all") == "true"

	products, pagination, err := ctrl.productService.ListProducts(service.ProductListOptions{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		All:    all,
	})
	if err != nil {
		log.Error("Failed to list products", err, nil)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination,
	})
}

// GetProductByID returns a single product with its attribute values
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a product, resolving its category chain (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product, err := ctrl.productService.CreateProduct(req.toInput())
	if err != nil {
		ctrl.respondProductError(c, err, "Failed to create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct updates a product, re-resolving its category chain (Admin only)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, req.toInput())
	if err != nil {
		ctrl.respondProductError(c, err, "Failed to update product")
		return
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product (Admin only)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		ctrl.respondProductError(c, err, "Failed to delete product")
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// ExportCatalog streams the full catalog as an XLSX download (Admin only)
// GET /api/v1/products/export
func (ctrl *ProductController) ExportCatalog(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.exportService.ExportCatalog()
	if err != nil {
		log.Error("Catalog export failed", err, nil)
		apperrors.InternalError(c, "Failed to export catalog")
		return
	}

	filename := fmt.Sprintf("catalog-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (ctrl *ProductController) respondProductError(c *gin.Context, err error, fallback string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrProductNameRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Product name is required")
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.BadRequest(c, apperrors.CategoryNotFound, "Selected category does not exist")
	default:
		log.Error(fallback, err, nil)
		apperrors.InternalError(c, fallback)
	}
}
