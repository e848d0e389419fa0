package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jwliao/babymall-backend/config"
	"github.com/jwliao/babymall-backend/internal/app/controller"
	"github.com/jwliao/babymall-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	categoryController  *controller.CategoryController
	attributeController *controller.AttributeController
	productController   *controller.ProductController
	uploadController    *controller.UploadController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	categoryController *controller.CategoryController,
	attributeController *controller.AttributeController,
	productController *controller.ProductController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		categoryController:  categoryController,
		attributeController: attributeController,
		productController:   productController,
		uploadController:    uploadController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "BABYMALL API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.authMiddleware.OptionalAuthenticate(), r.categoryController.ListCategories)

			admin := categories.Group("")
			admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
			{
				admin.POST("", r.categoryController.CreateCategory)
				admin.POST("/sync", r.categoryController.SyncCategories)
				admin.DELETE("/sub-categories", r.categoryController.RemoveAllSubCategories)

				admin.PUT("/:id", r.categoryController.UpdateCategory)
				admin.DELETE("/:id", r.categoryController.DeleteCategory)

				admin.POST("/:id/attributes", r.categoryController.AttachAttribute)
				admin.PUT("/:id/attributes/:attributeId", r.categoryController.UpdateCategoryAttribute)
				admin.DELETE("/:id/attributes/:attributeId", r.categoryController.DetachAttribute)
			}
		}

		attributes := v1.Group("/attributes")
		{
			attributes.GET("", r.attributeController.ListAttributes)
			attributes.GET("/for-selection", r.attributeController.AttributesForSelection)
			attributes.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.attributeController.CreateAttribute,
			)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.authMiddleware.OptionalAuthenticate(), r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProductByID)

			admin := products.Group("")
			admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
			{
				admin.GET("/export", r.productController.ExportCatalog)
				admin.POST("", r.productController.CreateProduct)
				admin.PUT("/:id", r.productController.UpdateProduct)
				admin.DELETE("/:id", r.productController.DeleteProduct)
			}
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
