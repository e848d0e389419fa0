package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/internal/app/service"
	"github.com/jwliao/babymall-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryControllerTest(t *testing.T) (*gin.Engine, service.CategoryService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	categoryRepo := repository.NewCategoryRepository(testDB)
	attributeRepo := repository.NewAttributeRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	categoryService := service.NewCategoryService(categoryRepo, attributeRepo, productRepo, testDB)
	categoryController := NewCategoryController(categoryService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/categories", categoryController.ListCategories)
	router.POST("/categories", categoryController.CreateCategory)
	router.PUT("/categories/:id", categoryController.UpdateCategory)
	router.DELETE("/categories/:id", categoryController.DeleteCategory)
	router.POST("/categories/sync", categoryController.SyncCategories)
	router.POST("/categories/:id/attributes", categoryController.AttachAttribute)
	router.DELETE("/categories/:id/attributes/:attributeId", categoryController.DetachAttribute)

	return router, categoryService, testDB
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCategoryController_CreateAndList(t *testing.T) {
	router, _, _ := setupCategoryControllerTest(t)

	w := doJSON(t, router, "POST", "/categories", gin.H{"name": "Clothing"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Category model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Clothing", created.Category.Name)
	assert.Equal(t, "clothing", created.Category.Slug)

	w = doJSON(t, router, "POST", "/categories", gin.H{"name": "Bodysuits", "parent_id": created.Category.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "GET", "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Categories []model.Category  `json:"categories"`
		Tree       []json.RawMessage `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Len(t, listing.Categories, 2)
	assert.Len(t, listing.Tree, 1)
}

func TestCategoryController_Create_Validation(t *testing.T) {
	router, _, _ := setupCategoryControllerTest(t)

	// Missing name fails binding
	w := doJSON(t, router, "POST", "/categories", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown parent
	w = doJSON(t, router, "POST", "/categories", gin.H{"name": "Orphan", "parent_id": 9999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_PARENT_MISSING")

	// Duplicate sibling
	doJSON(t, router, "POST", "/categories", gin.H{"name": "Clothing"})
	w = doJSON(t, router, "POST", "/categories", gin.H{"name": "Clothing"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_NAME_EXISTS")
}

func TestCategoryController_Update_ParentFieldSemantics(t *testing.T) {
	router, svc, _ := setupCategoryControllerTest(t)

	main, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Clothing"})
	require.NoError(t, err)
	sub, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Bodysuits", ParentID: &main.ID})
	require.NoError(t, err)

	// Absent parent_id leaves the parent untouched
	w := doJSON(t, router, "PUT", fmt.Sprintf("/categories/%d", sub.ID), gin.H{"name": "Rompers"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Category model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Rompers", updated.Category.Name)
	require.NotNil(t, updated.Category.ParentID)
	assert.Equal(t, main.ID, *updated.Category.ParentID)

	// Explicit null detaches to top level
	w = doJSON(t, router, "PUT", fmt.Sprintf("/categories/%d", sub.ID), json.RawMessage(`{"parent_id": null}`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Nil(t, updated.Category.ParentID)

	// A numeric parent_id moves the category
	w = doJSON(t, router, "PUT", fmt.Sprintf("/categories/%d", sub.ID), gin.H{"parent_id": main.ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.Category.ParentID)
	assert.Equal(t, main.ID, *updated.Category.ParentID)

	// Garbage parent_id is a 400
	w = doJSON(t, router, "PUT", fmt.Sprintf("/categories/%d", sub.ID), json.RawMessage(`{"parent_id": "nope"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryController_Update_CycleConflict(t *testing.T) {
	router, svc, _ := setupCategoryControllerTest(t)

	main, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Clothing"})
	require.NoError(t, err)
	sub, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Bodysuits", ParentID: &main.ID})
	require.NoError(t, err)

	w := doJSON(t, router, "PUT", fmt.Sprintf("/categories/%d", main.ID), gin.H{"parent_id": sub.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_CYCLE")

	w = doJSON(t, router, "PUT", fmt.Sprintf("/categories/%d", main.ID), gin.H{"parent_id": main.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_SELF_PARENT")
}

func TestCategoryController_Delete_Guards(t *testing.T) {
	router, svc, testDB := setupCategoryControllerTest(t)

	main, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Clothing"})
	require.NoError(t, err)
	sub, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Bodysuits", ParentID: &main.ID})
	require.NoError(t, err)

	w := doJSON(t, router, "DELETE", fmt.Sprintf("/categories/%d", main.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_HAS_CHILDREN")

	product := model.Product{Name: "Onesie", SubCategoryID: &sub.ID}
	require.NoError(t, testDB.Create(&product).Error)

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/categories/%d", sub.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_IN_USE")

	w = doJSON(t, router, "DELETE", "/categories/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CATEGORY_NOT_FOUND")

	w = doJSON(t, router, "DELETE", "/categories/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryController_Sync(t *testing.T) {
	router, _, testDB := setupCategoryControllerTest(t)

	require.NoError(t, testDB.Create(&model.Product{Name: "Stacker", Category: "Toys"}).Error)

	w := doJSON(t, router, "POST", "/categories/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		CreatedMain int `json:"created_main"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.CreatedMain)

	// Second run is a no-op
	w = doJSON(t, router, "POST", "/categories/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0, result.CreatedMain)
}

func TestCategoryController_AttachDetachAttribute(t *testing.T) {
	router, svc, _ := setupCategoryControllerTest(t)

	main, err := svc.CreateCategory(service.CreateCategoryInput{Name: "Clothing"})
	require.NoError(t, err)

	w := doJSON(t, router, "POST", fmt.Sprintf("/categories/%d/attributes", main.ID), gin.H{
		"name":  "material",
		"label": "Material",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var attached struct {
		Attribute model.Attribute `json:"attribute"`
		Category  model.Category  `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attached))
	assert.Equal(t, "material", attached.Attribute.Name)
	assert.Len(t, attached.Category.Attributes, 1)

	w = doJSON(t, router, "POST", fmt.Sprintf("/categories/%d/attributes", main.ID), gin.H{"name": "material"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/categories/%d/attributes/%d", main.ID, attached.Attribute.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detached struct {
		Category model.Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detached))
	assert.Empty(t, detached.Category.Attributes)
}
