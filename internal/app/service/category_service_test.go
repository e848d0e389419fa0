package service

import (
	"context"
	"testing"

	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCategoryServiceTest(t *testing.T, opts ...CategoryServiceOption) (CategoryService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	categoryRepo := repository.NewCategoryRepository(testDB)
	attributeRepo := repository.NewAttributeRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	categoryService := NewCategoryService(categoryRepo, attributeRepo, productRepo, testDB, opts...)

	return categoryService, testDB
}

func mustCreateCategory(t *testing.T, svc CategoryService, name string, parentID *uint) *model.Category {
	category, err := svc.CreateCategory(CreateCategoryInput{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return category
}

func TestCategoryService_CreateCategory(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	category, err := svc.CreateCategory(CreateCategoryInput{Name: "  Baby Clothing  "})
	require.NoError(t, err)
	assert.Equal(t, "Baby Clothing", category.Name)
	assert.Equal(t, "baby-clothing", category.Slug)
	assert.Nil(t, category.ParentID)
	assert.True(t, category.IsActive)
	assert.NotNil(t, category.Attributes)

	sub, err := svc.CreateCategory(CreateCategoryInput{Name: "Bodysuits", ParentID: &category.ID})
	require.NoError(t, err)
	require.NotNil(t, sub.ParentID)
	assert.Equal(t, category.ID, *sub.ParentID)
}

func TestCategoryService_CreateCategory_NameRequired(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	_, err := svc.CreateCategory(CreateCategoryInput{Name: "   "})
	assert.ErrorIs(t, err, ErrCategoryNameRequired)
}

func TestCategoryService_CreateCategory_ParentNotFound(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	missing := uint(9999)
	_, err := svc.CreateCategory(CreateCategoryInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, ErrCategoryParentNotFound)
}

func TestCategoryService_CreateCategory_DuplicateSibling(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	main := mustCreateCategory(t, svc, "Clothing", nil)
	mustCreateCategory(t, svc, "Bodysuits", &main.ID)

	// Same name under the same parent is rejected
	_, err := svc.CreateCategory(CreateCategoryInput{Name: "Bodysuits", ParentID: &main.ID})
	assert.ErrorIs(t, err, ErrCategoryNameConflict)

	// Duplicate top-level names are rejected too, despite NULL parents
	_, err = svc.CreateCategory(CreateCategoryInput{Name: "Clothing"})
	assert.ErrorIs(t, err, ErrCategoryNameConflict)

	// The same name under a different parent is fine
	other := mustCreateCategory(t, svc, "Feeding", nil)
	_, err = svc.CreateCategory(CreateCategoryInput{Name: "Bodysuits", ParentID: &other.ID})
	assert.NoError(t, err)
}

func TestCategoryService_ListCategories_Tree(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	clothing := mustCreateCategory(t, svc, "Clothing", nil)
	feeding := mustCreateCategory(t, svc, "Feeding", nil)
	bodysuits := mustCreateCategory(t, svc, "Bodysuits", &clothing.ID)
	mustCreateCategory(t, svc, "Sleepwear", &clothing.ID)
	mustCreateCategory(t, svc, "Long Sleeve", &bodysuits.ID)
	_ = feeding

	listing, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Len(t, listing.Categories, 5)

	// Roots only at the top, sorted by name
	require.Len(t, listing.Tree, 2)
	assert.Equal(t, "Clothing", listing.Tree[0].Name)
	assert.Equal(t, "Feeding", listing.Tree[1].Name)

	// Children nest under their parent and keep name order
	require.Len(t, listing.Tree[0].Children, 2)
	assert.Equal(t, "Bodysuits", listing.Tree[0].Children[0].Name)
	assert.Equal(t, "Sleepwear", listing.Tree[0].Children[1].Name)

	// Third level
	require.Len(t, listing.Tree[0].Children[0].Children, 1)
	assert.Equal(t, "Long Sleeve", listing.Tree[0].Children[0].Children[0].Name)

	// A node never appears at a level other than its own
	assert.Empty(t, listing.Tree[1].Children)
}

func TestCategoryService_ListCategories_SkipsInactive(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	mustCreateCategory(t, svc, "Visible", nil)
	hidden := mustCreateCategory(t, svc, "Hidden", nil)
	require.NoError(t, testDB.Model(&model.Category{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	listing, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, listing.Categories, 1)
	assert.Equal(t, "Visible", listing.Categories[0].Name)
}

func TestCategoryService_CanReparent(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	main := mustCreateCategory(t, svc, "Clothing", nil)
	sub := mustCreateCategory(t, svc, "Bodysuits", &main.ID)
	third := mustCreateCategory(t, svc, "Long Sleeve", &sub.ID)
	other := mustCreateCategory(t, svc, "Feeding", nil)

	// Detaching to top level is always allowed
	assert.NoError(t, svc.CanReparent(main.ID, nil))

	// Self-parenting is rejected before any ancestor walk
	assert.ErrorIs(t, svc.CanReparent(main.ID, &main.ID), ErrCategorySelfParent)

	// Moving under a direct child creates a cycle
	assert.ErrorIs(t, svc.CanReparent(main.ID, &sub.ID), ErrCategoryCycle)

	// Moving under a deeper descendant creates a cycle too
	assert.ErrorIs(t, svc.CanReparent(main.ID, &third.ID), ErrCategoryCycle)

	// Moving under an unrelated category is fine
	assert.NoError(t, svc.CanReparent(sub.ID, &other.ID))

	// Unknown proposed parent
	missing := uint(9999)
	assert.ErrorIs(t, svc.CanReparent(sub.ID, &missing), ErrCategoryParentNotFound)
}

func TestCategoryService_UpdateCategory_RenameCascades(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	main := mustCreateCategory(t, svc, "Clothing", nil)
	sub := mustCreateCategory(t, svc, "Bodysuits", &main.ID)

	asMain := model.Product{Name: "Romper", Category: "Clothing", CategoryID: &main.ID}
	asSub := model.Product{Name: "Onesie", Category: "Clothing", CategoryID: &main.ID, SubCategory: "Bodysuits", SubCategoryID: &sub.ID}
	asThird := model.Product{Name: "Gift Set", ThirdCategory: "Clothing", ThirdCategoryID: &main.ID}
	require.NoError(t, testDB.Create(&asMain).Error)
	require.NoError(t, testDB.Create(&asSub).Error)
	require.NoError(t, testDB.Create(&asThird).Error)

	newName := "Apparel"
	updated, err := svc.UpdateCategory(main.ID, UpdateCategoryInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Apparel", updated.Name)

	// Slug is minted at creation and never refreshed
	assert.Equal(t, "clothing", updated.Slug)

	// Fresh dest struct per lookup: gorm folds a populated primary key into
	// the next query's conditions.
	var gotMain model.Product
	require.NoError(t, testDB.First(&gotMain, asMain.ID).Error)
	assert.Equal(t, "Apparel", gotMain.Category)

	var gotSub model.Product
	require.NoError(t, testDB.First(&gotSub, asSub.ID).Error)
	assert.Equal(t, "Apparel", gotSub.Category)
	assert.Equal(t, "Bodysuits", gotSub.SubCategory)

	// Third-level references keep the stale name unless the guard is on
	var gotThird model.Product
	require.NoError(t, testDB.First(&gotThird, asThird.ID).Error)
	assert.Equal(t, "Clothing", gotThird.ThirdCategory)

	// Renaming the sub level cascades to sub_category strings
	subName := "Rompers"
	_, err = svc.UpdateCategory(sub.ID, UpdateCategoryInput{Name: &subName})
	require.NoError(t, err)
	var gotRenamed model.Product
	require.NoError(t, testDB.First(&gotRenamed, asSub.ID).Error)
	assert.Equal(t, "Rompers", gotRenamed.SubCategory)
}

func TestCategoryService_UpdateCategory_RenameCascades_ThirdLevelGuard(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t, WithThirdLevelGuard(true))

	cat := mustCreateCategory(t, svc, "Long Sleeve", nil)

	product := model.Product{Name: "Winter Onesie", ThirdCategory: "Long Sleeve", ThirdCategoryID: &cat.ID}
	require.NoError(t, testDB.Create(&product).Error)

	newName := "Full Sleeve"
	_, err := svc.UpdateCategory(cat.ID, UpdateCategoryInput{Name: &newName})
	require.NoError(t, err)

	var got model.Product
	require.NoError(t, testDB.First(&got, product.ID).Error)
	assert.Equal(t, "Full Sleeve", got.ThirdCategory)
}

func TestCategoryService_UpdateCategory_Reparent(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	main := mustCreateCategory(t, svc, "Clothing", nil)
	sub := mustCreateCategory(t, svc, "Bodysuits", &main.ID)
	other := mustCreateCategory(t, svc, "Feeding", nil)

	// Move under another parent
	updated, err := svc.UpdateCategory(sub.ID, UpdateCategoryInput{SetParent: true, ParentID: &other.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, other.ID, *updated.ParentID)

	// Detach to top level with an explicit nil parent
	updated, err = svc.UpdateCategory(sub.ID, UpdateCategoryInput{SetParent: true, ParentID: nil})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID)

	// A cycle-creating move is rejected and nothing is persisted
	_, err = svc.UpdateCategory(main.ID, UpdateCategoryInput{SetParent: true, ParentID: &main.ID})
	assert.ErrorIs(t, err, ErrCategorySelfParent)

	grand := mustCreateCategory(t, svc, "Short Sleeve", &sub.ID)
	_, err = svc.UpdateCategory(sub.ID, UpdateCategoryInput{SetParent: true, ParentID: &grand.ID})
	assert.ErrorIs(t, err, ErrCategoryCycle)

	listing, err := svc.ListCategories()
	require.NoError(t, err)
	for _, cat := range listing.Categories {
		if cat.ID == sub.ID {
			assert.Nil(t, cat.ParentID, "rejected reparent must not be persisted")
		}
	}
}

func TestCategoryService_UpdateCategory_RenameConflict(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	mustCreateCategory(t, svc, "Clothing", nil)
	feeding := mustCreateCategory(t, svc, "Feeding", nil)

	taken := "Clothing"
	_, err := svc.UpdateCategory(feeding.ID, UpdateCategoryInput{Name: &taken})
	assert.ErrorIs(t, err, ErrCategoryNameConflict)

	// Saving a category under its own current name is not a conflict
	same := "Feeding"
	_, err = svc.UpdateCategory(feeding.ID, UpdateCategoryInput{Name: &same})
	assert.NoError(t, err)
}

func TestCategoryService_UpdateCategory_NotFound(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	name := "Anything"
	_, err := svc.UpdateCategory(9999, UpdateCategoryInput{Name: &name})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_DeleteCategory_Guards(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	assert.ErrorIs(t, svc.DeleteCategory(9999), ErrCategoryNotFound)

	main := mustCreateCategory(t, svc, "Clothing", nil)
	sub := mustCreateCategory(t, svc, "Bodysuits", &main.ID)

	// Blocked while subcategories exist
	assert.ErrorIs(t, svc.DeleteCategory(main.ID), ErrCategoryHasChildren)

	// Blocked while products reference the category at main or sub level
	product := model.Product{Name: "Onesie", SubCategory: "Bodysuits", SubCategoryID: &sub.ID}
	require.NoError(t, testDB.Create(&product).Error)
	assert.ErrorIs(t, svc.DeleteCategory(sub.ID), ErrCategoryInUse)

	require.NoError(t, testDB.Delete(&model.Product{}, product.ID).Error)
	require.NoError(t, svc.DeleteCategory(sub.ID))
	require.NoError(t, svc.DeleteCategory(main.ID))

	listing, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Empty(t, listing.Categories)
}

func TestCategoryService_DeleteCategory_AllowsRecreate(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	main := mustCreateCategory(t, svc, "Feeding", nil)
	sub := mustCreateCategory(t, svc, "Glass Bottles", &main.ID)

	require.NoError(t, svc.DeleteCategory(sub.ID))

	// The name/parent pair is free again after delete; the soft-deleted row
	// must not trip the uniqueness check or the index.
	recreated, err := svc.CreateCategory(CreateCategoryInput{Name: "Glass Bottles", ParentID: &main.ID})
	require.NoError(t, err)
	assert.NotEqual(t, sub.ID, recreated.ID)
	assert.Equal(t, "Glass Bottles", recreated.Name)

	// Same at the top level
	require.NoError(t, svc.DeleteCategory(recreated.ID))
	require.NoError(t, svc.DeleteCategory(main.ID))
	again, err := svc.CreateCategory(CreateCategoryInput{Name: "Feeding"})
	require.NoError(t, err)
	assert.Equal(t, "Feeding", again.Name)
}

func TestCategoryService_DeleteCategory_ThirdLevelRefs(t *testing.T) {
	// By default a third-level product reference does not block deletion
	svc, testDB := setupCategoryServiceTest(t)

	cat := mustCreateCategory(t, svc, "Long Sleeve", nil)
	product := model.Product{Name: "Winter Onesie", ThirdCategory: "Long Sleeve", ThirdCategoryID: &cat.ID}
	require.NoError(t, testDB.Create(&product).Error)

	assert.NoError(t, svc.DeleteCategory(cat.ID))

	// With the guard enabled the same reference blocks deletion
	guarded, guardedDB := setupCategoryServiceTest(t, WithThirdLevelGuard(true))

	cat2 := mustCreateCategory(t, guarded, "Short Sleeve", nil)
	product2 := model.Product{Name: "Summer Onesie", ThirdCategory: "Short Sleeve", ThirdCategoryID: &cat2.ID}
	require.NoError(t, guardedDB.Create(&product2).Error)

	assert.ErrorIs(t, guarded.DeleteCategory(cat2.ID), ErrCategoryInUse)
}

func TestCategoryService_AttachAttribute(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	cat := mustCreateCategory(t, svc, "Clothing", nil)

	category, attribute, err := svc.AttachAttribute(cat.ID, CategoryAttributeInput{
		Name:  "material",
		Label: "Material",
	})
	require.NoError(t, err)
	assert.Equal(t, "material", attribute.Name)
	assert.Equal(t, "Material", attribute.Label)
	assert.Equal(t, model.DefaultAttributeColor, attribute.Color)
	require.Len(t, category.Attributes, 1)

	// Attaching a known name upserts: the label refreshes, no second
	// attribute row appears
	category, attribute, err = svc.AttachAttribute(cat.ID, CategoryAttributeInput{
		Name:  "material",
		Label: "Fabric",
		Color: "#22c55e",
	})
	require.NoError(t, err)
	assert.Equal(t, "Fabric", attribute.Label)
	assert.Equal(t, "#22c55e", attribute.Color)
	require.Len(t, category.Attributes, 1)

	var count int64
	require.NoError(t, testDB.Model(&model.Attribute{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCategoryService_AttachAttribute_Validation(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	cat := mustCreateCategory(t, svc, "Clothing", nil)

	_, _, err := svc.AttachAttribute(cat.ID, CategoryAttributeInput{Name: "", Label: "Material"})
	assert.ErrorIs(t, err, ErrAttributeFieldsMissing)

	_, _, err = svc.AttachAttribute(cat.ID, CategoryAttributeInput{Name: "material", Label: "  "})
	assert.ErrorIs(t, err, ErrAttributeFieldsMissing)

	_, _, err = svc.AttachAttribute(9999, CategoryAttributeInput{Name: "material", Label: "Material"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryService_AttachAttribute_OrderPreserved(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	cat := mustCreateCategory(t, svc, "Clothing", nil)

	for _, name := range []string{"material", "size", "season"} {
		_, _, err := svc.AttachAttribute(cat.ID, CategoryAttributeInput{Name: name, Label: name})
		require.NoError(t, err)
	}

	// Re-attaching an already linked attribute must not duplicate or reorder
	category, _, err := svc.AttachAttribute(cat.ID, CategoryAttributeInput{Name: "material", Label: "Material"})
	require.NoError(t, err)

	require.Len(t, category.Attributes, 3)
	assert.Equal(t, "material", category.Attributes[0].Name)
	assert.Equal(t, "size", category.Attributes[1].Name)
	assert.Equal(t, "season", category.Attributes[2].Name)
}

func TestCategoryService_UpdateCategoryAttribute(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	cat := mustCreateCategory(t, svc, "Clothing", nil)
	_, attribute, err := svc.AttachAttribute(cat.ID, CategoryAttributeInput{Name: "material", Label: "Material"})
	require.NoError(t, err)

	desc := "What the garment is made of"
	_, updated, err := svc.UpdateCategoryAttribute(cat.ID, attribute.ID, CategoryAttributeInput{
		Name:        "fabric",
		Label:       "Fabric",
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "fabric", updated.Name)
	assert.Equal(t, "Fabric", updated.Label)
	assert.Equal(t, desc, updated.Description)

	// Renaming onto a name held by another attribute is a conflict
	_, other, err := svc.AttachAttribute(cat.ID, CategoryAttributeInput{Name: "size", Label: "Size"})
	require.NoError(t, err)
	_, _, err = svc.UpdateCategoryAttribute(cat.ID, other.ID, CategoryAttributeInput{Name: "fabric"})
	assert.ErrorIs(t, err, ErrAttributeNameConflict)

	_, _, err = svc.UpdateCategoryAttribute(cat.ID, 9999, CategoryAttributeInput{Name: "x"})
	assert.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestCategoryService_UpdateCategoryAttribute_LinksWhenMissing(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	clothing := mustCreateCategory(t, svc, "Clothing", nil)
	feeding := mustCreateCategory(t, svc, "Feeding", nil)
	_, attribute, err := svc.AttachAttribute(clothing.ID, CategoryAttributeInput{Name: "material", Label: "Material"})
	require.NoError(t, err)

	// Editing through a category the attribute is not attached to links it
	category, _, err := svc.UpdateCategoryAttribute(feeding.ID, attribute.ID, CategoryAttributeInput{Label: "Material"})
	require.NoError(t, err)
	require.Len(t, category.Attributes, 1)
	assert.Equal(t, "material", category.Attributes[0].Name)
}

func TestCategoryService_DetachAttribute_PurgesProductValues(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	clothing := mustCreateCategory(t, svc, "Clothing", nil)
	feeding := mustCreateCategory(t, svc, "Feeding", nil)
	_, attribute, err := svc.AttachAttribute(clothing.ID, CategoryAttributeInput{Name: "material", Label: "Material"})
	require.NoError(t, err)
	_, _, err = svc.AttachAttribute(feeding.ID, CategoryAttributeInput{Name: "material", Label: "Material"})
	require.NoError(t, err)

	inClothing := model.Product{Name: "Onesie", CategoryID: &clothing.ID}
	inFeeding := model.Product{Name: "Bottle", CategoryID: &feeding.ID}
	require.NoError(t, testDB.Create(&inClothing).Error)
	require.NoError(t, testDB.Create(&inFeeding).Error)
	require.NoError(t, testDB.Create(&model.ProductAttribute{ProductID: inClothing.ID, AttributeID: attribute.ID, Value: "Cotton"}).Error)
	require.NoError(t, testDB.Create(&model.ProductAttribute{ProductID: inFeeding.ID, AttributeID: attribute.ID, Value: "Silicone"}).Error)

	category, err := svc.DetachAttribute(clothing.ID, attribute.ID)
	require.NoError(t, err)
	assert.Empty(t, category.Attributes)

	// The purge is global: the value disappears from products in other
	// categories as well, even though their category link remains
	var remaining int64
	require.NoError(t, testDB.Model(&model.ProductAttribute{}).Where("attribute_id = ?", attribute.ID).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)

	feedingAfter, err := svc.ListCategories()
	require.NoError(t, err)
	for _, cat := range feedingAfter.Categories {
		if cat.ID == feeding.ID {
			assert.Len(t, cat.Attributes, 1, "the other category keeps its link")
		}
	}
}

func TestCategoryService_SyncFromProducts(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	mustCreateCategory(t, svc, "Toys", nil)

	products := []model.Product{
		{Name: "Stacker", Category: "toys"},         // case-insensitive match, no create
		{Name: "Bottle", Category: "Feeding"},       // new root
		{Name: "Bib", Category: "  Feeding "},       // same root after trimming
		{Name: "Mystery", Category: ""},             // blank names are skipped
		{Name: "Onesie", Category: "Baby Clothing"}, // new root, exact casing kept
	}
	for i := range products {
		require.NoError(t, testDB.Create(&products[i]).Error)
	}

	result, err := svc.SyncFromProducts()
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedMain)

	names := make(map[string]bool)
	for _, cat := range result.Listing.Categories {
		assert.Nil(t, cat.ParentID)
		names[cat.Name] = true
	}
	assert.True(t, names["Toys"])
	assert.True(t, names["Feeding"])
	assert.True(t, names["Baby Clothing"])
	assert.False(t, names["toys"], "existing roots are matched case-insensitively")

	// Running the sync again creates nothing
	again, err := svc.SyncFromProducts()
	require.NoError(t, err)
	assert.Equal(t, 0, again.CreatedMain)
	assert.Len(t, again.Listing.Categories, 3)
}

func TestCategoryService_RemoveAllSubCategories(t *testing.T) {
	svc, testDB := setupCategoryServiceTest(t)

	main := mustCreateCategory(t, svc, "Clothing", nil)
	sub := mustCreateCategory(t, svc, "Bodysuits", &main.ID)
	third := mustCreateCategory(t, svc, "Long Sleeve", &sub.ID)

	product := model.Product{
		Name:            "Winter Onesie",
		Category:        "Clothing",
		CategoryID:      &main.ID,
		SubCategory:     "Bodysuits",
		SubCategoryID:   &sub.ID,
		ThirdCategory:   "Long Sleeve",
		ThirdCategoryID: &third.ID,
	}
	require.NoError(t, testDB.Create(&product).Error)

	cleanup, err := svc.RemoveAllSubCategories()
	require.NoError(t, err)
	assert.Equal(t, 2, cleanup.Removed)
	assert.Equal(t, int64(2), cleanup.UpdatedProducts)

	listing, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, listing.Categories, 1)
	assert.Equal(t, "Clothing", listing.Categories[0].Name)

	var got model.Product
	require.NoError(t, testDB.First(&got, product.ID).Error)
	assert.Nil(t, got.SubCategoryID)
	assert.Empty(t, got.SubCategory)
	assert.Nil(t, got.ThirdCategoryID)
	assert.Empty(t, got.ThirdCategory)
	// The main-level assignment survives
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, main.ID, *got.CategoryID)
}

func TestCategoryService_RemoveAllSubCategories_Empty(t *testing.T) {
	svc, _ := setupCategoryServiceTest(t)

	mustCreateCategory(t, svc, "Clothing", nil)

	cleanup, err := svc.RemoveAllSubCategories()
	require.NoError(t, err)
	assert.Equal(t, 0, cleanup.Removed)
	assert.Equal(t, int64(0), cleanup.UpdatedProducts)
}

type fakeCategoryCache struct {
	listing       *CategoryListing
	hits          int
	invalidations int
}

func (f *fakeCategoryCache) GetListing(_ context.Context) (*CategoryListing, bool) {
	if f.listing == nil {
		return nil, false
	}
	f.hits++
	return f.listing, true
}

func (f *fakeCategoryCache) SetListing(_ context.Context, listing *CategoryListing) {
	f.listing = listing
}

func (f *fakeCategoryCache) Invalidate(_ context.Context) {
	f.listing = nil
	f.invalidations++
}

func TestCategoryService_ListingCache(t *testing.T) {
	cache := &fakeCategoryCache{}
	svc, _ := setupCategoryServiceTest(t, WithCategoryCache(cache))

	mustCreateCategory(t, svc, "Clothing", nil)

	// First list fills the cache, second one is served from it
	_, err := svc.ListCategories()
	require.NoError(t, err)
	require.NotNil(t, cache.listing)

	_, err = svc.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// Any mutation drops the cached listing
	invalidationsBefore := cache.invalidations
	mustCreateCategory(t, svc, "Feeding", nil)
	assert.Greater(t, cache.invalidations, invalidationsBefore)
	assert.Nil(t, cache.listing)
}
