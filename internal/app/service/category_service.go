package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"github.com/jwliao/babymall-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryNameRequired   = errors.New("category name is required")
	ErrCategoryNameConflict   = errors.New("a category with the same name already exists under the selected parent")
	ErrCategoryParentNotFound = errors.New("parent category not found")
	ErrCategorySelfParent     = errors.New("category cannot be its own parent")
	ErrCategoryCycle          = errors.New("cannot set a child category as parent")
	ErrCategoryHasChildren    = errors.New("remove or reassign sub categories before deleting this category")
	ErrCategoryInUse          = errors.New("there are products linked to this category")
	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrAttributeFieldsMissing = errors.New("attribute name and label are required")
	ErrAttributeNameConflict  = errors.New("attribute name must be unique")
)

// CategoryCache caches the serialized category listing. Implementations must
// tolerate a cold or unavailable backend (miss, not error).
type CategoryCache interface {
	GetListing(ctx context.Context) (*CategoryListing, bool)
	SetListing(ctx context.Context, listing *CategoryListing)
	Invalidate(ctx context.Context)
}

// CategoryListing pairs the flat category list with the nested tree, both with
// attributes populated.
type CategoryListing struct {
	Categories []model.Category     `json:"categories"`
	Tree       []model.CategoryNode `json:"tree"`
}

type CreateCategoryInput struct {
	Name     string
	ParentID *uint
}

// UpdateCategoryInput carries a rename and/or reparent. SetParent
// distinguishes "parent field absent" from "parent set to top level";
// conflating the two is how nil-vs-missing bugs creep in.
type UpdateCategoryInput struct {
	Name      *string
	SetParent bool
	ParentID  *uint // nil with SetParent means detach to top level
}

// CategoryAttributeInput carries attribute fields for attach/update on a
// category. Description is a pointer so "not provided" and "cleared" stay
// distinct.
type CategoryAttributeInput struct {
	Name        string
	Label       string
	Description *string
	Color       string
}

type SyncResult struct {
	CreatedMain int              `json:"created_main"`
	Listing     *CategoryListing `json:"-"`
}

type SubCategoryCleanup struct {
	Removed         int   `json:"removed"`
	UpdatedProducts int64 `json:"updated_products"`
}

type CategoryService interface {
	CreateCategory(input CreateCategoryInput) (*model.Category, error)
	ListCategories() (*CategoryListing, error)
	UpdateCategory(id uint, input UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(id uint) error
	CanReparent(categoryID uint, proposedParentID *uint) error
	AttachAttribute(categoryID uint, input CategoryAttributeInput) (*model.Category, *model.Attribute, error)
	UpdateCategoryAttribute(categoryID, attributeID uint, input CategoryAttributeInput) (*model.Category, *model.Attribute, error)
	DetachAttribute(categoryID, attributeID uint) (*model.Category, error)
	SyncFromProducts() (*SyncResult, error)
	RemoveAllSubCategories() (*SubCategoryCleanup, error)
}

type categoryService struct {
	categoryRepo  repository.CategoryRepository
	attributeRepo repository.AttributeRepository
	productRepo   repository.ProductRepository
	db            *gorm.DB
	cache         CategoryCache
	// guardThirdLevel extends rename cascades and deletion guards to
	// third-level product references. Historically those were limited to the
	// main and sub levels, so the default is off.
	guardThirdLevel bool
}

type CategoryServiceOption func(*categoryService)

// WithCategoryCache plugs in a listing cache (typically redis-backed).
func WithCategoryCache(cache CategoryCache) CategoryServiceOption {
	return func(s *categoryService) {
		s.cache = cache
	}
}

// WithThirdLevelGuard turns on third-level rename cascades and deletion guards.
func WithThirdLevelGuard(enabled bool) CategoryServiceOption {
	return func(s *categoryService) {
		s.guardThirdLevel = enabled
	}
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	attributeRepo repository.AttributeRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
	opts ...CategoryServiceOption,
) CategoryService {
	s := &categoryService{
		categoryRepo:  categoryRepo,
		attributeRepo: attributeRepo,
		productRepo:   productRepo,
		db:            db,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *categoryService) CreateCategory(input CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	if input.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(*input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryParentNotFound
			}
			return nil, err
		}
	}

	exists, err := s.categoryRepo.SiblingExists(name, input.ParentID, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategoryNameConflict
	}

	category := &model.Category{
		Name:     name,
		Slug:     util.Slugify(name),
		ParentID: input.ParentID,
		IsActive: true,
	}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	category.Attributes = []model.Attribute{}

	s.invalidateCache()

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
		"parent_id":   category.ParentID,
	})
	return category, nil
}

func (s *categoryService) ListCategories() (*CategoryListing, error) {
	if s.cache != nil {
		if listing, ok := s.cache.GetListing(context.Background()); ok {
			return listing, nil
		}
	}

	categories, err := s.categoryRepo.FindAll(true)
	if err != nil {
		return nil, err
	}

	categories, err = s.categoryRepo.LoadAttributes(categories)
	if err != nil {
		return nil, err
	}

	listing := &CategoryListing{
		Categories: categories,
		Tree:       model.BuildTree(categories, nil),
	}

	if s.cache != nil {
		s.cache.SetListing(context.Background(), listing)
	}
	return listing, nil
}

// CanReparent reports whether moving a category under proposedParentID keeps
// the tree acyclic. Self-parenting is rejected outright; otherwise the walk
// climbs the ancestor chain from the proposed parent and fails if it passes
// through the category being moved.
func (s *categoryService) CanReparent(categoryID uint, proposedParentID *uint) error {
	if proposedParentID == nil {
		return nil
	}
	if *proposedParentID == categoryID {
		return ErrCategorySelfParent
	}

	current, err := s.categoryRepo.FindByID(*proposedParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryParentNotFound
		}
		return err
	}

	for {
		if current.ID == categoryID {
			return ErrCategoryCycle
		}
		if current.ParentID == nil {
			return nil
		}
		current, err = s.categoryRepo.FindByID(*current.ParentID)
		if err != nil {
			return err
		}
	}
}

func (s *categoryService) UpdateCategory(id uint, input UpdateCategoryInput) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			category.Name = name
		}
	}

	if input.SetParent {
		// The cycle check must run before the new parent is persisted.
		if err := s.CanReparent(id, input.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = input.ParentID
	}

	exists, err := s.categoryRepo.SiblingExists(category.Name, category.ParentID, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategoryNameConflict
	}

	// The rename and its denormalized-name cascades commit together or not at
	// all; a partial cascade leaves products displaying stale names.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(category).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Product{}).
			Where("category_id = ?", category.ID).
			Update("category", category.Name).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Product{}).
			Where("sub_category_id = ?", category.ID).
			Update("sub_category", category.Name).Error; err != nil {
			return err
		}
		if s.guardThirdLevel {
			if err := tx.Model(&model.Product{}).
				Where("third_category_id = ?", category.ID).
				Update("third_category", category.Name).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to update category", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}

	s.invalidateCache()

	attributes, err := s.categoryRepo.Attributes(category.ID)
	if err != nil {
		return nil, err
	}
	category.Attributes = attributes

	logger.Info("Category updated", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
		"parent_id":   category.ParentID,
	})
	return category, nil
}

func (s *categoryService) DeleteCategory(id uint) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	hasChildren, err := s.categoryRepo.HasChildren(id)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrCategoryHasChildren
	}

	linked, err := s.productRepo.CountByCategoryRef(id, s.guardThirdLevel)
	if err != nil {
		return err
	}
	if linked > 0 {
		logger.Warn("Category deletion blocked by linked products", map[string]interface{}{
			"category_id":   id,
			"product_count": linked,
		})
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}

	s.invalidateCache()

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

// AttachAttribute links an attribute onto a category, upserting the attribute
// by name: unknown names create a new attribute, known names get their label,
// description and color refreshed.
func (s *categoryService) AttachAttribute(categoryID uint, input CategoryAttributeInput) (*model.Category, *model.Attribute, error) {
	name := strings.TrimSpace(input.Name)
	label := strings.TrimSpace(input.Label)
	if name == "" || label == "" {
		return nil, nil, ErrAttributeFieldsMissing
	}

	category, err := s.categoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}

	attribute, err := s.attributeRepo.FindByName(name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		attribute = &model.Attribute{
			Name:     name,
			Label:    label,
			Color:    input.Color,
			IsActive: true,
		}
		if input.Description != nil {
			attribute.Description = *input.Description
		}
		if err := s.attributeRepo.Create(attribute); err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	default:
		attribute.Label = label
		if input.Description != nil {
			attribute.Description = *input.Description
		}
		if input.Color != "" {
			attribute.Color = input.Color
		}
		if err := s.attributeRepo.Update(attribute); err != nil {
			return nil, nil, err
		}
	}

	if err := s.categoryRepo.AttachAttribute(category.ID, attribute.ID); err != nil {
		return nil, nil, err
	}

	s.invalidateCache()

	category.Attributes, err = s.categoryRepo.Attributes(category.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Attribute linked to category", map[string]interface{}{
		"category_id":  category.ID,
		"attribute_id": attribute.ID,
		"name":         attribute.Name,
	})
	return category, attribute, nil
}

// UpdateCategoryAttribute edits an attribute in the context of a category,
// linking it first if it is not attached yet.
func (s *categoryService) UpdateCategoryAttribute(categoryID, attributeID uint, input CategoryAttributeInput) (*model.Category, *model.Attribute, error) {
	category, err := s.categoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}

	attribute, err := s.attributeRepo.FindByID(attributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAttributeNotFound
		}
		return nil, nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" && name != attribute.Name {
		existing, err := s.attributeRepo.FindByName(name)
		if err == nil && existing.ID != attribute.ID {
			return nil, nil, ErrAttributeNameConflict
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		attribute.Name = name
	}
	if label := strings.TrimSpace(input.Label); label != "" {
		attribute.Label = label
	}
	if input.Description != nil {
		attribute.Description = *input.Description
	}
	if input.Color != "" {
		attribute.Color = input.Color
	}

	if err := s.attributeRepo.Update(attribute); err != nil {
		return nil, nil, err
	}

	if err := s.categoryRepo.AttachAttribute(category.ID, attribute.ID); err != nil {
		return nil, nil, err
	}

	s.invalidateCache()

	category.Attributes, err = s.categoryRepo.Attributes(category.ID)
	if err != nil {
		return nil, nil, err
	}
	return category, attribute, nil
}

// DetachAttribute unlinks an attribute from a category and purges that
// attribute's values from every product. The purge is deliberately global:
// products in other categories lose the value too, leaving no dangling
// references behind. See PurgeAttributeRefs.
func (s *categoryService) DetachAttribute(categoryID, attributeID uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if err := s.categoryRepo.DetachAttribute(category.ID, attributeID); err != nil {
		return nil, err
	}

	purged, err := s.productRepo.PurgeAttributeRefs(attributeID)
	if err != nil {
		return nil, err
	}

	s.invalidateCache()

	category.Attributes, err = s.categoryRepo.Attributes(category.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Attribute removed from category", map[string]interface{}{
		"category_id":    category.ID,
		"attribute_id":   attributeID,
		"purged_entries": purged,
	})
	return category, nil
}

// SyncFromProducts seeds top-level categories from the distinct legacy
// category name strings on products. Lookup is case-insensitive, creation
// keeps the exact casing found on the product. Running it again with no new
// names creates nothing.
func (s *categoryService) SyncFromProducts() (*SyncResult, error) {
	names, err := s.productRepo.DistinctCategoryNames()
	if err != nil {
		return nil, err
	}

	roots, err := s.categoryRepo.FindRoots()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(roots))
	for _, root := range roots {
		known[strings.ToLower(strings.TrimSpace(root.Name))] = true
	}

	created := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if known[key] {
			continue
		}

		category := &model.Category{
			Name:     name,
			Slug:     util.Slugify(name),
			IsActive: true,
		}
		if err := s.categoryRepo.Create(category); err != nil {
			return nil, err
		}
		known[key] = true
		created++
	}

	if created > 0 {
		s.invalidateCache()
	}

	listing, err := s.ListCategories()
	if err != nil {
		return nil, err
	}

	logger.Info("Categories synced from products", map[string]interface{}{
		"created_main": created,
	})
	return &SyncResult{CreatedMain: created, Listing: listing}, nil
}

// RemoveAllSubCategories drops every non-root category and clears sub/third
// assignments from products referencing them. Maintenance operation for
// resetting the tree back to its main level.
func (s *categoryService) RemoveAllSubCategories() (*SubCategoryCleanup, error) {
	categories, err := s.categoryRepo.FindAll(false)
	if err != nil {
		return nil, err
	}

	var subIDs []uint
	for _, cat := range categories {
		if cat.ParentID != nil {
			subIDs = append(subIDs, cat.ID)
		}
	}
	if len(subIDs) == 0 {
		return &SubCategoryCleanup{}, nil
	}

	updated, err := s.productRepo.ClearSubCategoryRefs(subIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range subIDs {
		if err := s.categoryRepo.Delete(id); err != nil {
			return nil, err
		}
	}

	s.invalidateCache()

	logger.Info("All sub categories removed", map[string]interface{}{
		"removed":          len(subIDs),
		"updated_products": updated,
	})
	return &SubCategoryCleanup{Removed: len(subIDs), UpdatedProducts: updated}, nil
}

func (s *categoryService) invalidateCache() {
	if s.cache != nil {
		s.cache.Invalidate(context.Background())
	}
}
