package repository

import (
	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll(onlyActive bool) ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindRoots() ([]model.Category, error)
	SiblingExists(name string, parentID *uint, excludeID uint) (bool, error)
	HasChildren(id uint) (bool, error)
	Update(category *model.Category) error
	Delete(id uint) error
	Attributes(categoryID uint) ([]model.Attribute, error)
	LoadAttributes(categories []model.Category) ([]model.Category, error)
	HasAttribute(categoryID, attributeID uint) (bool, error)
	AttachAttribute(categoryID, attributeID uint) error
	DetachAttribute(categoryID, attributeID uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name":      category.Name,
			"parent_id": category.ParentID,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return nil
}

func (r *categoryRepository) FindAll(onlyActive bool) ([]model.Category, error) {
	query := r.db.Order("name ASC")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var categories []model.Category
	if err := query.Find(&categories).Error; err != nil {
		logger.Error("Failed to find categories in database", err)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindRoots() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Where("parent_id IS NULL").Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find root categories in database", err)
		return nil, err
	}
	return categories, nil
}

// SiblingExists reports whether another category with the same name already
// sits under the same parent. The composite unique index does not catch
// duplicates among top-level categories (NULL parents never collide in
// Postgres), so uniqueness is checked here before every create and rename.
func (r *categoryRepository) SiblingExists(name string, parentID *uint, excludeID uint) (bool, error) {
	query := r.db.Model(&model.Category{}).Where("name = ?", name)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) HasChildren(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Category{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
			"name":        category.Name,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Category{}, id).Error; err != nil {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}

	// Drop the attribute links as well; attributes themselves stay.
	if err := r.db.Where("category_id = ?", id).Delete(&model.CategoryAttribute{}).Error; err != nil {
		logger.Error("Failed to delete category attribute links", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}

	logger.Debug("Category deleted from database", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

// Attributes returns the attributes attached to a category in attach order.
func (r *categoryRepository) Attributes(categoryID uint) ([]model.Attribute, error) {
	var attributes []model.Attribute
	err := r.db.Model(&model.Attribute{}).
		Joins("JOIN category_attributes ON category_attributes.attribute_id = attributes.id").
		Where("category_attributes.category_id = ?", categoryID).
		Order("category_attributes.position ASC").
		Find(&attributes).Error
	if err != nil {
		logger.Error("Failed to load category attributes", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return nil, err
	}
	return attributes, nil
}

// LoadAttributes populates the Attributes field of every category in the slice
// with one query over the join table.
func (r *categoryRepository) LoadAttributes(categories []model.Category) ([]model.Category, error) {
	if len(categories) == 0 {
		return categories, nil
	}

	ids := make([]uint, 0, len(categories))
	for _, cat := range categories {
		ids = append(ids, cat.ID)
	}

	type linkedAttribute struct {
		model.Attribute
		CategoryID uint
	}

	var links []linkedAttribute
	err := r.db.Model(&model.Attribute{}).
		Select("attributes.*, category_attributes.category_id").
		Joins("JOIN category_attributes ON category_attributes.attribute_id = attributes.id").
		Where("category_attributes.category_id IN ?", ids).
		Order("category_attributes.category_id ASC, category_attributes.position ASC").
		Find(&links).Error
	if err != nil {
		logger.Error("Failed to load attributes for categories", err, map[string]interface{}{
			"category_count": len(categories),
		})
		return nil, err
	}

	byCategory := make(map[uint][]model.Attribute, len(categories))
	for _, link := range links {
		byCategory[link.CategoryID] = append(byCategory[link.CategoryID], link.Attribute)
	}

	for i := range categories {
		attrs := byCategory[categories[i].ID]
		if attrs == nil {
			attrs = []model.Attribute{}
		}
		categories[i].Attributes = attrs
	}
	return categories, nil
}

func (r *categoryRepository) HasAttribute(categoryID, attributeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.CategoryAttribute{}).
		Where("category_id = ? AND attribute_id = ?", categoryID, attributeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AttachAttribute appends an attribute to a category's list. Attaching an
// already linked attribute is a no-op, no duplicate entries are created.
func (r *categoryRepository) AttachAttribute(categoryID, attributeID uint) error {
	linked, err := r.HasAttribute(categoryID, attributeID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}

	// New links go after every surviving position. The row count is not
	// usable here: after detaches it can fall below the maximum position
	// still in use.
	var next int
	err = r.db.Model(&model.CategoryAttribute{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error
	if err != nil {
		return err
	}

	link := model.CategoryAttribute{
		CategoryID:  categoryID,
		AttributeID: attributeID,
		Position:    next,
	}
	if err := r.db.Create(&link).Error; err != nil {
		logger.Error("Failed to attach attribute to category", err, map[string]interface{}{
			"category_id":  categoryID,
			"attribute_id": attributeID,
		})
		return err
	}

	logger.Debug("Attribute attached to category", map[string]interface{}{
		"category_id":  categoryID,
		"attribute_id": attributeID,
		"position":     link.Position,
	})
	return nil
}

func (r *categoryRepository) DetachAttribute(categoryID, attributeID uint) error {
	err := r.db.Where("category_id = ? AND attribute_id = ?", categoryID, attributeID).
		Delete(&model.CategoryAttribute{}).Error
	if err != nil {
		logger.Error("Failed to detach attribute from category", err, map[string]interface{}{
			"category_id":  categoryID,
			"attribute_id": attributeID,
		})
		return err
	}
	return nil
}
