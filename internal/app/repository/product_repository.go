package repository

import (
	"fmt"

	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search string
	Limit  int
	Offset int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	ReplaceAttributes(productID uint, attributes []model.ProductAttribute) error
	CountByCategoryRef(categoryID uint, includeThird bool) (int64, error)
	DistinctCategoryNames() ([]string, error)
	PurgeAttributeRefs(attributeID uint) (int64, error)
	ClearSubCategoryRefs(categoryIDs []uint) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":     product.Name,
			"category": product.Category,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).
		Preload("Attributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_attributes.position ASC")
		}).
		Preload("Attributes.Attribute")
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	query := r.baseQuery()

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("products.name LIKE ?", like)
	}

	var total int64
	countQuery := r.db.Model(&model.Product{})
	if filter.Search != "" {
		countQuery = countQuery.Where("products.name LIKE ?", "%"+filter.Search+"%")
	}
	if err := countQuery.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	query = query.Order("products.created_at DESC, products.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
			"name":       product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	if err := r.db.Where("product_id = ?", id).Delete(&model.ProductAttribute{}).Error; err != nil {
		logger.Error("Failed to delete product attribute values", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

// ReplaceAttributes swaps a product's attribute values wholesale.
func (r *productRepository) ReplaceAttributes(productID uint, attributes []model.ProductAttribute) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductAttribute{}).Error; err != nil {
			return err
		}
		for i := range attributes {
			attributes[i].ProductID = productID
			attributes[i].Position = i
		}
		if len(attributes) == 0 {
			return nil
		}
		return tx.Create(&attributes).Error
	})
}

// CountByCategoryRef counts products referencing a category as main or sub
// level; third-level references only count when includeThird is set.
func (r *productRepository) CountByCategoryRef(categoryID uint, includeThird bool) (int64, error) {
	query := r.db.Model(&model.Product{})
	if includeThird {
		query = query.Where("category_id = ? OR sub_category_id = ? OR third_category_id = ?", categoryID, categoryID, categoryID)
	} else {
		query = query.Where("category_id = ? OR sub_category_id = ?", categoryID, categoryID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DistinctCategoryNames lists the distinct legacy category name strings
// present on products, for seeding top-level categories.
func (r *productRepository) DistinctCategoryNames() ([]string, error) {
	var names []string
	err := r.db.Model(&model.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &names).Error
	if err != nil {
		logger.Error("Failed to fetch distinct product category names", err)
		return nil, err
	}
	return names, nil
}

// PurgeAttributeRefs removes an attribute's values from every product.
// This is the global cleanup that runs when an attribute is detached from a
// category; dangling references must not survive anywhere.
func (r *productRepository) PurgeAttributeRefs(attributeID uint) (int64, error) {
	result := r.db.Where("attribute_id = ?", attributeID).Delete(&model.ProductAttribute{})
	if result.Error != nil {
		logger.Error("Failed to purge attribute references from products", result.Error, map[string]interface{}{
			"attribute_id": attributeID,
		})
		return 0, result.Error
	}

	logger.Debug("Attribute references purged from products", map[string]interface{}{
		"attribute_id": attributeID,
		"removed":      result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// ClearSubCategoryRefs blanks the sub and third category assignment of every
// product referencing one of the given categories at those levels.
func (r *productRepository) ClearSubCategoryRefs(categoryIDs []uint) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		subResult := tx.Model(&model.Product{}).
			Where("sub_category_id IN ?", categoryIDs).
			Updates(map[string]interface{}{"sub_category_id": nil, "sub_category": ""})
		if subResult.Error != nil {
			return subResult.Error
		}
		affected += subResult.RowsAffected

		thirdResult := tx.Model(&model.Product{}).
			Where("third_category_id IN ?", categoryIDs).
			Updates(map[string]interface{}{"third_category_id": nil, "third_category": ""})
		if thirdResult.Error != nil {
			return thirdResult.Error
		}
		affected += thirdResult.RowsAffected
		return nil
	})
	if err != nil {
		logger.Error("Failed to clear sub category references from products", err)
		return 0, err
	}
	return affected, nil
}
