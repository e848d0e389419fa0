package repository

import (
	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"gorm.io/gorm"
)

type AttributeRepository interface {
	Create(attribute *model.Attribute) error
	FindAll(onlyActive bool) ([]model.Attribute, error)
	FindByID(id uint) (*model.Attribute, error)
	FindByName(name string) (*model.Attribute, error)
	Update(attribute *model.Attribute) error
}

type attributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) Create(attribute *model.Attribute) error {
	if attribute.Color == "" {
		attribute.Color = model.DefaultAttributeColor
	}

	if err := r.db.Create(attribute).Error; err != nil {
		logger.Error("Failed to create attribute in database", err, map[string]interface{}{
			"name": attribute.Name,
		})
		return err
	}

	logger.Debug("Attribute created in database", map[string]interface{}{
		"attribute_id": attribute.ID,
		"name":         attribute.Name,
	})
	return nil
}

func (r *attributeRepository) FindAll(onlyActive bool) ([]model.Attribute, error) {
	query := r.db.Order("label ASC")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}

	var attributes []model.Attribute
	if err := query.Find(&attributes).Error; err != nil {
		logger.Error("Failed to find attributes in database", err)
		return nil, err
	}
	return attributes, nil
}

func (r *attributeRepository) FindByID(id uint) (*model.Attribute, error) {
	var attribute model.Attribute
	if err := r.db.First(&attribute, id).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}

func (r *attributeRepository) FindByName(name string) (*model.Attribute, error) {
	var attribute model.Attribute
	if err := r.db.Where("name = ?", name).First(&attribute).Error; err != nil {
		return nil, err
	}
	return &attribute, nil
}

func (r *attributeRepository) Update(attribute *model.Attribute) error {
	if err := r.db.Save(attribute).Error; err != nil {
		logger.Error("Failed to update attribute in database", err, map[string]interface{}{
			"attribute_id": attribute.ID,
			"name":         attribute.Name,
		})
		return err
	}
	return nil
}
