package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultAttributeColor is used when an attribute is created without an
// explicit display color.
const DefaultAttributeColor = "#3b82f6"

// Attribute is a reusable product facet (e.g. "Material") that categories can
// offer. The name is globally unique; products store their own free-text value
// per attribute.
type Attribute struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Label       string         `gorm:"type:varchar(100);not null" json:"label"`
	Description string         `gorm:"type:text" json:"description"`
	Color       string         `gorm:"type:varchar(20)" json:"color"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Attribute) TableName() string {
	return "attributes"
}
