package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is a catalog item. Category assignment is stored twice: as ids
// (CategoryID/SubCategoryID/ThirdCategoryID) and as denormalized name strings
// kept in sync at write time. The name strings exist for fast catalog reads
// and must be cascaded when a category is renamed.
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `json:"price"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	Sizes       pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Bestseller  bool           `gorm:"default:false" json:"bestseller"`

	Category        string `gorm:"type:varchar(100)" json:"category"`
	CategoryID      *uint  `gorm:"index" json:"category_id"`
	SubCategory     string `gorm:"type:varchar(100)" json:"sub_category"`
	SubCategoryID   *uint  `gorm:"index" json:"sub_category_id"`
	ThirdCategory   string `gorm:"type:varchar(100)" json:"third_category"`
	ThirdCategoryID *uint  `gorm:"index" json:"third_category_id"`

	Attributes []ProductAttribute `gorm:"foreignKey:ProductID" json:"attributes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ProductAttribute holds the merchant-entered value for one attribute on one
// product (e.g. attribute "Material" -> value "Silicone"). Which attributes are
// offered comes from the category association; the value is free text.
type ProductAttribute struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ProductID   uint      `gorm:"index;not null" json:"product_id"`
	AttributeID uint      `gorm:"index;not null" json:"attribute_id"`
	Value       string    `gorm:"type:varchar(255)" json:"value"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Attribute   Attribute `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"attribute,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ProductAttribute) TableName() string {
	return "product_attributes"
}
