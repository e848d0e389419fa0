package model

import (
	"time"

	"gorm.io/gorm"
)

// Category is a node in the product classification tree. Categories nest via
// ParentID; a nil parent marks a top-level ("main") category. By convention the
// tree is used up to three levels deep: main, sub and third.
type Category struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	Name     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name_parent,where:deleted_at IS NULL" json:"name"`
	Slug     string    `gorm:"type:varchar(120)" json:"slug"`
	ParentID *uint     `gorm:"uniqueIndex:idx_categories_name_parent;index" json:"parent_id"`
	Parent   *Category `gorm:"foreignKey:ParentID" json:"-"`
	// No column default: gorm drops zero-valued fields from inserts when a
	// default tag is present, which would make false unstorable at create.
	IsActive bool `gorm:"not null" json:"is_active"`

	// Offered attributes, ordered by attach position. Loaded explicitly by the
	// repository through category_attributes; gorm's many2many has no stable
	// ordering.
	Attributes []Attribute `gorm:"-" json:"attributes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryAttribute links an attribute onto a category. Position preserves the
// order in which attributes were attached.
type CategoryAttribute struct {
	CategoryID  uint      `gorm:"primaryKey;index" json:"category_id"`
	AttributeID uint      `gorm:"primaryKey;index" json:"attribute_id"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Category    Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Attribute   Attribute `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"attribute,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CategoryAttribute) TableName() string {
	return "category_attributes"
}

// CategoryNode is a category with its children resolved, as produced by
// BuildTree.
type CategoryNode struct {
	Category
	Children []CategoryNode `json:"children"`
}

// BuildTree nests a flat category list into a tree rooted at parentID
// (nil for the top level). Children keep the relative order they have in the
// input list; sorting siblings is the caller's concern. The input is assumed
// to be an already valid tree, no cycle detection happens here.
func BuildTree(categories []Category, parentID *uint) []CategoryNode {
	nodes := []CategoryNode{}
	for _, cat := range categories {
		if !sameParent(cat.ParentID, parentID) {
			continue
		}
		id := cat.ID
		nodes = append(nodes, CategoryNode{
			Category: cat,
			Children: BuildTree(categories, &id),
		})
	}
	return nodes
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
