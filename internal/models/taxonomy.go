// internal/models/taxonomy.go
package models

// Brand, Category and Collection share the same shape and are managed through
// one generic taxonomy service; they stay separate tables so products can
// reference each independently.

type Brand struct {
	BaseModel
	Name        string `json:"name" gorm:"size:150;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:150;not null"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image" gorm:"size:500"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:BrandID"`
}

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"size:150;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:150;not null"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image" gorm:"size:500"`

	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

// Collection is a curated product set ("Summer 2026", "Bestsellers").
// Membership lives in the product_collections join table.
type Collection struct {
	BaseModel
	Name        string `json:"name" gorm:"size:150;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:150;not null"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image" gorm:"size:500"`

	Products []Product `json:"products,omitempty" gorm:"many2many:product_collections"`
}
