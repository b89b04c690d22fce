// internal/models/attribute.go
package models

import "github.com/google/uuid"

// ProductAttribute is a dictionary entry such as "Color" or "Size". Variations
// reference attributes and their values by slug.
type ProductAttribute struct {
	BaseModel
	Name     string `json:"name" gorm:"size:100;not null"`
	Slug     string `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Position int    `json:"position" gorm:"default:0"`

	Values []AttributeValue `json:"values,omitempty" gorm:"foreignKey:AttributeID"`
}

type AttributeValue struct {
	BaseModel
	AttributeID uuid.UUID `json:"attribute_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_attribute_value_slug"`
	Value       string    `json:"value" gorm:"size:100;not null"`
	Slug        string    `json:"slug" gorm:"size:100;not null;uniqueIndex:idx_attribute_value_slug"`
	Position    int       `json:"position" gorm:"default:0"`

	Attribute *ProductAttribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID"`
}

// ValueSlugSet returns the attribute's value slugs for quick membership checks.
func (a *ProductAttribute) ValueSlugSet() map[string]bool {
	set := make(map[string]bool, len(a.Values))
	for _, v := range a.Values {
		set[v.Slug] = true
	}
	return set
}
