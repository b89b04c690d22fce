// internal/models/store.go
package models

// Country is a shipping destination. Only enabled countries are offered at
// checkout. Rows are seeded at migration time and toggled from the dashboard.
type Country struct {
	BaseModel
	Name    string `json:"name" gorm:"size:100;not null"`
	Code    string `json:"code" gorm:"uniqueIndex;size:2;not null"`
	Enabled bool   `json:"enabled" gorm:"default:true;index"`
}

type StoreLocation struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:150;not null"`
	Address      string   `json:"address" gorm:"size:255;not null"`
	City         string   `json:"city" gorm:"size:100;not null"`
	CountryCode  string   `json:"country_code" gorm:"size:2;not null;index"`
	Phone        string   `json:"phone" gorm:"size:50"`
	Email        string   `json:"email" gorm:"size:255"`
	Latitude     *float64 `json:"latitude" gorm:"type:decimal(9,6)"`
	Longitude    *float64 `json:"longitude" gorm:"type:decimal(9,6)"`
	OpeningHours JSONB    `json:"opening_hours" gorm:"type:jsonb"`
	Position     int      `json:"position" gorm:"default:0"`
}
