package models

// Medication is a catalog entry managed through the administrative CRUD
// actions. Nothing else references it, so deletion is unconditional.
type Medication struct {
	BaseModel
	Name                 string  `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Photo                string  `gorm:"size:255" json:"photo,omitempty"`
	Price                float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	RequiresPrescription bool    `json:"requiresPrescription"`
}
