package models

import "github.com/google/uuid"

// PharmacyNetwork is a pharmacy chain owning individual pharmacies.
type PharmacyNetwork struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string    `gorm:"column:name;type:text;not null"`
	Website  *string   `gorm:"column:website;type:text"`
	Phone    *string   `gorm:"column:phone;type:text"`
	IsActive bool      `gorm:"column:is_active;not null"`

	Pharmacies []Pharmacy `gorm:"foreignKey:NetworkID;constraint:OnDelete:CASCADE"`
}
