package models

import "github.com/google/uuid"

// Pharmacy is a single physical location within a network.
type Pharmacy struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	NetworkID    uuid.UUID `gorm:"column:network_id;type:uuid;not null;index"`
	Name         string    `gorm:"column:name;type:text;not null"`
	Address      string    `gorm:"column:address;type:text;not null"`
	City         string    `gorm:"column:city;type:text;not null;index"`
	Phone        *string   `gorm:"column:phone;type:text"`
	Latitude     *float64  `gorm:"column:latitude"`
	Longitude    *float64  `gorm:"column:longitude"`
	WorkingHours *string   `gorm:"column:working_hours;type:text"`

	Network *PharmacyNetwork `gorm:"foreignKey:NetworkID"`
}
