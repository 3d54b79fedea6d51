package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Availability is the current priced offer of one drug at one pharmacy. At
// most one row exists per (drug, pharmacy) pair; every refresh bumps
// last_updated. is_available is stored independently of quantity so feeds can
// mark an offer out-of-stock while the quantity figure is stale.
type Availability struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DrugID      uuid.UUID       `gorm:"column:drug_id;type:uuid;not null;uniqueIndex:idx_availability_drug_pharmacy"`
	PharmacyID  uuid.UUID       `gorm:"column:pharmacy_id;type:uuid;not null;uniqueIndex:idx_availability_drug_pharmacy"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	IsAvailable bool            `gorm:"column:is_available;not null"`
	LastUpdated time.Time       `gorm:"column:last_updated;autoUpdateTime"`

	Drug     *Drug     `gorm:"foreignKey:DrugID;constraint:OnDelete:CASCADE"`
	Pharmacy *Pharmacy `gorm:"foreignKey:PharmacyID;constraint:OnDelete:CASCADE"`
}
