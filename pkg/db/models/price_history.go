package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory is an append-only price snapshot tied to an availability row.
// Rows are never mutated or deleted by normal flow.
type PriceHistory struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AvailabilityID uuid.UUID       `gorm:"column:availability_id;type:uuid;not null;index"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	RecordedAt     time.Time       `gorm:"column:recorded_at;autoCreateTime;index:,sort:desc"`

	Availability *Availability `gorm:"foreignKey:AvailabilityID;constraint:OnDelete:CASCADE"`
}
