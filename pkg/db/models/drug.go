package models

import (
	"time"

	"github.com/google/uuid"
)

// Drug represents a catalog entry for a single trade-name medication. Several
// drugs may share one MNN (brand vs generic); trade_name is the practical
// dedup key when seeding.
type Drug struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MNN          string    `gorm:"column:mnn;type:text;not null;index"`
	TradeName    string    `gorm:"column:trade_name;type:text;not null;index"`
	Form         string    `gorm:"column:form;type:text;not null"`
	Dosage       string    `gorm:"column:dosage;type:text;not null"`
	Manufacturer string    `gorm:"column:manufacturer;type:text;not null"`
	ATXCode      *string   `gorm:"column:atx_code;type:text"`
	Description  *string   `gorm:"column:description;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Label renders the conventional "TradeName (MNN)" display form.
func (d Drug) Label() string {
	return d.TradeName + " (" + d.MNN + ")"
}
