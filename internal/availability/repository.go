package availability

import (
	"context"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MatchQuery narrows availability rows for subscription matching.
type MatchQuery struct {
	DrugID   uuid.UUID
	City     *string
	MaxPrice *decimal.Decimal
	Limit    int
}

// Repository wires together availability persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByDrugAndPharmacy loads the current row for the pair, if any.
func (r *Repository) FindByDrugAndPharmacy(ctx context.Context, drugID, pharmacyID uuid.UUID) (*models.Availability, error) {
	var row models.Availability
	err := r.db.WithContext(ctx).
		First(&row, "drug_id = ? AND pharmacy_id = ?", drugID, pharmacyID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a new availability row.
func (r *Repository) Create(ctx context.Context, row *models.Availability) (*models.Availability, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update saves the full availability row. GORM's autoUpdateTime bumps
// last_updated on every save.
func (r *Repository) Update(ctx context.Context, row *models.Availability) (*models.Availability, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// AppendPriceHistory records a price snapshot for the availability row.
func (r *Repository) AppendPriceHistory(ctx context.Context, availabilityID uuid.UUID, price decimal.Decimal) error {
	entry := models.PriceHistory{
		ID:             uuid.New(),
		AvailabilityID: availabilityID,
		Price:          price,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

// ListPriceHistory returns snapshots newest first.
func (r *Repository) ListPriceHistory(ctx context.Context, availabilityID uuid.UUID, limit int) ([]models.PriceHistory, error) {
	tx := r.db.WithContext(ctx).
		Where("availability_id = ?", availabilityID).
		Order("recorded_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var entries []models.PriceHistory
	if err := tx.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindMatches returns in-stock rows for the drug that satisfy the optional
// city and max-price filters, cheapest first. City matching is exact.
func (r *Repository) FindMatches(ctx context.Context, q MatchQuery) ([]models.Availability, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Availability{}).
		Joins("JOIN pharmacies ON pharmacies.id = availabilities.pharmacy_id").
		Where("availabilities.drug_id = ? AND availabilities.is_available = ?", q.DrugID, true)

	if q.City != nil {
		tx = tx.Where("pharmacies.city = ?", *q.City)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("availabilities.price <= ?", *q.MaxPrice)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var rows []models.Availability
	err := tx.Preload("Pharmacy").
		Order("availabilities.price ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
