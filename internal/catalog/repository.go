package catalog

import (
	"context"
	"strings"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/avolkov/pharmtrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatsRow is the raw aggregate projection for one drug.
type StatsRow struct {
	MinPrice      decimal.NullDecimal `gorm:"column:min_price"`
	AvgPrice      decimal.NullDecimal `gorm:"column:avg_price"`
	PharmacyCount int64               `gorm:"column:pharmacy_count"`
}

// Repository wires together drug catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindDrugByID loads the drug without associations.
func (r *Repository) FindDrugByID(ctx context.Context, id uuid.UUID) (*models.Drug, error) {
	var drug models.Drug
	if err := r.db.WithContext(ctx).First(&drug, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &drug, nil
}

// SearchDrugs lists drugs matching the query substring against trade name or
// mnn, newest first. An empty query lists everything up to the limit.
func (r *Repository) SearchDrugs(ctx context.Context, query string, limit int, cursor *pagination.Cursor) ([]models.Drug, error) {
	tx := r.db.WithContext(ctx).Model(&models.Drug{})

	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(trade_name) LIKE ? OR LOWER(mnn) LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var drugs []models.Drug
	if err := tx.Order("created_at DESC, id DESC").Limit(limit).Find(&drugs).Error; err != nil {
		return nil, err
	}
	return drugs, nil
}

// DrugStats computes min/avg price and distinct pharmacy count over the
// drug's available rows. Aggregates come back NULL when nothing is in stock.
func (r *Repository) DrugStats(ctx context.Context, drugID uuid.UUID) (StatsRow, error) {
	var row StatsRow
	err := r.db.WithContext(ctx).
		Model(&models.Availability{}).
		Select("MIN(price) AS min_price, AVG(price) AS avg_price, COUNT(DISTINCT pharmacy_id) AS pharmacy_count").
		Where("drug_id = ? AND is_available = ?", drugID, true).
		Scan(&row).Error
	if err != nil {
		return StatsRow{}, err
	}
	return row, nil
}

// ListAnalogueEdges returns active analogue rows touching the drug in either
// direction.
func (r *Repository) ListAnalogueEdges(ctx context.Context, drugID uuid.UUID) ([]models.Analogue, error) {
	var edges []models.Analogue
	err := r.db.WithContext(ctx).
		Where("(original_id = ? OR analogue_id = ?) AND is_active = ?", drugID, drugID, true).
		Order("similarity_score DESC").
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// FindDrugsByIDs loads the given drugs in one query.
func (r *Repository) FindDrugsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Drug, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var drugs []models.Drug
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&drugs).Error; err != nil {
		return nil, err
	}
	return drugs, nil
}

// ListDrugAvailability returns the drug's availability rows with pharmacies
// preloaded, cheapest first.
func (r *Repository) ListDrugAvailability(ctx context.Context, drugID uuid.UUID) ([]models.Availability, error) {
	var rows []models.Availability
	err := r.db.WithContext(ctx).
		Preload("Pharmacy").
		Where("drug_id = ?", drugID).
		Order("price ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
