package pharmacies

import (
	"context"
	"strings"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides read access to pharmacy reference data.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListNetworks returns active networks ordered by name.
func (r *Repository) ListNetworks(ctx context.Context) ([]models.PharmacyNetwork, error) {
	var networks []models.PharmacyNetwork
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&networks).Error
	if err != nil {
		return nil, err
	}
	return networks, nil
}

// FindNetworkByID loads a single network.
func (r *Repository) FindNetworkByID(ctx context.Context, id uuid.UUID) (*models.PharmacyNetwork, error) {
	var network models.PharmacyNetwork
	if err := r.db.WithContext(ctx).First(&network, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &network, nil
}

// ListPharmacies returns pharmacies, optionally narrowed to one city
// (exact match), with their networks preloaded.
func (r *Repository) ListPharmacies(ctx context.Context, city string) ([]models.Pharmacy, error) {
	tx := r.db.WithContext(ctx).Preload("Network")
	if c := strings.TrimSpace(city); c != "" {
		tx = tx.Where("city = ?", c)
	}

	var pharmacies []models.Pharmacy
	if err := tx.Order("name ASC").Find(&pharmacies).Error; err != nil {
		return nil, err
	}
	return pharmacies, nil
}

// FindPharmacyByID loads a single pharmacy with its network.
func (r *Repository) FindPharmacyByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error) {
	var pharmacy models.Pharmacy
	if err := r.db.WithContext(ctx).Preload("Network").First(&pharmacy, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pharmacy, nil
}

// ListCities returns the distinct cities pharmacies operate in.
func (r *Repository) ListCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := r.db.WithContext(ctx).
		Model(&models.Pharmacy{}).
		Distinct("city").
		Order("city ASC").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}
