package subscriptions

import (
	"context"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together subscription persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new subscription row. Unique-violation errors are
// returned raw; the service converts them at the boundary.
func (r *Repository) Create(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// FindByID loads a subscription with its drug.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := r.db.WithContext(ctx).Preload("Drug").First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Exists reports whether the (user, drug, city) triple is already taken.
// A nil city only collides with other null-city rows.
func (r *Repository) Exists(ctx context.Context, userID, drugID uuid.UUID, city *string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.UserSubscription{}).
		Where("user_id = ? AND drug_id = ?", userID, drugID)
	if city == nil {
		tx = tx.Where("city IS NULL")
	} else {
		tx = tx.Where("city = ?", *city)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the user's subscriptions, newest first, drugs preloaded.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Drug").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// ListActive returns active subscriptions with users and drugs preloaded,
// optionally scoped to one drug. Order is storage-determined.
func (r *Repository) ListActive(ctx context.Context, drugID *uuid.UUID) ([]models.UserSubscription, error) {
	tx := r.db.WithContext(ctx).
		Preload("User").
		Preload("Drug").
		Where("is_active = ?", true)
	if drugID != nil {
		tx = tx.Where("drug_id = ?", *drugID)
	}

	var subs []models.UserSubscription
	if err := tx.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// Update saves the full subscription row.
func (r *Repository) Update(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Delete removes the subscription row for good.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.UserSubscription{}).Error
}
