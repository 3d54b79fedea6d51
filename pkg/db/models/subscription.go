package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserSubscription asks to be notified when a drug becomes available under
// the given constraints. Uniqueness spans (user, drug, city): the same user
// may watch one drug in several cities, but max_price is edited in place
// rather than forked into a parallel row.
type UserSubscription struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_subscription_user_drug_city"`
	DrugID    uuid.UUID        `gorm:"column:drug_id;type:uuid;not null;uniqueIndex:idx_subscription_user_drug_city"`
	City      *string          `gorm:"column:city;type:text;uniqueIndex:idx_subscription_user_drug_city"`
	MaxPrice  *decimal.Decimal `gorm:"column:max_price;type:numeric(10,2)"`
	IsActive  bool             `gorm:"column:is_active;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Drug *Drug `gorm:"foreignKey:DrugID;constraint:OnDelete:CASCADE"`
}
