package models

import (
	"time"

	"github.com/google/uuid"
)

// Analogue is a directed substitutability edge between two drugs. The
// relation is conceptually symmetric; when both directions matter two rows
// exist, and consumers union both directions when resolving analogues.
type Analogue struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OriginalID      uuid.UUID `gorm:"column:original_id;type:uuid;not null;uniqueIndex:idx_analogue_pair"`
	AnalogueID      uuid.UUID `gorm:"column:analogue_id;type:uuid;not null;uniqueIndex:idx_analogue_pair"`
	SimilarityScore float64   `gorm:"column:similarity_score;not null"`
	IsActive        bool      `gorm:"column:is_active;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`

	Original *Drug `gorm:"foreignKey:OriginalID;constraint:OnDelete:CASCADE"`
	Analogue *Drug `gorm:"foreignKey:AnalogueID;constraint:OnDelete:CASCADE"`
}
