package catalog

import (
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DrugStats is the aggregate view of one drug's current availability.
// Prices are nil when no pharmacy has the drug in stock.
type DrugStats struct {
	MinPrice      *decimal.Decimal
	AvgPrice      *decimal.Decimal
	PharmacyCount int
}

// AnalogueInfo pairs a substitutable drug with the similarity of the edge
// that produced it and its own availability stats.
type AnalogueInfo struct {
	Drug            models.Drug
	SimilarityScore float64
	Stats           DrugStats
}

// DrugDetail is the full read model served for one drug.
type DrugDetail struct {
	Drug         models.Drug
	Stats        DrugStats
	Availability []models.Availability
	Analogues    []AnalogueInfo
}

// DrugListResult is one page of drug search results.
type DrugListResult struct {
	Drugs      []models.Drug
	NextCursor string
}
