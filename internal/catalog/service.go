package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// analogueCap bounds how many substitutes a single lookup returns.
const analogueCap = 10

// Service exposes catalog read operations.
type Service interface {
	GetDrug(ctx context.Context, drugID uuid.UUID) (*DrugDetail, error)
	ListDrugs(ctx context.Context, input ListDrugsInput) (*DrugListResult, error)
	ComputeDrugStats(ctx context.Context, drugID uuid.UUID) (DrugStats, error)
	ResolveAnalogues(ctx context.Context, drugID uuid.UUID) ([]AnalogueInfo, error)
}

// ListDrugsInput holds drug search parameters.
type ListDrugsInput struct {
	Query  string
	Limit  int
	Cursor string
}

type repository interface {
	FindDrugByID(ctx context.Context, id uuid.UUID) (*models.Drug, error)
	SearchDrugs(ctx context.Context, query string, limit int, cursor *pagination.Cursor) ([]models.Drug, error)
	DrugStats(ctx context.Context, drugID uuid.UUID) (StatsRow, error)
	ListAnalogueEdges(ctx context.Context, drugID uuid.UUID) ([]models.Analogue, error)
	FindDrugsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Drug, error)
	ListDrugAvailability(ctx context.Context, drugID uuid.UUID) ([]models.Availability, error)
}

type service struct {
	repo repository
}

// NewService constructs a catalog service instance.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// GetDrug loads the drug with stats, availability, and resolved analogues.
func (s *service) GetDrug(ctx context.Context, drugID uuid.UUID) (*DrugDetail, error) {
	drug, err := s.findDrug(ctx, drugID)
	if err != nil {
		return nil, err
	}

	stats, err := s.ComputeDrugStats(ctx, drugID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListDrugAvailability(ctx, drugID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list availability")
	}
	analogues, err := s.ResolveAnalogues(ctx, drugID)
	if err != nil {
		return nil, err
	}

	return &DrugDetail{
		Drug:         *drug,
		Stats:        stats,
		Availability: rows,
		Analogues:    analogues,
	}, nil
}

// ListDrugs searches by trade name / mnn substring with cursor pagination.
func (s *service) ListDrugs(ctx context.Context, input ListDrugsInput) (*DrugListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	drugs, err := s.repo.SearchDrugs(ctx, input.Query, pagination.LimitWithBuffer(input.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: search drugs")
	}

	result := &DrugListResult{Drugs: drugs}
	if len(drugs) > limit {
		result.Drugs = drugs[:limit]
		last := result.Drugs[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// ComputeDrugStats recomputes aggregate availability facts on every call;
// results are never cached.
func (s *service) ComputeDrugStats(ctx context.Context, drugID uuid.UUID) (DrugStats, error) {
	row, err := s.repo.DrugStats(ctx, drugID)
	if err != nil {
		return DrugStats{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: drug stats")
	}

	stats := DrugStats{PharmacyCount: int(row.PharmacyCount)}
	if row.MinPrice.Valid {
		min := row.MinPrice.Decimal
		stats.MinPrice = &min
	}
	if row.AvgPrice.Valid {
		avg := row.AvgPrice.Decimal.Round(2)
		stats.AvgPrice = &avg
	}
	return stats, nil
}

// ResolveAnalogues unions both edge directions, takes the opposite endpoint
// of each row, dedups by drug id, and guards against self-referential rows.
func (s *service) ResolveAnalogues(ctx context.Context, drugID uuid.UUID) ([]AnalogueInfo, error) {
	edges, err := s.repo.ListAnalogueEdges(ctx, drugID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list analogue edges")
	}

	seen := map[uuid.UUID]float64{}
	order := []uuid.UUID{}
	for _, edge := range edges {
		other := edge.AnalogueID
		if other == drugID {
			other = edge.OriginalID
		}
		if other == drugID {
			// self-referential row in malformed data
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = edge.SimilarityScore
		order = append(order, other)
		if len(order) == analogueCap {
			break
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	drugs, err := s.repo.FindDrugsByIDs(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load analogue drugs")
	}
	byID := make(map[uuid.UUID]models.Drug, len(drugs))
	for _, d := range drugs {
		byID[d.ID] = d
	}

	infos := make([]AnalogueInfo, 0, len(order))
	for _, id := range order {
		drug, ok := byID[id]
		if !ok {
			continue
		}
		stats, err := s.ComputeDrugStats(ctx, id)
		if err != nil {
			return nil, err
		}
		infos = append(infos, AnalogueInfo{
			Drug:            drug,
			SimilarityScore: seen[id],
			Stats:           stats,
		})
	}
	return infos, nil
}

func (s *service) findDrug(ctx context.Context, drugID uuid.UUID) (*models.Drug, error) {
	drug, err := s.repo.FindDrugByID(ctx, drugID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drug not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load drug")
	}
	return drug, nil
}
