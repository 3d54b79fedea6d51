package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepo struct {
	drugs        map[uuid.UUID]models.Drug
	statsByDrug  map[uuid.UUID]StatsRow
	edges        []models.Analogue
	availability []models.Availability
	statsErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		drugs:       map[uuid.UUID]models.Drug{},
		statsByDrug: map[uuid.UUID]StatsRow{},
	}
}

func (f *fakeRepo) addDrug(tradeName, mnn string) uuid.UUID {
	id := uuid.New()
	f.drugs[id] = models.Drug{ID: id, TradeName: tradeName, MNN: mnn}
	return id
}

func (f *fakeRepo) FindDrugByID(_ context.Context, id uuid.UUID) (*models.Drug, error) {
	drug, ok := f.drugs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &drug, nil
}

func (f *fakeRepo) SearchDrugs(_ context.Context, _ string, limit int, _ *pagination.Cursor) ([]models.Drug, error) {
	out := []models.Drug{}
	for _, d := range f.drugs {
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) DrugStats(_ context.Context, drugID uuid.UUID) (StatsRow, error) {
	if f.statsErr != nil {
		return StatsRow{}, f.statsErr
	}
	return f.statsByDrug[drugID], nil
}

func (f *fakeRepo) ListAnalogueEdges(_ context.Context, drugID uuid.UUID) ([]models.Analogue, error) {
	out := []models.Analogue{}
	for _, e := range f.edges {
		if e.OriginalID == drugID || e.AnalogueID == drugID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindDrugsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Drug, error) {
	out := []models.Drug{}
	for _, id := range ids {
		if d, ok := f.drugs[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDrugAvailability(_ context.Context, _ uuid.UUID) ([]models.Availability, error) {
	return f.availability, nil
}

func mustService(t *testing.T, repo *fakeRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestComputeDrugStatsConvertsAggregates(t *testing.T) {
	repo := newFakeRepo()
	drugID := repo.addDrug("Нурофен", "Ибупрофен")
	repo.statsByDrug[drugID] = StatsRow{
		MinPrice:      decimal.NewNullDecimal(decimal.RequireFromString("45.00")),
		AvgPrice:      decimal.NewNullDecimal(decimal.RequireFromString("52.504")),
		PharmacyCount: 3,
	}

	stats, err := mustService(t, repo).ComputeDrugStats(context.Background(), drugID)
	if err != nil {
		t.Fatalf("ComputeDrugStats: %v", err)
	}
	if stats.MinPrice == nil || !stats.MinPrice.Equal(decimal.RequireFromString("45.00")) {
		t.Fatalf("unexpected min price %v", stats.MinPrice)
	}
	if stats.AvgPrice == nil || !stats.AvgPrice.Equal(decimal.RequireFromString("52.50")) {
		t.Fatalf("avg price should round to 2 decimals, got %v", stats.AvgPrice)
	}
	if stats.PharmacyCount != 3 {
		t.Fatalf("expected pharmacy count 3, got %d", stats.PharmacyCount)
	}
}

func TestComputeDrugStatsWithNoStock(t *testing.T) {
	repo := newFakeRepo()
	drugID := repo.addDrug("Лоратадин", "Лоратадин")

	stats, err := mustService(t, repo).ComputeDrugStats(context.Background(), drugID)
	if err != nil {
		t.Fatalf("ComputeDrugStats: %v", err)
	}
	if stats.MinPrice != nil || stats.AvgPrice != nil {
		t.Fatalf("expected nil prices for out-of-stock drug, got %v / %v", stats.MinPrice, stats.AvgPrice)
	}
	if stats.PharmacyCount != 0 {
		t.Fatalf("expected zero pharmacies, got %d", stats.PharmacyCount)
	}
}

func TestResolveAnaloguesUnionsBothDirections(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addDrug("Парацетамол", "Парацетамол")
	b := repo.addDrug("Панадол", "Парацетамол")
	c := repo.addDrug("Эффералган", "Парацетамол")
	repo.edges = []models.Analogue{
		{ID: uuid.New(), OriginalID: a, AnalogueID: b, SimilarityScore: 0.95, IsActive: true},
		{ID: uuid.New(), OriginalID: c, AnalogueID: a, SimilarityScore: 0.90, IsActive: true},
	}

	infos, err := mustService(t, repo).ResolveAnalogues(context.Background(), a)
	if err != nil {
		t.Fatalf("ResolveAnalogues: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected both directions resolved, got %d", len(infos))
	}
	got := map[uuid.UUID]bool{}
	for _, info := range infos {
		if got[info.Drug.ID] {
			t.Fatalf("drug %s returned twice", info.Drug.TradeName)
		}
		got[info.Drug.ID] = true
	}
	if !got[b] || !got[c] {
		t.Fatalf("expected analogues %v and %v, got %v", b, c, got)
	}
}

func TestResolveAnaloguesDedupsAndSkipsSelfEdges(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addDrug("Амоксиклав", "Амоксициллин")
	b := repo.addDrug("Аугментин", "Амоксициллин")
	repo.edges = []models.Analogue{
		{ID: uuid.New(), OriginalID: a, AnalogueID: b, SimilarityScore: 0.92, IsActive: true},
		{ID: uuid.New(), OriginalID: b, AnalogueID: a, SimilarityScore: 0.92, IsActive: true},
		{ID: uuid.New(), OriginalID: a, AnalogueID: a, SimilarityScore: 1.0, IsActive: true},
	}

	infos, err := mustService(t, repo).ResolveAnalogues(context.Background(), a)
	if err != nil {
		t.Fatalf("ResolveAnalogues: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected a single deduplicated analogue, got %d", len(infos))
	}
	if infos[0].Drug.ID != b {
		t.Fatalf("expected analogue %v, got %v", b, infos[0].Drug.ID)
	}
}

func TestResolveAnaloguesCapsResults(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addDrug("Ибупрофен", "Ибупрофен")
	for i := 0; i < 15; i++ {
		other := repo.addDrug(fmt.Sprintf("Аналог-%d", i), "Ибупрофен")
		repo.edges = append(repo.edges, models.Analogue{
			ID: uuid.New(), OriginalID: a, AnalogueID: other, SimilarityScore: 0.8, IsActive: true,
		})
	}

	infos, err := mustService(t, repo).ResolveAnalogues(context.Background(), a)
	if err != nil {
		t.Fatalf("ResolveAnalogues: %v", err)
	}
	if len(infos) != analogueCap {
		t.Fatalf("expected cap of %d analogues, got %d", analogueCap, len(infos))
	}
}

func TestGetDrugNotFound(t *testing.T) {
	repo := newFakeRepo()
	_, err := mustService(t, repo).GetDrug(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}
