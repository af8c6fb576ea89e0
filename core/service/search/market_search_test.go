package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"market_server/core/domain"
	"market_server/pkg/apperr"

	"github.com/google/uuid"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical vectors", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1},
		{"empty a", nil, []float32{1, 2}, 0},
		{"empty b", []float32{1, 2}, nil, 0},
		{"both empty", nil, nil, 0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float32{0.5, -0.2, 0.8, 0.1}
	b := []float32{0.3, 0.9, -0.4, 0.7}

	if got, want := CosineSimilarity(a, b), CosineSimilarity(b, a); got != want {
		t.Errorf("sim(a,b)=%v != sim(b,a)=%v", got, want)
	}
}

// =============================================================================
// Service tests
// =============================================================================

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vec, f.err
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = f.vec
	}
	return result, f.err
}

type fakeCatalog struct {
	embedded []*domain.Product
	err      error
}

func (f *fakeCatalog) Create(ctx context.Context, p *domain.Product) error { return nil }
func (f *fakeCatalog) Update(ctx context.Context, p *domain.Product) error { return nil }
func (f *fakeCatalog) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (f *fakeCatalog) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return nil, nil
}
func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	return nil, nil
}
func (f *fakeCatalog) Find(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	return nil, nil
}
func (f *fakeCatalog) FindActiveInStock(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	return nil, nil
}
func (f *fakeCatalog) FindSeasonal(ctx context.Context, month time.Month, categories []string, limit int) ([]*domain.Product, error) {
	return nil, nil
}
func (f *fakeCatalog) FindWithEmbeddings(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, error) {
	return f.embedded, f.err
}

func embeddedProduct(name string, vec []float32) *domain.Product {
	return &domain.Product{ID: uuid.New(), Name: name, Embedding: vec}
}

func TestSemanticSearchRanksBySimilarity(t *testing.T) {
	close := embeddedProduct("close", []float32{1, 0.1})
	far := embeddedProduct("far", []float32{0.5, 0.9})

	svc := NewService(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeCatalog{embedded: []*domain.Product{far, close}},
	)

	got, err := svc.SemanticSearch(context.Background(), "query", nil, 10)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != close.ID {
		t.Errorf("expected closest product first")
	}
}

func TestSemanticSearchSimilarityFloor(t *testing.T) {
	// Orthogonal to the query: similarity 0, below the 0.3 floor.
	unrelated := embeddedProduct("unrelated", []float32{0, 1})
	related := embeddedProduct("related", []float32{1, 0})

	svc := NewService(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeCatalog{embedded: []*domain.Product{unrelated, related}},
	)

	got, err := svc.SemanticSearch(context.Background(), "query", nil, 10)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(got) != 1 || got[0].ID != related.ID {
		t.Errorf("expected only the related product, got %d results", len(got))
	}
}

func TestSemanticSearchProviderFailureIsHardError(t *testing.T) {
	svc := NewService(
		&fakeEmbedder{err: errors.New("connection refused")},
		&fakeCatalog{},
	)

	_, err := svc.SemanticSearch(context.Background(), "query", nil, 10)
	if err == nil {
		t.Fatal("expected error from provider failure")
	}
	if !apperr.HasCode(err, apperr.CodeProviderFailed) {
		t.Errorf("expected PROVIDER_FAILED, got %v", err)
	}
}

func TestSemanticSearchEmptyQuery(t *testing.T) {
	svc := NewService(&fakeEmbedder{}, &fakeCatalog{})

	_, err := svc.SemanticSearch(context.Background(), "   ", nil, 10)
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if !apperr.HasCode(err, apperr.CodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}

func TestSemanticSearchSkipsMismatchedEmbeddings(t *testing.T) {
	mismatched := embeddedProduct("bad-dims", []float32{1, 0, 0})
	good := embeddedProduct("good", []float32{1, 0})

	svc := NewService(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeCatalog{embedded: []*domain.Product{mismatched, good}},
	)

	got, err := svc.SemanticSearch(context.Background(), "query", nil, 10)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(got) != 1 || got[0].ID != good.ID {
		t.Errorf("expected mismatched-dimension product dropped")
	}
}

func TestSemanticSearchLimit(t *testing.T) {
	var products []*domain.Product
	for i := 0; i < 10; i++ {
		products = append(products, embeddedProduct("p", []float32{1, 0}))
	}

	svc := NewService(
		&fakeEmbedder{vec: []float32{1, 0}},
		&fakeCatalog{embedded: products},
	)

	got, err := svc.SemanticSearch(context.Background(), "query", nil, 3)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 results, got %d", len(got))
	}
}
