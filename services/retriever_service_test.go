package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/legalgpt/engine/models"
)

// mockEmbedder implements EmbeddingProvider for testing.
type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// mockIndex implements VectorIndex for testing and records the scopes it was
// searched with.
type mockIndex struct {
	results    []models.RetrievalResult
	err        error
	lastScopes []string
	searches   int
}

func (m *mockIndex) Search(ctx context.Context, embedding []float32, scopes []string, k int) ([]models.RetrievalResult, error) {
	m.searches++
	m.lastScopes = scopes
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockIndex) Count(ctx context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.results), nil
}

func generalQuery(text string) models.NormalizedQuery {
	return models.NormalizedQuery{Text: text, Original: text, Category: models.CategoryGeneral}
}

func TestRetriever_GlobalScopeOnlyWithoutUploadedDocs(t *testing.T) {
	index := &mockIndex{}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	_, err := r.Retrieve(context.Background(), generalQuery("impuestos"), false, "user-42")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if len(index.lastScopes) != 1 || index.lastScopes[0] != models.OwnerScopeGlobal {
		t.Errorf("expected only the global scope, got %v", index.lastScopes)
	}
}

func TestRetriever_AddsUserScopeForUploadedDocs(t *testing.T) {
	index := &mockIndex{}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	_, err := r.Retrieve(context.Background(), generalQuery("impuestos"), true, "user-42")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}

	if len(index.lastScopes) != 2 || index.lastScopes[0] != models.OwnerScopeGlobal || index.lastScopes[1] != "user-42" {
		t.Errorf("expected global+user scopes, got %v", index.lastScopes)
	}
}

func TestRetriever_FiltersBelowRelevanceFloor(t *testing.T) {
	index := &mockIndex{
		results: []models.RetrievalResult{
			{ChunkID: "a", SourceTitle: "Fuente A", Relevance: 0.8},
			{ChunkID: "b", SourceTitle: "Fuente B", Relevance: 0.05},
		},
	}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	results, err := r.Retrieve(context.Background(), generalQuery("impuestos"), false, "")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "a" {
		t.Errorf("expected only chunk a above the floor, got %v", results)
	}
}

func TestRetriever_ZeroResultsIsNotAnError(t *testing.T) {
	index := &mockIndex{}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	results, err := r.Retrieve(context.Background(), generalQuery("impuestos"), false, "")
	if err != nil {
		t.Fatalf("empty index should not be an error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestRetriever_IndexFailureIsRetrievalUnavailable(t *testing.T) {
	index := &mockIndex{err: errors.New("connection refused")}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	_, err := r.Retrieve(context.Background(), generalQuery("impuestos"), false, "")

	var unavailable *models.RetrievalUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected RetrievalUnavailable, got %v", err)
	}
}

func TestRetriever_EmbeddingFailureIsRetrievalUnavailable(t *testing.T) {
	embedder := &mockEmbedder{err: errors.New("timeout")}
	index := &mockIndex{}
	r := NewRetriever(embedder, index, 0.15, time.Second)

	_, err := r.Retrieve(context.Background(), generalQuery("impuestos"), false, "")

	var unavailable *models.RetrievalUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected RetrievalUnavailable, got %v", err)
	}
	if index.searches != 0 {
		t.Error("index must not be searched when embedding fails")
	}
}

func TestRetriever_TieBreakByChunkID(t *testing.T) {
	index := &mockIndex{
		results: []models.RetrievalResult{
			{ChunkID: "z9", SourceTitle: "Fuente Z", Relevance: 0.7},
			{ChunkID: "a1", SourceTitle: "Fuente A", Relevance: 0.7},
		},
	}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	results, err := r.Retrieve(context.Background(), generalQuery("impuestos"), false, "")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(results) != 2 || results[0].ChunkID != "a1" || results[1].ChunkID != "z9" {
		t.Errorf("expected chunk ID ascending tie-break, got %v", results)
	}
}

func TestRetriever_BoostsClampToOne(t *testing.T) {
	index := &mockIndex{
		results: []models.RetrievalResult{
			{ChunkID: "a", SourceTitle: "Estatuto Tributario", Relevance: 0.95, Text: "impuesto renta iva dian"},
		},
	}
	r := NewRetriever(&mockEmbedder{}, index, 0.15, time.Second)

	results, err := r.Retrieve(context.Background(), models.NormalizedQuery{
		Text: "impuestos", Original: "impuestos", Category: models.CategoryTributario,
	}, false, "")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].Relevance > 1.0 {
		t.Errorf("relevance must stay in [0,1], got %f", results[0].Relevance)
	}
	if results[0].Relevance <= 0.95 {
		t.Errorf("expected boosted relevance above the base score, got %f", results[0].Relevance)
	}
}
