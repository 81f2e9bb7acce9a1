package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/legalgpt/engine/models"
)

// VectorIndex is the read-only nearest-neighbor search collaborator. The query
// path never writes through this interface; ingestion owns all writes.
type VectorIndex interface {
	// Search returns the k nearest chunks visible to the given owner scopes,
	// with relevance normalized to [0,1]. The scope filter is applied by the
	// index before ranking, so inaccessible chunks never consume the k budget.
	Search(ctx context.Context, embedding []float32, scopes []string, k int) ([]models.RetrievalResult, error)

	// Count reports how many chunks the index holds.
	Count(ctx context.Context) (int, error)
}

// Retriever embeds the normalized query and ranks chunks from the index,
// applying per-category relevance boosts and the minimum relevance floor.
type Retriever struct {
	embedder EmbeddingProvider
	index    VectorIndex

	relevanceFloor float64
	searchTimeout  time.Duration
}

// NewRetriever wires the retrieval stage from its two collaborators.
func NewRetriever(embedder EmbeddingProvider, index VectorIndex, relevanceFloor float64, searchTimeout time.Duration) *Retriever {
	return &Retriever{
		embedder:       embedder,
		index:          index,
		relevanceFloor: relevanceFloor,
		searchTimeout:  searchTimeout,
	}
}

// Retrieve runs the scoped nearest-neighbor search for the normalized query.
// An unreachable embedding provider or index surfaces as RetrievalUnavailable;
// a successful search with nothing above the floor returns an empty slice and
// a nil error.
func (r *Retriever) Retrieve(ctx context.Context, nq models.NormalizedQuery, useUploadedDocs bool, userScope string) ([]models.RetrievalResult, error) {
	scopes := []string{models.OwnerScopeGlobal}
	if useUploadedDocs && userScope != "" {
		scopes = append(scopes, userScope)
	}

	embedding, err := r.embedder.Embed(ctx, nq.Text)
	if err != nil {
		return nil, &models.RetrievalUnavailable{Err: err}
	}

	cfg := retrievalConfigFor(nq.Category)

	searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()

	results, err := r.index.Search(searchCtx, embedding, scopes, cfg.TopK)
	if err != nil {
		return nil, &models.RetrievalUnavailable{Err: err}
	}

	ranked := make([]models.RetrievalResult, 0, len(results))
	for _, result := range results {
		result.Relevance = boostRelevance(result, cfg)
		if result.Relevance < r.relevanceFloor {
			continue
		}
		ranked = append(ranked, result)
	}

	// Descending relevance with ascending chunk ID as the tie-break keeps the
	// output deterministic for identical index contents.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		return ranked[i].ChunkID < ranked[j].ChunkID
	})

	if len(ranked) > cfg.TopK {
		ranked = ranked[:cfg.TopK]
	}

	log.Printf("RETRIEVER: %d/%d results above floor %.2f (category=%s, scopes=%v)",
		len(ranked), len(results), r.relevanceFloor, nq.Category, scopes)
	return ranked, nil
}

// boostRelevance rewards chunks from foundational legal codes and chunks that
// contain the category's boost keywords, clamped back to [0,1].
func boostRelevance(result models.RetrievalResult, cfg retrievalConfig) float64 {
	score := result.Relevance

	title := strings.ToLower(result.SourceTitle)
	titleBoost := 1.0
	for fragment, boost := range sourceBoosts {
		if strings.Contains(title, fragment) && boost > titleBoost {
			titleBoost = boost
		}
	}
	score *= titleBoost

	content := strings.ToLower(result.Text)
	matching := 0
	for _, keyword := range cfg.BoostKeywords {
		if strings.Contains(content, keyword) {
			matching++
		}
	}
	if matching > 0 {
		score *= 1.0 + float64(matching)*0.05
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
