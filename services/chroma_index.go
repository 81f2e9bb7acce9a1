package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/legalgpt/engine/models"
)

// ChromaIndex adapts a ChromaDB collection to the VectorIndex port. The owner
// scope restriction is pushed down as a where-clause so that filtering happens
// before ranking inside the index.
type ChromaIndex struct {
	collection chromago.Collection
}

// NewChromaIndex wraps the given collection.
func NewChromaIndex(collection chromago.Collection) *ChromaIndex {
	return &ChromaIndex{collection: collection}
}

// Search implements VectorIndex over the Chroma v2 query API.
func (c *ChromaIndex) Search(ctx context.Context, embedding []float32, scopes []string, k int) ([]models.RetrievalResult, error) {
	results, err := c.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
		chromago.WithWhereQuery(scopeFilter(scopes)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}

	hits := make([]models.RetrievalResult, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		hit := models.RetrievalResult{
			ChunkID:     string(id),
			SourceTitle: "Documento legal",
		}
		if len(documentGroups) > 0 && i < len(documentGroups[0]) {
			hit.Text = documentGroups[0][i].ContentString()
		}
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			// Chroma reports a distance (smaller is closer); convert to a
			// similarity in [0,1].
			relevance := 1.0 - float64(distanceGroups[0][i])
			if relevance < 0 {
				relevance = 0
			}
			if relevance > 1 {
				relevance = 1
			}
			hit.Relevance = relevance
		}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			if title, ok := metadataString(metadataGroups[0][i], "source_title"); ok && title != "" {
				hit.SourceTitle = title
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count implements VectorIndex.
func (c *ChromaIndex) Count(ctx context.Context) (int, error) {
	count, err := c.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// scopeFilter builds the owner-scope where-clause. A single scope is a plain
// equality; uploaded-docs queries get the union of global and user chunks.
func scopeFilter(scopes []string) chromago.WhereFilter {
	if len(scopes) == 1 {
		return chromago.EqString("owner_scope", scopes[0])
	}
	clauses := make([]chromago.WhereClause, len(scopes))
	for i, scope := range scopes {
		clauses[i] = chromago.EqString("owner_scope", scope)
	}
	return chromago.Or(clauses...)
}

// metadataString reads a string attribute by marshalling the metadata through
// JSON, since DocumentMetadata exposes no generic accessor.
func metadataString(metadata chromago.DocumentMetadata, key string) (string, bool) {
	if metadata == nil {
		return "", false
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal chunk metadata: %v", err)
		return "", false
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal chunk metadata: %v", err)
		return "", false
	}
	value, ok := metadataMap[key].(string)
	return value, ok
}
