package services

import (
	"context"
	"log"
	"time"

	"github.com/legalgpt/engine/models"
)

// LegalQueryEngine runs the full query pipeline:
// normalize -> retrieve -> assemble -> synthesize -> suggest.
// Each invocation is stateless; the only shared resource is the read-only
// vector index behind the retriever.
type LegalQueryEngine interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
	Suggestions(category string) models.SuggestionsResponse
	Status(ctx context.Context) models.StatusResponse
}

// legalQueryEngineImpl holds the five pipeline stages.
type legalQueryEngineImpl struct {
	normalizer  *Normalizer
	retriever   *Retriever
	assembler   *ContextAssembler
	synthesizer *Synthesizer
	suggestions *SuggestionGenerator
	index       VectorIndex
}

// NewLegalQueryEngine wires the pipeline stages into an engine.
func NewLegalQueryEngine(
	normalizer *Normalizer,
	retriever *Retriever,
	assembler *ContextAssembler,
	synthesizer *Synthesizer,
	suggestions *SuggestionGenerator,
	index VectorIndex,
) LegalQueryEngine {
	return &legalQueryEngineImpl{
		normalizer:  normalizer,
		retriever:   retriever,
		assembler:   assembler,
		synthesizer: synthesizer,
		suggestions: suggestions,
		index:       index,
	}
}

// Query implements LegalQueryEngine. Stage order within a query is strict;
// failures surface as the typed errors from models.
func (e *legalQueryEngineImpl) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	start := time.Now()
	log.Printf("SERVICE: Querying with: '%s' (use_uploaded_docs=%v)", req.Question, req.UseUploadedDocs)

	normalized, err := e.normalizer.Normalize(models.Query{
		Text:            req.Question,
		ContextHint:     req.ContextHint,
		UseUploadedDocs: req.UseUploadedDocs,
		UserScope:       req.UserScope,
	})
	if err != nil {
		return nil, err
	}

	results, err := e.retriever.Retrieve(ctx, normalized, req.UseUploadedDocs, req.UserScope)
	if err != nil {
		return nil, err
	}

	assembled := e.assembler.Assemble(results)

	answerText, confidence, err := e.synthesizer.Synthesize(ctx, normalized, assembled)
	if err != nil {
		return nil, err
	}

	answer := models.Answer{
		Text:        answerText,
		Confidence:  confidence,
		Category:    normalized.Category,
		Sources:     assembled.Sources,
		Suggestions: e.suggestions.Suggest(normalized.Category, answerText),
	}
	if answer.Sources == nil {
		answer.Sources = []models.RetrievalResult{}
	}

	response := &models.QueryResponse{
		Answer:         answer.Text,
		Confidence:     answer.Confidence,
		Category:       answer.Category.Label(),
		Sources:        answer.Sources,
		Suggestions:    answer.Suggestions,
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	log.Printf("SERVICE: Query answered (category=%s, sources=%d, confidence=%.2f) in %dms",
		answer.Category, len(answer.Sources), answer.Confidence, response.ResponseTimeMs)
	return response, nil
}

// Suggestions implements LegalQueryEngine. The category parameter is the enum
// value, not the display label; unknown values fall back to the General bank.
func (e *legalQueryEngineImpl) Suggestions(category string) models.SuggestionsResponse {
	cat := models.Category(category)
	if !cat.Known() {
		cat = models.CategoryGeneral
	}
	return models.SuggestionsResponse{
		Category:    cat.Label(),
		Suggestions: e.suggestions.Bank(cat),
	}
}

// Status implements LegalQueryEngine.
func (e *legalQueryEngineImpl) Status(ctx context.Context) models.StatusResponse {
	labels := make([]string, 0, len(models.AllCategories()))
	for _, category := range models.AllCategories() {
		labels = append(labels, category.Label())
	}

	total, err := e.index.Count(ctx)
	if err != nil {
		log.Printf("SERVICE: vector index unreachable during status check: %v", err)
		return models.StatusResponse{
			Status:            "degraded",
			VectorstoreActive: false,
			Categories:        labels,
		}
	}
	return models.StatusResponse{
		Status:            "active",
		VectorstoreActive: true,
		TotalChunks:       total,
		Categories:        labels,
	}
}
