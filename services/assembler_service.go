package services

import (
	"fmt"
	"strings"

	"github.com/legalgpt/engine/models"
)

// ContextAssembler packs ranked retrieval results into a bounded context
// window. It is deterministic: the same input list and budget always produce
// the same AssembledContext.
type ContextAssembler struct {
	budget int
}

// NewContextAssembler creates an assembler with the given character budget.
func NewContextAssembler(budget int) *ContextAssembler {
	if budget <= 0 {
		budget = 2000
	}
	return &ContextAssembler{budget: budget}
}

// Assemble deduplicates by source title (highest relevance wins), then greedily
// accepts whole chunks in the given order until the budget is exhausted. A
// chunk that would overflow the budget is skipped, never truncated mid-text.
// An empty input yields an empty context, which is a valid "no grounding
// found" state.
func (a *ContextAssembler) Assemble(results []models.RetrievalResult) models.AssembledContext {
	deduped := dedupeByTitle(results)

	var sb strings.Builder
	var used []models.RetrievalResult
	size := 0

	for _, result := range deduped {
		block := fmt.Sprintf("Fuente: %s\n%s", result.SourceTitle, result.Text)
		blockSize := len(block)
		if size > 0 {
			blockSize += 2 // separator
		}
		if size+blockSize > a.budget {
			continue
		}
		if size > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(block)
		size += blockSize
		used = append(used, result)
	}

	return models.AssembledContext{
		Text:    sb.String(),
		Sources: used,
	}
}

// dedupeByTitle keeps only the highest-relevance chunk per source title,
// preserving the input order of the winners.
func dedupeByTitle(results []models.RetrievalResult) []models.RetrievalResult {
	best := make(map[string]models.RetrievalResult, len(results))
	for _, result := range results {
		current, seen := best[result.SourceTitle]
		if !seen || result.Relevance > current.Relevance {
			best[result.SourceTitle] = result
		}
	}

	deduped := make([]models.RetrievalResult, 0, len(best))
	emitted := make(map[string]bool, len(best))
	for _, result := range results {
		if emitted[result.SourceTitle] {
			continue
		}
		emitted[result.SourceTitle] = true
		deduped = append(deduped, best[result.SourceTitle])
	}
	return deduped
}
