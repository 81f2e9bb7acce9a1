package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/legalgpt/engine/models"
)

// Normalizer cleans an incoming question and assigns its category. It is a
// pure function over the input and the static taxonomy: no I/O, no state.
type Normalizer struct {
	maxQuestionLen int
}

// NewNormalizer creates a Normalizer enforcing the given question length limit.
func NewNormalizer(maxQuestionLen int) *Normalizer {
	if maxQuestionLen <= 0 {
		maxQuestionLen = 1000
	}
	return &Normalizer{maxQuestionLen: maxQuestionLen}
}

// Normalize validates the query and produces the text the retriever will embed
// plus the category that drives the rest of the pipeline. Rejections happen
// here, before any retrieval work.
func (n *Normalizer) Normalize(q models.Query) (models.NormalizedQuery, error) {
	trimmed := strings.TrimSpace(q.Text)
	if trimmed == "" {
		return models.NormalizedQuery{}, &models.ValidationError{Reason: "question is empty"}
	}
	if utf8.RuneCountInString(trimmed) > n.maxQuestionLen {
		return models.NormalizedQuery{}, &models.ValidationError{
			Reason: fmt.Sprintf("question exceeds %d characters", n.maxQuestionLen),
		}
	}

	category := classifyCategory(trimmed)

	text := preprocessQuery(trimmed, category)
	if hint := strings.TrimSpace(q.ContextHint); hint != "" {
		text += " " + strings.ToLower(hint)
	}

	return models.NormalizedQuery{
		Text:     text,
		Original: trimmed,
		Category: category,
	}, nil
}
