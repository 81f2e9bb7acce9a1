package services

import (
	"sort"
	"strings"

	"github.com/legalgpt/engine/models"
)

// suggestionBanks holds the static follow-up questions per category. The
// General bank doubles as the fallback for anything outside the enumeration.
var suggestionBanks = map[models.Category][]string{
	models.CategoryConstitucion: {
		"¿Cómo constituyo una SAS en Colombia y cuánto cuesta?",
		"¿Qué diferencias hay entre SAS y Ltda para una PyME?",
		"¿Cuánto tiempo toma registrar mi empresa en Cámara de Comercio?",
		"¿Qué documentos necesito para constituir mi microempresa?",
	},
	models.CategoryLaboral: {
		"¿Cómo hago un contrato de trabajo para mi primer empleado?",
		"¿Qué diferencia hay entre contrato fijo e indefinido?",
		"¿Cómo calculo correctamente la liquidación laboral?",
		"¿Qué prestaciones sociales debo pagar como PyME?",
	},
	models.CategoryTributario: {
		"¿Cuándo debo declarar renta como empresa en Colombia?",
		"¿Qué es el Régimen Simple de Tributación y me conviene?",
		"¿Cómo funciona el IVA para mi PyME?",
		"¿Qué sanciones hay por no declarar a tiempo en DIAN?",
	},
	models.CategoryContractual: {
		"¿Qué cláusulas debe tener un contrato de prestación de servicios?",
		"¿Cómo me protejo en un contrato de compraventa?",
		"¿Qué es una cláusula de exclusividad y cuándo usarla?",
		"¿Cómo puedo terminar legalmente un contrato comercial?",
	},
	models.CategoryGeneral: {
		"¿Cómo constituir mi empresa?",
		"¿Cuáles son mis obligaciones laborales?",
		"¿Qué impuestos debo pagar?",
		"¿Cómo proteger mi negocio legalmente?",
	},
}

// SuggestionGenerator derives follow-up questions from the category taxonomy,
// lightly reordered by overlap with the answer text. It is total: any category
// outside the enumeration falls back to the General bank, and the reordering
// can only permute the static entries, so suggestion generation can never fail
// the overall query.
type SuggestionGenerator struct {
	limit int
}

// NewSuggestionGenerator creates a generator returning up to limit entries.
func NewSuggestionGenerator(limit int) *SuggestionGenerator {
	if limit <= 0 {
		limit = 3
	}
	return &SuggestionGenerator{limit: limit}
}

// Suggest returns up to the configured number of follow-up questions for the
// category, most answer-relevant first.
func (g *SuggestionGenerator) Suggest(category models.Category, answerText string) []string {
	bank, ok := suggestionBanks[category]
	if !ok {
		bank = suggestionBanks[models.CategoryGeneral]
	}

	reordered := reorderByOverlap(bank, answerText)
	if len(reordered) > g.limit {
		reordered = reordered[:g.limit]
	}
	return reordered
}

// Bank exposes the raw per-category bank, used by the suggestions endpoint.
func (g *SuggestionGenerator) Bank(category models.Category) []string {
	bank, ok := suggestionBanks[category]
	if !ok {
		bank = suggestionBanks[models.CategoryGeneral]
	}
	out := make([]string, len(bank))
	copy(out, bank)
	return out
}

// reorderByOverlap sorts the bank by how many significant words (longer than
// three runes) the suggestion shares with the answer. The sort is stable, so
// with no overlap at all the static bank order is preserved.
func reorderByOverlap(bank []string, answerText string) []string {
	answerWords := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(answerText)) {
		if len([]rune(word)) > 3 {
			answerWords[strings.Trim(word, ".,;:¿?¡!()")] = true
		}
	}

	out := make([]string, len(bank))
	copy(out, bank)

	scores := make(map[string]int, len(out))
	for _, suggestion := range out {
		score := 0
		for _, word := range strings.Fields(strings.ToLower(suggestion)) {
			if answerWords[strings.Trim(word, ".,;:¿?¡!()")] {
				score++
			}
		}
		scores[suggestion] = score
	}

	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i]] > scores[out[j]]
	})
	return out
}
