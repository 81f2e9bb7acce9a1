package services

import (
	"regexp"
	"strings"

	"github.com/legalgpt/engine/models"
)

// categoryPatterns drives category classification. Evaluation order matters:
// laboral is checked before contractual so that "contrato de trabajo" lands in
// the labor category, not the commercial-contracts one.
var categoryOrder = []models.Category{
	models.CategoryConstitucion,
	models.CategoryLaboral,
	models.CategoryTributario,
	models.CategoryContractual,
}

var categoryPatterns = map[models.Category][]*regexp.Regexp{
	models.CategoryConstitucion: compilePatterns(
		`constitu\w+`, `crear\s+empresa`, `registr\w+\s+.{0,30}empresa`, `\bsas\b`, `sociedad`, `c[áa]mara.{0,20}comercio`,
	),
	models.CategoryLaboral: compilePatterns(
		`contrato.{0,20}trabajo`, `empleado`, `trabajador`, `n[óo]mina`, `prestaciones`, `liquidaci[óo]n`, `laboral`,
	),
	models.CategoryTributario: compilePatterns(
		`impuesto`, `\bdian\b`, `tributari[oa]`, `renta`, `\biva\b`, `declaraci[óo]n`,
	),
	models.CategoryContractual: compilePatterns(
		`contrato`, `cl[áa]usula`, `comercial`, `obligaci[óo]n`,
	),
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		patterns[i] = regexp.MustCompile(expr)
	}
	return patterns
}

// classifyCategory assigns a category by pattern matching against the lowered
// question. No match means General.
func classifyCategory(question string) models.Category {
	lower := strings.ToLower(question)
	for _, category := range categoryOrder {
		for _, pattern := range categoryPatterns[category] {
			if pattern.MatchString(lower) {
				return category
			}
		}
	}
	return models.CategoryGeneral
}

// retrievalConfig tunes the retriever per category: how many neighbors to ask
// the index for and which keywords boost a chunk's relevance.
type retrievalConfig struct {
	TopK          int
	BoostKeywords []string
}

var retrievalConfigs = map[models.Category]retrievalConfig{
	models.CategoryConstitucion: {TopK: 7, BoostKeywords: []string{"sas", "empresa", "constituir", "cámara", "comercio"}},
	models.CategoryLaboral:      {TopK: 6, BoostKeywords: []string{"contrato", "trabajo", "empleado", "prestaciones", "liquidación"}},
	models.CategoryTributario:   {TopK: 8, BoostKeywords: []string{"impuesto", "dian", "tributario", "renta", "iva"}},
	models.CategoryContractual:  {TopK: 5, BoostKeywords: []string{"contrato", "cláusula", "obligación", "comercial"}},
	models.CategoryGeneral:      {TopK: 5, BoostKeywords: nil},
}

func retrievalConfigFor(category models.Category) retrievalConfig {
	if cfg, ok := retrievalConfigs[category]; ok {
		return cfg
	}
	return retrievalConfigs[models.CategoryGeneral]
}

// sourceBoosts rewards chunks from the foundational legal codes. The key is
// matched as a substring of the lowered source title.
var sourceBoosts = map[string]float64{
	"código civil":        1.1,
	"codigo civil":        1.1,
	"código de comercio":  1.15,
	"codigo de comercio":  1.15,
	"código sustantivo":   1.1,
	"codigo sustantivo":   1.1,
	"estatuto tributario": 1.2,
}

// categoryMultipliers shade confidence by how precise each category's corpus
// tends to be. Tax law is broad and changes often, so it scores lower.
var categoryMultipliers = map[models.Category]float64{
	models.CategoryConstitucion: 1.0,
	models.CategoryLaboral:      0.98,
	models.CategoryTributario:   0.95,
	models.CategoryContractual:  0.92,
	models.CategoryGeneral:      0.85,
}

func categoryMultiplierFor(category models.Category) float64 {
	if m, ok := categoryMultipliers[category]; ok {
		return m
	}
	return categoryMultipliers[models.CategoryGeneral]
}

// abbreviations expanded during query preprocessing so the embedding sees the
// full legal terms.
var abbreviations = map[string]string{
	"sas":  "sociedad por acciones simplificada",
	"ltda": "sociedad limitada",
	"iva":  "impuesto al valor agregado",
	"pyme": "pequeña y mediana empresa",
}

var abbreviationPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(abbreviations))
	for abbr := range abbreviations {
		patterns[abbr] = regexp.MustCompile(`\b` + abbr + `\b`)
	}
	return patterns
}()

var jurisdictionKeywords = []string{"colombia", "colombiano", "colombiana"}

// preprocessQuery rewrites the trimmed question into the text handed to the
// embedding provider: lowered, abbreviations expanded, missing category boost
// keywords appended, and the Colombian jurisdiction pinned.
func preprocessQuery(question string, category models.Category) string {
	processed := strings.ToLower(strings.TrimSpace(question))

	for abbr, full := range abbreviations {
		processed = abbreviationPatterns[abbr].ReplaceAllString(processed, full)
	}

	cfg := retrievalConfigFor(category)
	for i, keyword := range cfg.BoostKeywords {
		if i >= 2 {
			break
		}
		if !strings.Contains(processed, keyword) {
			processed += " " + keyword
		}
	}

	hasJurisdiction := false
	for _, keyword := range jurisdictionKeywords {
		if strings.Contains(processed, keyword) {
			hasJurisdiction = true
			break
		}
	}
	if !hasJurisdiction {
		processed += " colombia legislación colombiana"
	}

	return processed
}
