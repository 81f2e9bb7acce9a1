package models

// Category is the closed set of legal query categories. The Normalizer assigns
// one per query; it drives prompt-template selection, retrieval tuning and the
// suggestion taxonomy. Anything that does not match a known pattern falls back
// to CategoryGeneral.
type Category string

const (
	CategoryConstitucion Category = "constitucion"
	CategoryLaboral      Category = "laboral"
	CategoryTributario   Category = "tributario"
	CategoryContractual  Category = "contractual"
	CategoryGeneral      Category = "general"
)

// categoryLabels maps each category to the human-readable label returned to
// the frontend.
var categoryLabels = map[Category]string{
	CategoryConstitucion: "Constitución Empresarial",
	CategoryLaboral:      "Derecho Laboral",
	CategoryTributario:   "Derecho Tributario",
	CategoryContractual:  "Análisis Contractual",
	CategoryGeneral:      "Consulta Legal General",
}

// Label returns the display name for the category. Unknown values get the
// General label rather than leaking the raw enum string.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryGeneral]
}

// Known reports whether c is one of the closed enumeration values.
func (c Category) Known() bool {
	_, ok := categoryLabels[c]
	return ok
}

// AllCategories lists every known category in a fixed order.
func AllCategories() []Category {
	return []Category{
		CategoryConstitucion,
		CategoryLaboral,
		CategoryTributario,
		CategoryContractual,
		CategoryGeneral,
	}
}
