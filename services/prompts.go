package services

import (
	"fmt"

	"github.com/legalgpt/engine/models"
)

// systemInstruction is the fixed role given to the language model on every
// completion.
const systemInstruction = `Eres LegalGPT, asesor legal experto para PyMEs colombianas con acceso a legislación específica. Responde de forma concisa, práctica y conversacional, como un abogado explicándole a un emprendedor. Menciona artículos legales y organismos como DIAN, Cámara de Comercio o MinTrabajo cuando sea relevante. No inventes información: si el contexto no cubre la pregunta, dilo.`

// noSourcesCaveat is appended to every answer produced without grounding. The
// phrase "no encontré fuentes" is part of the response contract with the
// frontend and must not be reworded away.
const noSourcesCaveat = `Ten en cuenta que no encontré fuentes legales específicas para esta consulta, así que esta orientación es general. Para tu caso concreto te recomiendo consultar con un abogado.`

const emptyContextPlaceholder = "No se encontró contexto legal específico en la base de datos."

// promptTemplates is the closed category-to-template mapping. Each template
// takes the question as %[1]s and the assembled legal context as %[2]s.
var promptTemplates = map[models.Category]string{
	models.CategoryConstitucion: `CONSULTA: %[1]s

LEGISLACIÓN:
%[2]s

Tienes experiencia especializada en constitución y formalización de empresas en Colombia. Responde de forma práctica: incluye los pasos esenciales, los documentos principales y los costos aproximados ante la Cámara de Comercio.`,

	models.CategoryLaboral: `CONSULTA: %[1]s

LEGISLACIÓN:
%[2]s

Tienes experiencia especializada en derecho laboral colombiano. Responde de forma práctica, cubriendo contratos, prestaciones sociales y obligaciones del empleador cuando aplique.`,

	models.CategoryTributario: `CONSULTA: %[1]s

LEGISLACIÓN:
%[2]s

Tienes experiencia especializada en derecho tributario y obligaciones fiscales en Colombia. Responde de forma práctica, mencionando a la DIAN, los regímenes y los plazos cuando aplique.`,

	models.CategoryContractual: `CONSULTA: %[1]s

LEGISLACIÓN:
%[2]s

Tienes experiencia especializada en contratos comerciales y análisis de cláusulas. Responde de forma práctica, señalando cláusulas clave y riesgos habituales.`,

	models.CategoryGeneral: `CONSULTA: %[1]s

LEGISLACIÓN:
%[2]s

Responde de forma práctica y específica para PyMEs colombianas.`,
}

// buildPrompt selects the template for the category (unknown categories get
// the General template) and fills in the question and context.
func buildPrompt(category models.Category, question string, actx models.AssembledContext) string {
	template, ok := promptTemplates[category]
	if !ok {
		template = promptTemplates[models.CategoryGeneral]
	}
	contextText := actx.Text
	if actx.Empty() {
		contextText = emptyContextPlaceholder
	}
	return fmt.Sprintf(template, question, contextText)
}
