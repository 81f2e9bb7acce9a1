package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/legalgpt/engine/models"
)

func TestNormalizer_RejectsEmptyQuestion(t *testing.T) {
	n := NewNormalizer(1000)

	_, err := n.Normalize(models.Query{Text: "   \n\t "})

	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestNormalizer_RejectsOverLengthQuestion(t *testing.T) {
	n := NewNormalizer(10)

	_, err := n.Normalize(models.Query{Text: "esta pregunta supera el límite configurado"})

	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestNormalizer_ClassifiesCategories(t *testing.T) {
	cases := []struct {
		question string
		want     models.Category
	}{
		{"¿Cómo registro mi empresa como SAS?", models.CategoryConstitucion},
		{"¿Cómo constituyo una sociedad en Colombia?", models.CategoryConstitucion},
		{"¿Cómo hago un contrato de trabajo para mi primer empleado?", models.CategoryLaboral},
		{"¿Cómo calculo la liquidación de un trabajador?", models.CategoryLaboral},
		{"¿Cuándo debo presentar la declaración de renta?", models.CategoryTributario},
		{"¿Cómo funciona el IVA para mi negocio?", models.CategoryTributario},
		{"¿Qué cláusulas debe tener un contrato de servicios?", models.CategoryContractual},
		{"¿Qué clima hace hoy en Bogotá?", models.CategoryGeneral},
	}

	n := NewNormalizer(1000)
	for _, tc := range cases {
		nq, err := n.Normalize(models.Query{Text: tc.question})
		if err != nil {
			t.Fatalf("normalize %q failed: %v", tc.question, err)
		}
		if nq.Category != tc.want {
			t.Errorf("question %q: got category %s, want %s", tc.question, nq.Category, tc.want)
		}
	}
}

func TestNormalizer_PreprocessExpandsAbbreviations(t *testing.T) {
	n := NewNormalizer(1000)

	nq, err := n.Normalize(models.Query{Text: "¿Cómo registro mi empresa como SAS?"})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if !strings.Contains(nq.Text, "sociedad por acciones simplificada") {
		t.Errorf("expected SAS expansion in %q", nq.Text)
	}
	if !strings.Contains(nq.Text, "colombia") {
		t.Errorf("expected jurisdiction keywords in %q", nq.Text)
	}
}

func TestNormalizer_KeepsOriginalQuestion(t *testing.T) {
	n := NewNormalizer(1000)

	nq, err := n.Normalize(models.Query{Text: "  ¿Qué impuestos debo pagar?  "})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if nq.Original != "¿Qué impuestos debo pagar?" {
		t.Errorf("unexpected original: %q", nq.Original)
	}
}

func TestNormalizer_AppendsContextHint(t *testing.T) {
	n := NewNormalizer(1000)

	nq, err := n.Normalize(models.Query{
		Text:        "¿Qué impuestos debo pagar?",
		ContextHint: "Somos una microempresa de software",
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if !strings.Contains(nq.Text, "microempresa de software") {
		t.Errorf("expected context hint in %q", nq.Text)
	}
}
