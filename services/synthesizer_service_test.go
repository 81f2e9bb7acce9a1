package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/legalgpt/engine/models"
)

// mockCompletion implements CompletionProvider for testing.
type mockCompletion struct {
	response string
	failures int // fail this many calls before succeeding
	calls    int
}

func (m *mockCompletion) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.calls++
	if m.calls <= m.failures {
		return "", errors.New("rate limited")
	}
	if m.response != "" {
		return m.response, nil
	}
	return "respuesta simulada", nil
}

func newTestSynthesizer(llm CompletionProvider) *Synthesizer {
	return NewSynthesizer(llm, 1, time.Millisecond, time.Second, 0.5)
}

func groundedContext() models.AssembledContext {
	return models.AssembledContext{
		Text: "Fuente: Código de Comercio\nartículo de prueba",
		Sources: []models.RetrievalResult{
			{ChunkID: "a", SourceTitle: "Código de Comercio", Relevance: 0.8},
		},
	}
}

func TestSynthesizer_GroundedAnswer(t *testing.T) {
	s := newTestSynthesizer(&mockCompletion{response: "Debes registrarte en la Cámara de Comercio."})
	nq := models.NormalizedQuery{Original: "¿Cómo constituyo mi empresa?", Category: models.CategoryConstitucion}

	answer, confidence, err := s.Synthesize(context.Background(), nq, groundedContext())
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if confidence <= 0.5 {
		t.Errorf("grounded answer should exceed the ungrounded ceiling, got %f", confidence)
	}
	if strings.Contains(answer, "no encontré fuentes") {
		t.Error("grounded answer must not carry the no-sources caveat")
	}
}

func TestSynthesizer_EmptyContextCapsConfidenceAndAddsCaveat(t *testing.T) {
	s := newTestSynthesizer(&mockCompletion{})
	nq := models.NormalizedQuery{Original: "¿Cómo constituyo mi empresa?", Category: models.CategoryConstitucion}

	answer, confidence, err := s.Synthesize(context.Background(), nq, models.AssembledContext{})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if confidence > 0.5 {
		t.Errorf("ungrounded confidence must be capped at 0.5, got %f", confidence)
	}
	if !strings.Contains(answer, "no encontré fuentes") {
		t.Errorf("expected the no-sources caveat in %q", answer)
	}
}

func TestSynthesizer_RetriesOnceThenSucceeds(t *testing.T) {
	llm := &mockCompletion{failures: 1, response: "ok"}
	s := newTestSynthesizer(llm)
	nq := models.NormalizedQuery{Original: "pregunta", Category: models.CategoryGeneral}

	_, _, err := s.Synthesize(context.Background(), nq, groundedContext())
	if err != nil {
		t.Fatalf("one transient failure should be retried: %v", err)
	}
	if llm.calls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", llm.calls)
	}
}

func TestSynthesizer_ExhaustedRetriesSurfaceSynthesisError(t *testing.T) {
	llm := &mockCompletion{failures: 10}
	s := newTestSynthesizer(llm)
	nq := models.NormalizedQuery{Original: "pregunta", Category: models.CategoryGeneral}

	_, _, err := s.Synthesize(context.Background(), nq, groundedContext())

	var synthesis *models.SynthesisError
	if !errors.As(err, &synthesis) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if llm.calls != 2 {
		t.Errorf("retry budget is 1, expected 2 attempts, got %d", llm.calls)
	}
}

func TestSynthesizer_ConfidenceIsDeterministic(t *testing.T) {
	s := newTestSynthesizer(&mockCompletion{})
	actx := groundedContext()

	first := s.confidence(models.CategoryLaboral, actx)
	second := s.confidence(models.CategoryLaboral, actx)
	if first != second {
		t.Errorf("confidence must be deterministic: %f vs %f", first, second)
	}
	if first < 0 || first > 1 {
		t.Errorf("confidence out of range: %f", first)
	}
}

func TestBuildPrompt_UnknownCategoryUsesGeneralTemplate(t *testing.T) {
	prompt := buildPrompt(models.Category("inmobiliario"), "¿pregunta?", models.AssembledContext{})

	if prompt != buildPrompt(models.CategoryGeneral, "¿pregunta?", models.AssembledContext{}) {
		t.Error("unknown category must fall back to the General template")
	}
	if !strings.Contains(prompt, "¿pregunta?") {
		t.Error("prompt must contain the question")
	}
	if !strings.Contains(prompt, emptyContextPlaceholder) {
		t.Error("empty context must be replaced by the placeholder")
	}
}
