package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"github.com/legalgpt/engine/models"
)

// CompletionProvider generates text from a prompt. The synthesizer depends on
// this abstraction so the Gemini client can be mocked in tests.
type CompletionProvider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// GeminiProvider is the production CompletionProvider backed by the Google
// Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider wraps a genai client for the given model.
func NewGeminiProvider(client *genai.Client, model string) *GeminiProvider {
	return &GeminiProvider{client: client, model: model}
}

// Complete implements CompletionProvider.
func (g *GeminiProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{}
	if contents := genai.Text(system); len(contents) > 0 {
		config.SystemInstruction = contents[0]
	}
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// Synthesizer turns the normalized query and the assembled context into an
// answer with a deterministic confidence estimate. The model call is retried
// a bounded number of times; the confidence and capping logic never depend on
// model output.
type Synthesizer struct {
	llm CompletionProvider

	retries           int
	backoff           time.Duration
	timeout           time.Duration
	ungroundedCeiling float64
}

// NewSynthesizer wires the synthesis stage.
func NewSynthesizer(llm CompletionProvider, retries int, backoff, timeout time.Duration, ungroundedCeiling float64) *Synthesizer {
	return &Synthesizer{
		llm:               llm,
		retries:           retries,
		backoff:           backoff,
		timeout:           timeout,
		ungroundedCeiling: ungroundedCeiling,
	}
}

// Synthesize invokes the language model with the category's prompt template
// and computes the answer confidence. When the context is empty the answer
// carries the no-sources caveat and the confidence is capped at the
// ungrounded ceiling no matter what.
func (s *Synthesizer) Synthesize(ctx context.Context, nq models.NormalizedQuery, actx models.AssembledContext) (string, float64, error) {
	prompt := buildPrompt(nq.Category, nq.Original, actx)

	answer, err := s.completeWithRetry(ctx, prompt)
	if err != nil {
		return "", 0, &models.SynthesisError{Err: err}
	}

	confidence := s.confidence(nq.Category, actx)
	if actx.Empty() {
		answer = answer + "\n\n" + noSourcesCaveat
	}
	return answer, confidence, nil
}

func (s *Synthesizer) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			log.Printf("SYNTHESIZER: retrying completion after error: %v", lastErr)
			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		answer, err := s.llm.Complete(callCtx, systemInstruction, prompt)
		cancel()
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

// confidence is a pure function of the grounding: mean source relevance, how
// many sources made it into the context, and the category multiplier. Empty
// context caps the result at the ungrounded ceiling.
func (s *Synthesizer) confidence(category models.Category, actx models.AssembledContext) float64 {
	multiplier := categoryMultiplierFor(category)

	if actx.Empty() {
		score := 0.35 * multiplier
		if score > s.ungroundedCeiling {
			score = s.ungroundedCeiling
		}
		return score
	}

	var total float64
	for _, source := range actx.Sources {
		total += source.Relevance
	}
	mean := total / float64(len(actx.Sources))

	sourceBonus := float64(len(actx.Sources))
	if sourceBonus > 3 {
		sourceBonus = 3
	}

	score := (0.35 + 0.45*mean + 0.05*sourceBonus) * multiplier
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
