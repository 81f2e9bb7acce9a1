package models

import "fmt"

// ValidationError reports bad client input (empty or over-length question).
// It is the client's fault and is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

// RetrievalUnavailable reports that the vector index (or the embedding
// provider it depends on) could not be reached after local retries. The caller
// may retry the whole query at its discretion.
type RetrievalUnavailable struct {
	Err error
}

func (e *RetrievalUnavailable) Error() string {
	return fmt.Sprintf("vector index unavailable: %v", e.Err)
}

func (e *RetrievalUnavailable) Unwrap() error { return e.Err }

// SynthesisError reports a language-model provider failure that persisted
// through the bounded retry budget.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("answer synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
