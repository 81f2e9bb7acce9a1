package models

// OwnerScopeGlobal marks chunks that belong to the shared legal corpus and are
// visible to every query. Any other owner scope value is a user ID and is only
// searchable when the query opts into uploaded documents.
const OwnerScopeGlobal = "global"

// Query is the immutable input to the pipeline, created per request.
type Query struct {
	Text            string
	ContextHint     string
	UseUploadedDocs bool
	UserScope       string
}

// NormalizedQuery is the Normalizer's output: the cleaned text sent to the
// retriever, the original question kept for prompting, and the assigned
// category.
type NormalizedQuery struct {
	Text     string
	Original string
	Category Category
}

// DocumentChunk is a unit of indexed text with its precomputed embedding.
// Chunks are written once at ingestion time and never mutated by the query
// path.
type DocumentChunk struct {
	ID          string
	SourceTitle string
	Text        string
	Embedding   []float32
	OwnerScope  string
}

// RetrievalResult is one ranked hit from the vector index, ephemeral per
// query. Relevance is normalized to [0,1].
type RetrievalResult struct {
	ChunkID     string  `json:"chunk_id"`
	SourceTitle string  `json:"source_title"`
	Relevance   float64 `json:"relevance"`
	Text        string  `json:"-"`
}

// AssembledContext is the bounded, deduplicated context window handed to the
// language model, together with the sources that actually made it in.
type AssembledContext struct {
	Text    string
	Sources []RetrievalResult
}

// Empty reports whether no grounding was found. This is a legitimate state,
// not an error: the synthesizer lowers its confidence ceiling and adds a
// caveat instead of failing.
func (a AssembledContext) Empty() bool {
	return len(a.Sources) == 0
}

// Answer is the terminal artifact of one pipeline run. It is returned to the
// caller and never persisted by the engine.
type Answer struct {
	Text        string
	Confidence  float64
	Category    Category
	Sources     []RetrievalResult
	Suggestions []string
}
