package models

// QueryResponse is the JSON body returned by POST /api/v1/query.
type QueryResponse struct {
	Answer         string            `json:"answer"`
	Confidence     float64           `json:"confidence"`
	Category       string            `json:"category"`
	Sources        []RetrievalResult `json:"sources"`
	Suggestions    []string          `json:"suggestions"`
	ResponseTimeMs int64             `json:"response_time_ms"`
}

// SuggestionsResponse is the JSON body returned by GET /api/v1/suggestions.
type SuggestionsResponse struct {
	Category    string   `json:"category"`
	Suggestions []string `json:"suggestions"`
}

// IngestDocumentResponse is the JSON body returned by POST /api/v1/documents.
type IngestDocumentResponse struct {
	Message    string `json:"message"`
	ChunkCount int    `json:"chunk_count"`
}

// StatusResponse reports the health of the engine's components.
type StatusResponse struct {
	Status            string   `json:"status"`
	VectorstoreActive bool     `json:"vectorstore_active"`
	TotalChunks       int      `json:"total_chunks"`
	Categories        []string `json:"categories"`
}
