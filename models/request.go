package models

// QueryRequest is the JSON body of POST /api/v1/query.
type QueryRequest struct {
	Question        string `json:"question"`
	ContextHint     string `json:"context_hint,omitempty"`
	UseUploadedDocs bool   `json:"use_uploaded_docs"`
	UserScope       string `json:"user_scope,omitempty"`
}

// IngestDocumentRequest is the JSON body of POST /api/v1/documents. When
// UserScope is empty the document is indexed into the shared legal corpus.
type IngestDocumentRequest struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	UserScope string `json:"user_scope,omitempty"`
}
