package controller

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/legalgpt/engine/models"
	"github.com/legalgpt/engine/services"
)

// EngineController handles the HTTP surface of the query engine. It depends on
// the LegalQueryEngine interface for querying and on the DocumentIngestor for
// user document uploads.
type EngineController struct {
	engine   services.LegalQueryEngine
	ingestor *services.DocumentIngestor
}

// NewEngineController is the constructor called from main.go to inject the
// dependencies.
func NewEngineController(engine services.LegalQueryEngine, ingestor *services.DocumentIngestor) *EngineController {
	return &EngineController{
		engine:   engine,
		ingestor: ingestor,
	}
}

// Query is the Gin handler for POST /api/v1/query.
func (c *EngineController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.engine.Query(ctx.Request.Context(), req)
	if err != nil {
		status, message := errorResponse(err)
		ctx.JSON(status, gin.H{"error": message})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Suggestions is the Gin handler for GET /api/v1/suggestions. The optional
// "category" query parameter selects a bank; anything unknown gets the general
// one.
func (c *EngineController) Suggestions(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	ctx.JSON(http.StatusOK, c.engine.Suggestions(category))
}

// Status is the Gin handler for GET /api/v1/status.
func (c *EngineController) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, c.engine.Status(ctx.Request.Context()))
}

// IngestDocument is the Gin handler for POST /api/v1/documents. It indexes an
// already-extracted text document under the caller's scope (or the global
// corpus when no scope is given).
func (c *EngineController) IngestDocument(ctx *gin.Context) {
	var req models.IngestDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Text) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Both title and text are required"})
		return
	}

	chunkCount, err := c.ingestor.IngestText(ctx.Request.Context(), req.Title, req.Text, req.UserScope)
	if err != nil {
		log.Printf("CONTROLLER: document ingestion failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest document"})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestDocumentResponse{
		Message:    "Document ingested successfully",
		ChunkCount: chunkCount,
	})
}

// errorResponse maps the engine's typed errors onto HTTP statuses and
// client-safe messages. Provider error details stay in the logs.
func errorResponse(err error) (int, string) {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Error()
	}

	var unavailable *models.RetrievalUnavailable
	if errors.As(err, &unavailable) {
		log.Printf("CONTROLLER: retrieval unavailable: %v", err)
		return http.StatusServiceUnavailable, "The legal knowledge base is temporarily unavailable, please try again"
	}

	var synthesis *models.SynthesisError
	if errors.As(err, &synthesis) {
		log.Printf("CONTROLLER: synthesis failed: %v", err)
		return http.StatusBadGateway, "Failed to generate an answer, please try again"
	}

	log.Printf("CONTROLLER: unexpected error: %v", err)
	return http.StatusInternalServerError, "Internal server error"
}
