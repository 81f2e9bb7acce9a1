package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/legalgpt/engine/config"
	"github.com/legalgpt/engine/controller"
	"github.com/legalgpt/engine/services"
)

func main() {
	cfg := config.Load()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Chroma holds the legal corpus and the uploaded user documents.
	chromaClient, err := chromago.NewHTTPClient()
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.CollectionName)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	// Pipeline stages.
	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbedRetries, cfg.EmbedTimeout)
	index := services.NewChromaIndex(collection)
	normalizer := services.NewNormalizer(cfg.MaxQuestionLen)
	retriever := services.NewRetriever(embedder, index, cfg.RelevanceFloor, cfg.SearchTimeout)
	assembler := services.NewContextAssembler(cfg.ContextBudget)
	synthesizer := services.NewSynthesizer(
		services.NewGeminiProvider(geminiClient, cfg.GeminiModel),
		cfg.CompletionRetries, cfg.RetryBackoff, cfg.CompleteTimeout, cfg.UngroundedCeiling,
	)
	suggestions := services.NewSuggestionGenerator(cfg.SuggestionLimit)

	engine := services.NewLegalQueryEngine(normalizer, retriever, assembler, synthesizer, suggestions, index)
	ingestor := services.NewDocumentIngestor(collection, embedder, cfg.ChunkSize, cfg.ChunkOverlap)
	engineController := controller.NewEngineController(engine, ingestor)

	// Keep the global corpus in sync with the corpus directory, when one is
	// configured.
	if cfg.CorpusDir != "" {
		indexCtx := context.Background()
		go ingestor.ScanAndIndexDirectory(indexCtx, cfg.CorpusDir)
		go ingestor.WatchDirectory(indexCtx, cfg.CorpusDir)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Legal Query Engine",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", engineController.Query)              // Ask a legal question
		apiV1.GET("/suggestions", engineController.Suggestions)   // Follow-up question banks
		apiV1.GET("/status", engineController.Status)             // Component status
		apiV1.POST("/documents", engineController.IngestDocument) // Index a user document
	}

	log.Printf("Legal query engine starting on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// getOrCreateCollection ensures the corpus collection exists.
func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)
	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Legal corpus and user documents"),
				chromago.NewStringAttribute("created_by", "legal_query_engine"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
