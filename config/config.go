package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the query engine. All values come from the
// environment with sensible defaults, so a bare `go run .` works against a
// local Ollama + Chroma setup.
type Config struct {
	Port           string
	CollectionName string
	CorpusDir      string

	OllamaURL      string
	EmbeddingModel string
	GeminiModel    string

	MaxQuestionLen    int
	ContextBudget     int
	RelevanceFloor    float64
	UngroundedCeiling float64
	SuggestionLimit   int

	ChunkSize    int
	ChunkOverlap int

	CompletionRetries int
	EmbedRetries      int
	RetryBackoff      time.Duration

	EmbedTimeout    time.Duration
	SearchTimeout   time.Duration
	CompleteTimeout time.Duration
}

// Load reads the environment (and a .env file when present) into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	return &Config{
		Port:           getString("PORT", "8080"),
		CollectionName: getString("COLLECTION_NAME", "legal-corpus"),
		CorpusDir:      getString("CORPUS_DIR", ""),

		OllamaURL:      getString("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel: getString("EMBEDDING_MODEL", "nomic-embed-text:v1.5"),
		GeminiModel:    getString("GEMINI_MODEL", "gemini-2.5-flash"),

		MaxQuestionLen:    getInt("MAX_QUESTION_LEN", 1000),
		ContextBudget:     getInt("CONTEXT_BUDGET", 2000),
		RelevanceFloor:    getFloat("RELEVANCE_FLOOR", 0.15),
		UngroundedCeiling: getFloat("UNGROUNDED_CEILING", 0.5),
		SuggestionLimit:   getInt("SUGGESTION_LIMIT", 3),

		ChunkSize:    getInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getInt("CHUNK_OVERLAP", 100),

		CompletionRetries: getInt("COMPLETION_RETRIES", 1),
		EmbedRetries:      getInt("EMBED_RETRIES", 1),
		RetryBackoff:      getDuration("RETRY_BACKOFF", 500*time.Millisecond),

		EmbedTimeout:    getDuration("EMBED_TIMEOUT", 15*time.Second),
		SearchTimeout:   getDuration("SEARCH_TIMEOUT", 10*time.Second),
		CompleteTimeout: getDuration("COMPLETE_TIMEOUT", 60*time.Second),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("CONFIG WARN: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("CONFIG WARN: %s=%q is not a number, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("CONFIG WARN: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}
