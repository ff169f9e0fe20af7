package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the chatbot service. Every knob the
// retrieval heuristics depend on (top-k, relevance threshold, chunking) is
// configurable here rather than hard-coded next to the code that uses it.
type Config struct {
	Port string

	// Ollama runtime.
	OllamaBaseURL   string
	ChatModel       string
	EmbeddingModel  string
	GenerateTimeout time.Duration

	// ChromaDB.
	ChromaURL        string
	ChromaCollection string

	// TVKU REST APIs.
	TVKUAPIBaseURL string
	APITimeout     time.Duration
	APIRetries     int

	// Retrieval tuning.
	MaxResults         int
	RelevanceThreshold float64
	TopDocuments       int

	// Ingestion.
	ChunkSize    int
	ChunkOverlap int

	// Local files.
	KnowledgeJSONPath string
	UploadsDir        string
	PDFPath           string

	UnidocLicenseKey string
}

// Load reads configuration from the environment, applying defaults for every
// optional field. A .env file in the working directory is loaded first;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "3001"),
		OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://127.0.0.1:11434"),
		ChatModel:          getEnv("OLLAMA_CHAT_MODEL", "llama3"),
		EmbeddingModel:     getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		ChromaURL:          getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaCollection:   getEnv("CHROMA_COLLECTION", "tvku_docs"),
		TVKUAPIBaseURL:     getEnv("TVKU_API_BASE_URL", "https://apidev.tvku.tv/api"),
		KnowledgeJSONPath:  getEnv("KNOWLEDGE_JSON_PATH", "data/tentangTVKU.json"),
		UploadsDir:         getEnv("UPLOADS_DIR", "data/uploads"),
		PDFPath:            getEnv("COMPANY_PROFILE_PDF", "data/uploads/Company_Profile_TVKU_2025_web.pdf"),
		UnidocLicenseKey:   os.Getenv("UNIDOC_LICENSE_KEY"),
	}

	var err error
	if cfg.GenerateTimeout, err = getDuration("GENERATE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.APIRetries, err = getInt("API_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = getInt("RETRIEVAL_MAX_RESULTS", 8); err != nil {
		return nil, err
	}
	if cfg.TopDocuments, err = getInt("RETRIEVAL_TOP_DOCUMENTS", 4); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = getInt("CHUNK_SIZE", 800); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getInt("CHUNK_OVERLAP", 150); err != nil {
		return nil, err
	}
	if cfg.RelevanceThreshold, err = getFloat("RETRIEVAL_THRESHOLD", 0.7); err != nil {
		return nil, err
	}

	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("RETRIEVAL_MAX_RESULTS must be greater than 0")
	}
	if cfg.TopDocuments <= 0 {
		return nil, fmt.Errorf("RETRIEVAL_TOP_DOCUMENTS must be greater than 0")
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}
