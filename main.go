package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"

	"github.com/nindyaadesyana/chatbot/config"
	"github.com/nindyaadesyana/chatbot/controller"
	"github.com/nindyaadesyana/chatbot/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if err := services.SetupPDFLicense(cfg.UnidocLicenseKey); err != nil {
		log.Printf("Warning: %v. PDF extraction will fail until a license key is set.", err)
	}

	// Separate HTTP clients: the feed client is bounded by the API timeout,
	// the embedding client by a generation-sized budget.
	apiClient := &http.Client{Timeout: cfg.APITimeout}
	ollamaClient := &http.Client{Timeout: 30 * time.Second}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}

	// Ensure we close the client to release resources like local embedding functions
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	knowledge, err := services.NewKnowledgeService(cfg.KnowledgeJSONPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load knowledge file: %v", err)
	}

	uploadStore, err := services.NewUploadStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to prepare uploads directory: %v", err)
	}

	feeds := services.NewFeedService(apiClient, cfg.TVKUAPIBaseURL, cfg.APIRetries)
	embedder := services.NewOllamaEmbedder(ollamaClient, cfg.OllamaBaseURL, cfg.EmbeddingModel)

	generator, err := services.NewOllamaGenerator(cfg.OllamaBaseURL, cfg.ChatModel, cfg.GenerateTimeout)
	if err != nil {
		log.Fatalf("FATAL: Failed to create ollama client: %v", err)
	}

	retriever := services.NewChromaRetriever(embedder, chromaClient, cfg.ChromaCollection, services.RetrievalOptions{
		MaxResults:         cfg.MaxResults,
		RelevanceThreshold: cfg.RelevanceThreshold,
		TopDocuments:       cfg.TopDocuments,
	})

	chatService := services.NewChatService(
		services.NewClassifier(),
		feeds,
		knowledge,
		retriever,
		generator,
		services.NewPromptBuilder(nil),
		services.NewPostProcessor(services.PostProcessorOptions{OverlapThreshold: 0.3}),
	)

	indexer := services.NewIndexingService(
		services.NewChromaChunkStore(chromaClient),
		cfg.ChromaCollection,
		embedder,
		feeds,
		knowledge,
		cfg.PDFPath,
		services.IndexingOptions{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap},
	)

	// Keep the collection in sync with the uploads directory for the
	// lifetime of the process.
	watchCtx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	go indexer.WatchUploads(watchCtx, uploadStore.Dir)

	chatController := controller.NewChatController(chatService)
	uploadController := controller.NewUploadController(uploadStore, indexer)
	databaseController := controller.NewDatabaseController(uploadStore, indexer)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware for the web and TTS frontends
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

	// Add health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "TVKU Chatbot API",
			"version": "1.0.0",
		})
	})

	// API routes
	api := router.Group("/api")
	{
		api.POST("/chat", chatController.Chat)
		api.POST("/upload", uploadController.Upload)
		api.GET("/database", databaseController.ListFiles)
		api.DELETE("/database", databaseController.DeleteFile)
		api.POST("/database/reingest", databaseController.Reingest)
	}

	// Start the Server
	log.Printf("TVKU chatbot backend starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
