// Command ingest rebuilds the vector collection from scratch: the company
// profile PDF, the static knowledge JSON, and snapshots of the live TVKU
// feeds. Run it once before first serving traffic, and again whenever the
// source documents change.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"

	"github.com/nindyaadesyana/chatbot/config"
	"github.com/nindyaadesyana/chatbot/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if err := services.SetupPDFLicense(cfg.UnidocLicenseKey); err != nil {
		log.Printf("Warning: %v. The PDF source will be skipped.", err)
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	knowledge, err := services.NewKnowledgeService(cfg.KnowledgeJSONPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load knowledge file: %v", err)
	}

	feeds := services.NewFeedService(&http.Client{Timeout: cfg.APITimeout}, cfg.TVKUAPIBaseURL, cfg.APIRetries)
	embedder := services.NewOllamaEmbedder(&http.Client{Timeout: 30 * time.Second}, cfg.OllamaBaseURL, cfg.EmbeddingModel)

	indexer := services.NewIndexingService(
		services.NewChromaChunkStore(chromaClient),
		cfg.ChromaCollection,
		embedder,
		feeds,
		knowledge,
		cfg.PDFPath,
		services.IndexingOptions{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap},
	)

	// Embedding every chunk of a large PDF takes a while; give the rebuild a
	// generous but bounded window.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	if err := indexer.Rebuild(ctx); err != nil {
		log.Fatalf("FATAL: Ingestion failed: %v", err)
	}

	count, err := indexer.Count(ctx)
	if err != nil {
		log.Printf("INDEXER: Rebuild done in %s, but counting documents failed: %v", time.Since(start).Round(time.Second), err)
		return
	}
	log.Printf("INDEXER: Rebuild done in %s, collection %q now holds %d chunks.",
		time.Since(start).Round(time.Second), cfg.ChromaCollection, count)
}
