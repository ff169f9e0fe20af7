package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// KnowledgeDocument is one source document headed for the vector store.
type KnowledgeDocument struct {
	Content  string
	Type     string // pdf, json, dynamic_news, dynamic_programs, dynamic_schedule
	Source   string
	Priority float64
}

// StoredChunk is one embedded chunk of a document as written to the
// collection, metadata flattened.
type StoredChunk struct {
	ID        string
	Text      string
	Embedding []float32
	Type      string
	Source    string
	ChunkNum  int
	Priority  float64
}

// ChunkCollection is the slice of a vector collection the ingestion pipeline
// writes to.
type ChunkCollection interface {
	AddChunk(ctx context.Context, chunk StoredChunk) error
	Count(ctx context.Context) (int, error)
	DeleteBySource(ctx context.Context, source string) error
}

// ChunkStore resolves named collections and drops them wholesale on rebuild.
type ChunkStore interface {
	Collection(ctx context.Context, name string) (ChunkCollection, error)
	DeleteCollection(ctx context.Context, name string) error
}

// IndexingOptions controls chunking and retry behavior.
type IndexingOptions struct {
	ChunkSize    int
	ChunkOverlap int
	// MaxAttempts bounds retries of embed/store operations; backoff between
	// attempts roughly doubles.
	MaxAttempts int
}

// IndexingService rebuilds and incrementally updates the vector collection
// from the knowledge sources: the company-profile PDF, the static JSON file,
// and snapshots of the live feeds. A rebuild deletes and recreates the
// collection wholesale; running it against an unchanged source set leaves
// the document count unchanged.
type IndexingService struct {
	store          ChunkStore
	collectionName string
	embedder       Embedder
	feeds          FeedService
	knowledge      *KnowledgeService
	pdfPath        string
	opts           IndexingOptions
}

// NewIndexingService creates the ingestion pipeline.
func NewIndexingService(
	store ChunkStore,
	collectionName string,
	embedder Embedder,
	feeds FeedService,
	knowledge *KnowledgeService,
	pdfPath string,
	opts IndexingOptions,
) *IndexingService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	return &IndexingService{
		store:          store,
		collectionName: collectionName,
		embedder:       embedder,
		feeds:          feeds,
		knowledge:      knowledge,
		pdfPath:        pdfPath,
		opts:           opts,
	}
}

// GetOrCreateCollection resolves the named collection, creating it on first
// use.
func GetOrCreateCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	collection, err := client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "TVKU chatbot knowledge base"),
				chromago.NewStringAttribute("created_by", "indexing_service"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", name, err)
	}
	return collection, nil
}

// NewChromaChunkStore adapts a ChromaDB client to the ChunkStore interface.
func NewChromaChunkStore(client chromago.Client) ChunkStore {
	return &chromaChunkStore{client: client}
}

type chromaChunkStore struct {
	client chromago.Client
}

func (s *chromaChunkStore) Collection(ctx context.Context, name string) (ChunkCollection, error) {
	collection, err := GetOrCreateCollection(ctx, s.client, name)
	if err != nil {
		return nil, err
	}
	return &chromaChunkCollection{collection: collection}, nil
}

func (s *chromaChunkStore) DeleteCollection(ctx context.Context, name string) error {
	return s.client.DeleteCollection(ctx, name)
}

type chromaChunkCollection struct {
	collection chromago.Collection
}

func (c *chromaChunkCollection) AddChunk(ctx context.Context, chunk StoredChunk) error {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("type", chunk.Type),
		chromago.NewStringAttribute("source", chunk.Source),
		chromago.NewIntAttribute("chunk_num", int64(chunk.ChunkNum)),
		chromago.NewFloatAttribute("priority", chunk.Priority),
	)
	return c.collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(chunk.ID)),
		chromago.WithTexts(chunk.Text),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(chunk.Embedding)),
		chromago.WithMetadatas(metadata),
	)
}

func (c *chromaChunkCollection) Count(ctx context.Context) (int, error) {
	count, err := c.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

func (c *chromaChunkCollection) DeleteBySource(ctx context.Context, source string) error {
	where := chromago.EqString("source", source)
	return c.collection.Delete(ctx, chromago.WithWhereDelete(where))
}

// Rebuild runs the full ingestion: load every source document, split, embed,
// and store into a freshly recreated collection.
func (s *IndexingService) Rebuild(ctx context.Context) error {
	log.Println("INDEXER: Starting full rebuild...")

	docs := s.loadDocuments(ctx)
	if len(docs) == 0 {
		return fmt.Errorf("no source documents could be loaded")
	}
	log.Printf("INDEXER: Loaded %d source documents.", len(docs))

	// Delete-and-recreate keeps the rebuild idempotent; there is no
	// incremental update path.
	if err := s.store.DeleteCollection(ctx, s.collectionName); err != nil {
		log.Printf("INDEXER: No existing collection to delete: %v", err)
	}
	collection, err := s.store.Collection(ctx, s.collectionName)
	if err != nil {
		return err
	}

	total := 0
	for _, doc := range docs {
		n, err := s.embedDocument(ctx, collection, doc)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", doc.Source, err)
		}
		total += n
	}

	log.Printf("INDEXER: Rebuild finished, %d chunks stored.", total)
	return nil
}

// Count reports the number of chunks currently in the collection.
func (s *IndexingService) Count(ctx context.Context) (int, error) {
	collection, err := s.store.Collection(ctx, s.collectionName)
	if err != nil {
		return 0, err
	}
	return collection.Count(ctx)
}

// IndexFile extracts, splits, and stores a single file, replacing any chunks
// previously stored for the same filename.
func (s *IndexingService) IndexFile(ctx context.Context, path string) error {
	content, err := ExtractTextFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("no text extracted from %s", path)
	}

	collection, err := s.store.Collection(ctx, s.collectionName)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	if err := collection.DeleteBySource(ctx, name); err != nil {
		log.Printf("INDEXER: Could not delete old chunks for %s: %v", name, err)
	}

	_, err = s.embedDocument(ctx, collection, KnowledgeDocument{
		Content:  content,
		Type:     "pdf",
		Source:   name,
		Priority: 1.0,
	})
	return err
}

// RemoveFile deletes every chunk stored for the named file.
func (s *IndexingService) RemoveFile(ctx context.Context, filename string) error {
	collection, err := s.store.Collection(ctx, s.collectionName)
	if err != nil {
		return err
	}
	return collection.DeleteBySource(ctx, filepath.Base(filename))
}

// loadDocuments gathers every knowledge source. Feed snapshots are optional;
// a dead feed logs a warning and the rebuild continues with what loaded.
func (s *IndexingService) loadDocuments(ctx context.Context) []KnowledgeDocument {
	var docs []KnowledgeDocument

	if s.pdfPath != "" {
		if content, err := ExtractTextFromFile(s.pdfPath); err != nil {
			log.Printf("INDEXER WARN: Could not load PDF %s: %v", s.pdfPath, err)
		} else if strings.TrimSpace(content) != "" {
			docs = append(docs, KnowledgeDocument{
				Content:  content,
				Type:     "pdf",
				Source:   filepath.Base(s.pdfPath),
				Priority: 1.0,
			})
		}
	}

	if s.knowledge != nil {
		docs = append(docs, KnowledgeDocument{
			Content:  s.knowledge.FormatTentangTVKU(),
			Type:     "json",
			Source:   "tentangTVKU.json",
			Priority: 0.6,
		})
	}

	type feedSource struct {
		fetch    func(context.Context) (string, error)
		docType  string
		priority float64
		prefix   string
	}
	feedSources := []feedSource{
		{s.feeds.GetBerita, "dynamic_news", 0.9, "BERITA TVKU:"},
		{s.feeds.GetProgramAcara, "dynamic_programs", 0.8, "PROGRAM TVKU:"},
		{s.feeds.GetJadwalAcara, "dynamic_schedule", 0.8, "JADWAL TVKU:"},
	}
	for _, src := range feedSources {
		section, err := src.fetch(ctx)
		if err != nil {
			log.Printf("INDEXER WARN: Could not snapshot %s: %v", src.docType, err)
			continue
		}
		if strings.TrimSpace(section) == "" {
			continue
		}
		docs = append(docs, KnowledgeDocument{
			Content:  src.prefix + section,
			Type:     src.docType,
			Source:   src.docType,
			Priority: src.priority,
		})
	}

	return docs
}

// embedDocument splits one document and stores each chunk with its metadata.
// Embedding and storage are retried with backoff because the embedding
// service is the flakiest dependency of the offline path.
func (s *IndexingService) embedDocument(ctx context.Context, collection ChunkCollection, doc KnowledgeDocument) (int, error) {
	chunks, err := SplitText(doc.Content, s.opts.ChunkSize, s.opts.ChunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("failed to split %s: %w", doc.Source, err)
	}
	log.Printf("INDEXER: Split %s into %d chunks.", doc.Source, len(chunks))

	for i, chunk := range chunks {
		var vector []float32
		err := s.withRetry(ctx, fmt.Sprintf("embed chunk %d of %s", i, doc.Source), func() error {
			var embedErr error
			vector, embedErr = s.embedder.Embed(ctx, chunk)
			return embedErr
		})
		if err != nil {
			return 0, err
		}

		stored := StoredChunk{
			ID:        fmt.Sprintf("%s-chunk%d", uuid.New().String(), i),
			Text:      chunk,
			Embedding: vector,
			Type:      doc.Type,
			Source:    doc.Source,
			ChunkNum:  i,
			Priority:  doc.Priority,
		}
		err = s.withRetry(ctx, fmt.Sprintf("store chunk %d of %s", i, doc.Source), func() error {
			return collection.AddChunk(ctx, stored)
		})
		if err != nil {
			return 0, err
		}
	}
	return len(chunks), nil
}

// SplitText chunks text with the recursive character splitter using the
// same separator ladder as the original knowledge base.
func SplitText(text string, chunkSize, chunkOverlap int) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}),
	)
	return splitter.SplitText(text)
}

// withRetry runs fn up to MaxAttempts times with doubling backoff.
func (s *IndexingService) withRetry(ctx context.Context, what string, fn func() error) error {
	var lastErr error
	backoff := time.Second
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.Printf("INDEXER: %s attempt %d/%d failed: %v", what, attempt, s.opts.MaxAttempts, lastErr)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", what, s.opts.MaxAttempts, lastErr)
}

// WatchUploads watches the uploads directory and keeps the collection in
// sync: new or rewritten PDFs are indexed, removed ones are deleted. Blocks
// until the context is cancelled.
func (s *IndexingService) WatchUploads(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if strings.ToLower(filepath.Ext(event.Name)) != ".pdf" {
					continue
				}

				// Editors and browsers often write via temp file + rename,
				// so Create and Write are handled identically.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					if err := s.IndexFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to index %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.RemoveFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}
