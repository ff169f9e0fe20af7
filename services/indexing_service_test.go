package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeChunkCollection struct {
	chunks []StoredChunk
}

func (c *fakeChunkCollection) AddChunk(ctx context.Context, chunk StoredChunk) error {
	c.chunks = append(c.chunks, chunk)
	return nil
}

func (c *fakeChunkCollection) Count(ctx context.Context) (int, error) {
	return len(c.chunks), nil
}

func (c *fakeChunkCollection) DeleteBySource(ctx context.Context, source string) error {
	kept := c.chunks[:0]
	for _, chunk := range c.chunks {
		if chunk.Source != source {
			kept = append(kept, chunk)
		}
	}
	c.chunks = kept
	return nil
}

func (c *fakeChunkCollection) bySource(source string) []StoredChunk {
	var out []StoredChunk
	for _, chunk := range c.chunks {
		if chunk.Source == source {
			out = append(out, chunk)
		}
	}
	return out
}

type fakeChunkStore struct {
	collections map[string]*fakeChunkCollection
}

func (s *fakeChunkStore) Collection(ctx context.Context, name string) (ChunkCollection, error) {
	if s.collections == nil {
		s.collections = make(map[string]*fakeChunkCollection)
	}
	collection, ok := s.collections[name]
	if !ok {
		collection = &fakeChunkCollection{}
		s.collections[name] = collection
	}
	return collection, nil
}

func (s *fakeChunkStore) DeleteCollection(ctx context.Context, name string) error {
	delete(s.collections, name)
	return nil
}

func newTestIndexingService(t *testing.T, store ChunkStore, feeds FeedService) *IndexingService {
	t.Helper()
	return NewIndexingService(
		store,
		"tvku_docs",
		&fakeEmbedder{},
		feeds,
		newTestKnowledgeService(t),
		"",
		IndexingOptions{ChunkSize: 800, ChunkOverlap: 150, MaxAttempts: 1},
	)
}

// Re-running the rebuild against an unchanged source set must leave the
// collection count unchanged: the collection is dropped and recreated, not
// appended to.
func TestRebuildIsIdempotent(t *testing.T) {
	store := &fakeChunkStore{}
	feeds := &fakeFeeds{berita: "### [Berita Terkini TVKU]\n1. **Wisuda Udinus**"}
	svc := newTestIndexingService(t, store, feeds)

	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	first, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if first == 0 {
		t.Fatal("rebuild stored no chunks")
	}

	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}
	second, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if second != first {
		t.Errorf("count after second rebuild = %d, want %d", second, first)
	}
}

func TestRebuildStoresChunkMetadata(t *testing.T) {
	store := &fakeChunkStore{}
	feeds := &fakeFeeds{berita: "### [Berita Terkini TVKU]\n1. **Wisuda Udinus**"}
	svc := newTestIndexingService(t, store, feeds)

	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	collection := store.collections["tvku_docs"]
	if collection == nil {
		t.Fatal("collection was not created")
	}

	jsonChunks := collection.bySource("tentangTVKU.json")
	if len(jsonChunks) == 0 {
		t.Fatal("knowledge file chunks missing")
	}
	for _, chunk := range jsonChunks {
		if chunk.Type != "json" || chunk.Priority != 0.6 {
			t.Errorf("json chunk metadata = %q/%v, want json/0.6", chunk.Type, chunk.Priority)
		}
	}

	newsChunks := collection.bySource("dynamic_news")
	if len(newsChunks) == 0 {
		t.Fatal("news snapshot chunks missing")
	}
	if newsChunks[0].Type != "dynamic_news" || newsChunks[0].Priority != 0.9 {
		t.Errorf("news chunk metadata = %q/%v, want dynamic_news/0.9", newsChunks[0].Type, newsChunks[0].Priority)
	}
	if !strings.HasPrefix(newsChunks[0].Text, "BERITA TVKU:") {
		t.Errorf("news snapshot prefix missing: %q", newsChunks[0].Text)
	}

	seen := make(map[string]struct{})
	for _, chunk := range collection.chunks {
		if chunk.ID == "" {
			t.Error("chunk stored without an ID")
		}
		if _, dup := seen[chunk.ID]; dup {
			t.Errorf("duplicate chunk ID %q", chunk.ID)
		}
		seen[chunk.ID] = struct{}{}
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %q stored without an embedding", chunk.ID)
		}
	}
}

func TestRebuildFailsWithNoSources(t *testing.T) {
	svc := NewIndexingService(
		&fakeChunkStore{},
		"tvku_docs",
		&fakeEmbedder{},
		&fakeFeeds{},
		nil,
		"",
		IndexingOptions{ChunkSize: 800, ChunkOverlap: 150, MaxAttempts: 1},
	)

	if err := svc.Rebuild(context.Background()); err == nil {
		t.Fatal("rebuild with no loadable sources did not error")
	}
}

func TestIndexFileReplacesPreviousChunks(t *testing.T) {
	store := &fakeChunkStore{}
	svc := newTestIndexingService(t, store, &fakeFeeds{})

	path := filepath.Join(t.TempDir(), "profil.txt")
	if err := os.WriteFile(path, []byte("TVKU adalah televisi kampus."), 0644); err != nil {
		t.Fatal(err)
	}

	if err := svc.IndexFile(context.Background(), path); err != nil {
		t.Fatalf("first IndexFile: %v", err)
	}
	if err := svc.IndexFile(context.Background(), path); err != nil {
		t.Fatalf("second IndexFile: %v", err)
	}

	collection := store.collections["tvku_docs"]
	got := collection.bySource("profil.txt")
	if len(got) != 1 {
		t.Fatalf("re-indexing the same file left %d chunks, want 1", len(got))
	}
	if got[0].Priority != 1.0 {
		t.Errorf("uploaded file priority = %v, want 1.0", got[0].Priority)
	}

	if err := svc.RemoveFile(context.Background(), path); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if remaining := collection.bySource("profil.txt"); len(remaining) != 0 {
		t.Errorf("RemoveFile left %d chunks", len(remaining))
	}
}

func TestSplitTextShortInput(t *testing.T) {
	text := "TVKU adalah televisi kampus."

	chunks, err := SplitText(text, 800, 150)
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("short input was split: %v", chunks)
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("Kalimat tentang program acara TVKU yang tayang setiap hari. ")
	}

	chunks, err := SplitText(sb.String(), 200, 40)
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("long input produced %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 200 {
			t.Errorf("chunk %d has %d characters, exceeds the chunk size", i, len(chunk))
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestExtractTextFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("isi catatan"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractTextFromFile(path)
	if err != nil {
		t.Fatalf("ExtractTextFromFile: %v", err)
	}
	if got != "isi catatan" {
		t.Errorf("content = %q", got)
	}

	if _, err := ExtractTextFromFile(filepath.Join(dir, "image.png")); err == nil {
		t.Error("unsupported extension was accepted")
	}
}
