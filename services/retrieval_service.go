package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/nindyaadesyana/chatbot/models"
)

// Retriever finds grounding chunks for a question in the vector collection.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.ContextChunk, error)
}

// RetrievalOptions are the tunable knobs of the retrieval pass.
type RetrievalOptions struct {
	// MaxResults is the top-k requested from the vector store per pass.
	MaxResults int
	// RelevanceThreshold drops candidates whose distance exceeds it
	// (lower distance = more similar).
	RelevanceThreshold float64
	// TopDocuments is the number of chunks kept after reranking.
	TopDocuments int
}

// documentPriorities weights candidates by where their text came from.
// PDF content outranks feed snapshots, which outrank the static JSON.
var documentPriorities = map[string]float64{
	"pdf":              1.0,
	"pdf_ocr":          1.0,
	"dynamic_news":     0.9,
	"dynamic_programs": 0.8,
	"dynamic_schedule": 0.8,
	"json":             0.6,
}

const defaultPriority = 0.7

// querySynonyms drives the expansion pass: a second retrieval runs with
// these substitutions applied to improve recall on vocabulary mismatches.
var querySynonyms = map[string]string{
	"acara":   "program",
	"program": "acara",
	"harga":   "tarif",
	"tarif":   "harga",
	"tvku":    "televisi kampus udinus semarang",
	"kapan":   "jadwal",
}

type chromaRetriever struct {
	embedder   Embedder
	client     chromago.Client
	collection string
	opts       RetrievalOptions
}

// NewChromaRetriever builds a retriever over a ChromaDB collection using the
// given embedder for query vectors. The collection handle is resolved per
// query so a rebuild by the ingestion pipeline does not leave the serving
// path holding a stale reference.
func NewChromaRetriever(embedder Embedder, client chromago.Client, collection string, opts RetrievalOptions) Retriever {
	return &chromaRetriever{embedder: embedder, client: client, collection: collection, opts: opts}
}

// Retrieve runs the primary query and, when synonym substitution changes the
// question, a concurrent expanded query. Results are merged, deduplicated by
// content, filtered by the relevance threshold, reranked by a composite
// score, and trimmed to the configured top-N.
func (r *chromaRetriever) Retrieve(ctx context.Context, question string) ([]models.ContextChunk, error) {
	queries := []string{question}
	if expanded := expandQuery(question); expanded != question {
		queries = append(queries, expanded)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		merged  []models.ContextChunk
		lastErr error
	)
	for _, q := range queries {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			chunks, err := r.queryOnce(ctx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return
			}
			merged = append(merged, chunks...)
		}(q)
	}
	wg.Wait()

	if len(merged) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, nil
	}

	result := rankChunks(question, merged, r.opts.RelevanceThreshold, r.opts.TopDocuments)
	log.Printf("SERVICE: retrieval kept %d of %d candidates for %q", len(result), len(merged), question)
	return result, nil
}

// queryOnce embeds one query string and runs a single similarity search.
func (r *chromaRetriever) queryOnce(ctx context.Context, query string) ([]models.ContextChunk, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	embedding := embeddings.NewEmbeddingFromFloat32(vector)

	collection, err := GetOrCreateCollection(ctx, r.client, r.collection)
	if err != nil {
		return nil, err
	}

	results, err := collection.Query(ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(r.opts.MaxResults),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return nil, nil
	}

	chunks := make([]models.ContextChunk, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		content := doc.ContentString()
		if content == "" {
			continue
		}

		source := ""
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) && metadataGroups[0][i] != nil {
			source = metadataType(metadataGroups[0][i])
		}

		distance := 0.0
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			distance = float64(distanceGroups[0][i])
		}

		chunks = append(chunks, models.ContextChunk{
			Content:        content,
			Source:         source,
			RelevanceScore: distance,
		})
	}
	return chunks, nil
}

// metadataType extracts the "type" attribute from document metadata. The
// DocumentMetadata type exposes no map accessor, so it goes through a JSON
// round trip.
func metadataType(metadata chromago.DocumentMetadata) string {
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		return ""
	}
	if v, ok := metaMap["type"].(string); ok {
		return v
	}
	return ""
}

// expandQuery substitutes known synonyms word by word. Returns the input
// unchanged when nothing matched.
func expandQuery(question string) string {
	words := strings.Fields(strings.ToLower(question))
	changed := false
	for i, w := range words {
		if synonym, ok := querySynonyms[w]; ok {
			words[i] = synonym
			changed = true
		}
	}
	if !changed {
		return question
	}
	return strings.Join(words, " ")
}

// rankChunks deduplicates by exact content, drops candidates past the
// distance threshold, scores the remainder, and keeps the top-N. The score
// blends vector similarity, source-priority weight, and keyword overlap
// with the question; RelevanceScore on the returned chunks is the composite.
func rankChunks(question string, candidates []models.ContextChunk, threshold float64, topN int) []models.ContextChunk {
	questionTokens := tokenize(question)
	tokenSet := make(map[string]struct{}, len(questionTokens))
	for _, t := range questionTokens {
		tokenSet[t] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	kept := make([]models.ContextChunk, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Content]; dup {
			continue
		}
		seen[c.Content] = struct{}{}

		if c.RelevanceScore > threshold {
			continue
		}

		similarity := 1 - c.RelevanceScore
		if similarity < 0 {
			similarity = 0
		}

		priority := defaultPriority
		if p, ok := documentPriorities[c.Source]; ok {
			priority = p
		}

		overlap := keywordOverlap(tokenSet, c.Content)
		c.RelevanceScore = similarity * priority * (1 + overlap)
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	if topN > 0 && len(kept) > topN {
		kept = kept[:topN]
	}
	return kept
}

// keywordOverlap is the fraction of question tokens present in the content.
func keywordOverlap(questionTokens map[string]struct{}, content string) float64 {
	if len(questionTokens) == 0 {
		return 0
	}
	contentTokens := tokenize(content)
	contentSet := make(map[string]struct{}, len(contentTokens))
	for _, t := range contentTokens {
		contentSet[t] = struct{}{}
	}
	matches := 0
	for t := range questionTokens {
		if _, ok := contentSet[t]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(questionTokens))
}
