package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nindyaadesyana/chatbot/models"
)

// ChatService runs a user message through the full pipeline: classify,
// assemble context, compose the prompt, generate, post-process. Every
// request is stateless; failures along the way degrade to polite canned
// answers instead of surfacing errors to the chat user.
type ChatService interface {
	ProcessMessage(ctx context.Context, prompt string) (ProcessedResponse, error)
}

// Degraded answers for the paths where external data is unavailable.
const (
	NoNewsResponse     = "Maaf, belum ada berita terbaru yang tersedia saat ini. Silakan cek kembali nanti, atau tanyakan hal lain seputar TVKU ya."
	NoProgramResponse  = "Maaf, daftar program acara sedang tidak tersedia saat ini. Silakan coba lagi nanti, atau tanyakan hal lain seputar TVKU ya."
	NoScheduleResponse = "Maaf, jadwal acara sedang tidak tersedia saat ini. Silakan coba lagi nanti, atau tanyakan hal lain seputar TVKU ya."
	NoDocumentResponse = "Maaf, aku tidak menemukan informasi tersebut dalam dokumen yang tersedia. Aku bisa membantu seputar berita, program acara, jadwal tayang, dan ratecard TVKU."
)

type chatService struct {
	classifier    *Classifier
	feeds         FeedService
	knowledge     *KnowledgeService
	retriever     Retriever
	generator     Generator
	prompts       *PromptBuilder
	postProcessor *PostProcessor
}

// NewChatService wires the pipeline stages together.
func NewChatService(
	classifier *Classifier,
	feeds FeedService,
	knowledge *KnowledgeService,
	retriever Retriever,
	generator Generator,
	prompts *PromptBuilder,
	postProcessor *PostProcessor,
) ChatService {
	return &chatService{
		classifier:    classifier,
		feeds:         feeds,
		knowledge:     knowledge,
		retriever:     retriever,
		generator:     generator,
		prompts:       prompts,
		postProcessor: postProcessor,
	}
}

// ProcessMessage implements ChatService.
func (s *chatService) ProcessMessage(ctx context.Context, prompt string) (ProcessedResponse, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ProcessedResponse{}, fmt.Errorf("prompt is empty")
	}

	category := s.classifier.Classify(prompt)
	log.Printf("SERVICE: classified %q as %s", prompt, category)

	switch category {
	case CategoryGreeting:
		return ProcessedResponse{Display: GreetingResponse, Speech: GreetingResponseTTS}, nil
	case CategoryThanks:
		return s.canned(ThankYouResponse), nil
	case CategoryOffTopic:
		return s.canned(OffTopicResponse), nil
	case CategoryRatecard:
		return s.ratecardResponse(), nil
	case CategoryOrganizational:
		return s.answerWithContext(ctx, prompt, s.knowledge.FormatTentangTVKU(), ""), nil
	case CategoryNews:
		return s.feedResponse(ctx, prompt, s.feeds.GetBerita, NoNewsResponse), nil
	case CategorySchedule:
		return s.feedResponse(ctx, prompt, s.feeds.GetJadwalAcara, NoScheduleResponse), nil
	case CategoryProgram:
		return s.feedResponse(ctx, prompt, s.feeds.GetProgramAcara, NoProgramResponse), nil
	default:
		return s.ragResponse(ctx, prompt), nil
	}
}

func (s *chatService) canned(text string) ProcessedResponse {
	return ProcessedResponse{Display: text, Speech: SpeechVariant(text, 0)}
}

// ratecardResponse renders the rate card table directly from the knowledge
// file. Generation is deliberately bypassed so the table can never be
// paraphrased or have entries invented.
func (s *chatService) ratecardResponse() ProcessedResponse {
	table := s.knowledge.RateCardTable()
	if table == "" {
		return s.canned(NoDocumentResponse)
	}
	display := "Berikut rate card TVKU:" + table +
		"\n\nHarga dapat berubah sewaktu-waktu. Untuk penawaran terbaik silakan hubungi tim sales TVKU ya."
	speech := "Berikut rate card Tiviku. Daftar lengkapnya bisa dilihat di layar ya. Harga dapat berubah sewaktu-waktu, untuk penawaran terbaik silakan hubungi tim sales Tiviku."
	return ProcessedResponse{Display: display, Speech: speech}
}

// feedResponse answers a news/program/schedule question grounded in the
// live feed. A failed or empty feed degrades to the given message.
func (s *chatService) feedResponse(ctx context.Context, prompt string, fetch func(context.Context) (string, error), emptyResponse string) ProcessedResponse {
	section, err := fetch(ctx)
	if err != nil {
		log.Printf("SERVICE: feed fetch failed: %v", err)
		return s.canned(emptyResponse)
	}
	if strings.TrimSpace(section) == "" {
		return s.canned(emptyResponse)
	}
	return s.answerWithContext(ctx, prompt, section, "")
}

// ragResponse answers a general question through vector retrieval.
func (s *chatService) ragResponse(ctx context.Context, prompt string) ProcessedResponse {
	chunks, err := s.retriever.Retrieve(ctx, prompt)
	if err != nil {
		log.Printf("SERVICE: retrieval failed: %v", err)
		return s.canned(NoDocumentResponse)
	}
	if len(chunks) == 0 {
		return s.canned(NoDocumentResponse)
	}

	section := formatChunks(chunks)
	return s.answerWithContext(ctx, prompt, section, section)
}

// answerWithContext composes the prompt, invokes generation, and post-
// processes the answer. overlapContext, when non-empty, is what the answer
// is validated against; a generation failure falls back to echoing the
// assembled context verbatim instead of erroring.
func (s *chatService) answerWithContext(ctx context.Context, prompt, section, overlapContext string) ProcessedResponse {
	fullPrompt := s.prompts.Build(prompt, section)

	raw, err := s.generator.Generate(ctx, fullPrompt)
	if err != nil {
		log.Printf("SERVICE: generation failed, using templated fallback: %v", err)
		return s.templatedFallback(section)
	}
	return s.postProcessor.Process(raw, overlapContext)
}

// templatedFallback builds an answer from the already-assembled context when
// the generation backend is unavailable.
func (s *chatService) templatedFallback(section string) ProcessedResponse {
	section = strings.TrimSpace(section)
	if section == "" {
		return s.canned(FallbackResponse)
	}
	display := "Maaf, sistem AI sedang mengalami gangguan. Berikut informasi yang aku punya:\n\n" +
		section + "\n\nAda yang ingin ditanyakan lebih lanjut?"
	return ProcessedResponse{Display: display, Speech: SpeechVariant(display, 400)}
}

func formatChunks(chunks []models.ContextChunk) string {
	var sb strings.Builder
	sb.WriteString("### [Informasi TVKU]\n")
	for _, chunk := range chunks {
		sb.WriteString(strings.TrimSpace(chunk.Content))
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
