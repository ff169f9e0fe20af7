package services

import (
	"regexp"
	"strings"
	"unicode"
)

// ProcessedResponse is the final output of the pipeline: a display string
// for the chat UI and a shortened, markdown-free variant for TTS playback.
type ProcessedResponse struct {
	Display string
	Speech  string
}

// SafeApologyResponse replaces answers that fail the grounding checks.
const SafeApologyResponse = "Maaf, aku belum memiliki informasi yang akurat mengenai hal itu. Silakan tanyakan seputar berita, program acara, jadwal tayang, atau layanan TVKU ya."

// hallucinationMarkers is a denylist of hedging phrases. An answer
// containing any of them is discarded wholesale; the heuristic prefers a
// clean apology over a confabulated answer.
var hallucinationMarkers = []string{
	"sebagai ai",
	"sebagai asisten ai",
	"sebagai model bahasa",
	"saya tidak memiliki akses",
	"saya tidak mempunyai akses",
	"berdasarkan pengetahuan umum saya",
	"as an ai",
	"as a language model",
	"i don't have access",
	"i do not have access",
}

// typoFixes corrects recurring mistakes the model copies from the source
// documents.
var typoFixes = strings.NewReplacer(
	"Universitas Dan Nuswantoro", "Universitas Dian Nuswantoro",
	"Televsi", "Televisi",
	"televsi", "televisi",
	"penyiarantelevisi", "penyiaran televisi",
)

var (
	codeFencePattern     = regexp.MustCompile("(?s)```[a-z]*\n?|```")
	answerPrefixPattern  = regexp.MustCompile(`(?i)^\s*(jawaban|answer)\s*:\s*`)
	blankLinesPattern    = regexp.MustCompile(`\n{3,}`)
	markdownLinkPattern  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)
)

// PostProcessorOptions toggles the optional cleanup passes.
type PostProcessorOptions struct {
	// StripParentheticals removes parenthetical asides from the display text.
	StripParentheticals bool
	// OverlapThreshold is the minimum token-overlap ratio between the answer
	// and the supplied context; answers below it are replaced by the safe
	// apology. Zero disables the check.
	OverlapThreshold float64
	// MaxSpeechLength truncates the speech variant at a sentence boundary.
	MaxSpeechLength int
}

// PostProcessor cleans raw LLM output and derives the speech variant.
type PostProcessor struct {
	opts PostProcessorOptions
}

// NewPostProcessor creates a post-processor with the given options.
func NewPostProcessor(opts PostProcessorOptions) *PostProcessor {
	if opts.MaxSpeechLength <= 0 {
		opts.MaxSpeechLength = 400
	}
	return &PostProcessor{opts: opts}
}

// Process cleans the raw generated text and validates it against the context
// it was grounded on. contextText may be empty, which skips the overlap
// check.
func (p *PostProcessor) Process(raw, contextText string) ProcessedResponse {
	display := p.clean(raw)

	if display == "" || p.containsHallucinationMarker(display) {
		return ProcessedResponse{
			Display: SafeApologyResponse,
			Speech:  SpeechVariant(SafeApologyResponse, p.opts.MaxSpeechLength),
		}
	}

	if p.opts.OverlapThreshold > 0 && contextText != "" {
		if ContextOverlap(display, contextText) < p.opts.OverlapThreshold {
			return ProcessedResponse{
				Display: SafeApologyResponse,
				Speech:  SpeechVariant(SafeApologyResponse, p.opts.MaxSpeechLength),
			}
		}
	}

	return ProcessedResponse{
		Display: display,
		Speech:  SpeechVariant(display, p.opts.MaxSpeechLength),
	}
}

func (p *PostProcessor) clean(raw string) string {
	text := strings.TrimSpace(raw)
	text = codeFencePattern.ReplaceAllString(text, "")
	text = answerPrefixPattern.ReplaceAllString(text, "")
	text = typoFixes.Replace(text)
	if p.opts.StripParentheticals {
		text = parentheticalPattern.ReplaceAllString(text, "")
	}
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func (p *PostProcessor) containsHallucinationMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range hallucinationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ContextOverlap measures how grounded an answer is in its context: the
// fraction of answer tokens (longer than three runes) that appear in the
// context, allowing one edit of fuzz per token. Returns 1 for an empty
// answer so trivial answers never trip the filter.
func ContextOverlap(answer, contextText string) float64 {
	answerTokens := longTokens(answer)
	if len(answerTokens) == 0 {
		return 1
	}
	contextTokens := longTokens(contextText)
	contextSet := make(map[string]struct{}, len(contextTokens))
	for _, t := range contextTokens {
		contextSet[t] = struct{}{}
	}

	matches := 0
	for _, t := range answerTokens {
		if _, ok := contextSet[t]; ok {
			matches++
			continue
		}
		for c := range contextSet {
			if fuzzyEqual(t, c) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(answerTokens))
}

func longTokens(text string) []string {
	var out []string
	for _, t := range tokenize(text) {
		if len([]rune(t)) > 3 {
			out = append(out, t)
		}
	}
	return out
}

func fuzzyEqual(a, b string) bool {
	if len(a) < 5 || len(b) < 5 {
		return false
	}
	diff := len(a) - len(b)
	if diff < -1 || diff > 1 {
		return false
	}
	return levenshtein(a, b) <= 1
}

// SpeechVariant derives the TTS-friendly string: markdown tables and
// formatting stripped, links reduced to their text, emoji removed, bullet
// lists flattened into a comma-joined sentence, "TVKU" spoken as "Tiviku",
// and the whole thing truncated at a sentence boundary near maxLength.
func SpeechVariant(display string, maxLength int) string {
	lines := strings.Split(display, "\n")
	var parts []string
	var listItems []string

	flushList := func() {
		if len(listItems) > 0 {
			parts = append(parts, strings.Join(listItems, ", ")+".")
			listItems = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			flushList()
			continue
		}
		// Table rows and separators are unreadable aloud.
		if strings.HasPrefix(line, "|") {
			continue
		}
		if item, ok := listItem(line); ok {
			listItems = append(listItems, item)
			continue
		}
		flushList()
		parts = append(parts, line)
	}
	flushList()

	text := strings.Join(parts, " ")
	text = markdownLinkPattern.ReplaceAllString(text, "$1")
	text = strings.NewReplacer("**", "", "*", "", "#", "", "`", "", "_", "", ">", "").Replace(text)
	text = stripEmoji(text)
	text = strings.ReplaceAll(text, "TVKU", "Tiviku")
	text = strings.Join(strings.Fields(text), " ")
	return truncateAtSentence(text, maxLength)
}

func listItem(line string) (string, bool) {
	for _, prefix := range []string{"• ", "- ", "* "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	digits := 0
	for digits < len(line) && unicode.IsDigit(rune(line[digits])) {
		digits++
	}
	if digits > 0 && digits < len(line) && line[digits] == '.' {
		return strings.TrimSpace(line[digits+1:]), true
	}
	return "", false
}

func stripEmoji(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r) || r >= 0x1F000 {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func truncateAtSentence(text string, maxLength int) string {
	runes := []rune(text)
	if maxLength <= 0 || len(runes) <= maxLength {
		return text
	}
	cut := string(runes[:maxLength])
	if idx := strings.LastIndexAny(cut, ".!?"); idx > 0 {
		return strings.TrimSpace(cut[:idx+1])
	}
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return strings.TrimSpace(cut)
}
