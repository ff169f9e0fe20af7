package services

import (
	"fmt"
	"strings"
	"time"
)

// SystemPrompt is the fixed persona and behavior contract sent with every
// generation request.
const SystemPrompt = `Anda adalah Dira, Asisten virtual TVKU yang ramah dan informatif. Aturan:
1. Berikan jawaban yang LENGKAP dan DETAIL berdasarkan data yang tersedia
2. Ketika ada data berita, jelaskan setiap berita dengan deskripsi lengkap
3. Gunakan format yang mudah dibaca dengan bullet points atau numbering
4. Jawab dalam bahasa yang sopan, ramah, dan conversational
5. Jika ada berita terkini, sebutkan judul, kategori, dan deskripsi lengkap
6. Jawab pertanyaan sesuai dengan apa yang ada di dalam data yang dimiliki
7. Jangan jawab berdasarkan pengetahuan umum — hanya jawab berdasarkan data yang tersedia
8. Jika tidak tahu jawabannya, katakan dengan sopan kalau kurang tahu
9. Jika ditanya tentang ratecard, berikan dalam bentuk tabel yang jelas
10. Akhiri dengan ajakan interaksi seperti "Ada yang ingin ditanyakan lebih lanjut?"`

// GreetingResponse is the canned reply for greeting messages; generation is
// never invoked for these.
const GreetingResponse = `Halo, Sahabat TVKU! Aku Dira, asisten virtual berbasis kecerdasan buatan milik TVKU. Tugasku adalah membantu memberikan informasi seputar TVKU — mulai dari jadwal acara, detail program unggulan, berita terbaru, hingga panduan seputar layanan TVKU. Aku siap menemani kamu kapan saja untuk menjawab pertanyaan dan membantumu menjelajahi semua yang ditawarkan TVKU.`

// GreetingResponseTTS is the speech variant of the greeting; "TVKU" is
// spelled out so the voice sounds natural.
const GreetingResponseTTS = `Halo, Sahabat Tiviku! Aku Dira, asisten virtual berbasis kecerdasan buatan milik Tiviku. Tugasku adalah membantu memberikan informasi seputar Tiviku — mulai dari jadwal acara, detail program unggulan, berita terbaru, hingga panduan seputar layanan Tiviku. Aku siap menemani kamu kapan saja untuk menjawab pertanyaan dan membantumu menjelajahi semua yang ditawarkan Tiviku.`

// ThankYouResponse is the canned reply for thanks.
const ThankYouResponse = "Sama-sama! Senang bisa membantu. Ada yang ingin ditanyakan lagi?"

// OffTopicResponse politely declines questions outside TVKU's scope.
const OffTopicResponse = "Maaf, aku hanya bisa membantu seputar TVKU — misalnya berita, program acara, jadwal tayang, atau informasi kerja sama iklan. Ada yang ingin ditanyakan tentang TVKU?"

// FallbackResponse is returned when no answer could be produced at all.
const FallbackResponse = "Maaf, sistem sedang mengalami gangguan. Tapi aku tetap bisa membantu dengan informasi TVKU. Silakan tanya tentang berita, jadwal acara, program, atau ratecard ya."

// TimeBasedGreeting returns the salutation for the wall-clock hour:
// pagi 05-10, siang 10-15, sore 15-18, malam otherwise.
func TimeBasedGreeting(now time.Time) string {
	hour := now.Hour()
	switch {
	case hour >= 5 && hour < 10:
		return "Selamat pagi"
	case hour >= 10 && hour < 15:
		return "Selamat siang"
	case hour >= 15 && hour < 18:
		return "Selamat sore"
	default:
		return "Selamat malam"
	}
}

// PromptBuilder composes the final prompt string: persona instructions, a
// time-of-day greeting hint, the assembled context, then the verbatim user
// question. No conversation history is carried; every request stands alone.
type PromptBuilder struct {
	now func() time.Time
}

// NewPromptBuilder creates a builder; now is injectable for tests and
// defaults to time.Now when nil.
func NewPromptBuilder(now func() time.Time) *PromptBuilder {
	if now == nil {
		now = time.Now
	}
	return &PromptBuilder{now: now}
}

// Build concatenates the prompt deterministically for the given question and
// context sections. Empty sections are skipped.
func (b *PromptBuilder) Build(question string, contextSections ...string) string {
	var sb strings.Builder
	sb.WriteString(SystemPrompt)
	sb.WriteString(fmt.Sprintf("\n\nGunakan sapaan %q bila menyapa pengguna.", TimeBasedGreeting(b.now())))

	for _, section := range contextSections {
		if strings.TrimSpace(section) == "" {
			continue
		}
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(section))
	}

	sb.WriteString("\n\nPertanyaan: ")
	sb.WriteString(question)
	sb.WriteString("\n\nJawab dengan bahasa Indonesia yang sopan dan informatif:")
	return sb.String()
}
