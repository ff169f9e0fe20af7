package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nindyaadesyana/chatbot/models"
)

// socialMediaURLs resolves the platform codes stored in the knowledge file
// to their public profile URLs.
var socialMediaURLs = map[string]string{
	"tvku_ig": "https://www.instagram.com/tvku_smg",
	"tvku_yt": "https://www.youtube.com/@TVKU_udinus",
	"tvku_tt": "https://www.tiktok.com/@tvku_smg",
}

// KnowledgeService serves organizational facts, the rate card, and social
// media links from the static tentangTVKU.json file. The file is read once
// at startup and is immutable at runtime.
type KnowledgeService struct {
	data models.TentangTVKU
}

// NewKnowledgeService loads and parses the knowledge file.
func NewKnowledgeService(path string) (*KnowledgeService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file %s: %w", path, err)
	}
	var data models.TentangTVKU
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file %s: %w", path, err)
	}
	return &KnowledgeService{data: data}, nil
}

// RateCard returns every rate card entry.
func (k *KnowledgeService) RateCard() []models.RateCardEntry {
	return k.data.RateCard
}

// RateCardTable renders the full rate card as a markdown table with
// Acara/Durasi/Harga columns. Every entry from the source file appears.
func (k *KnowledgeService) RateCardTable() string {
	if len(k.data.RateCard) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n### [Rate Card]\n")
	sb.WriteString("| Acara | Durasi | Harga |\n|-------|--------|--------|\n")
	for _, entry := range k.data.RateCard {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", entry.Acara, entry.Durasi, entry.Harga))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatTentangTVKU renders the organizational profile, rate card summary,
// and social media links as a context section.
func (k *KnowledgeService) FormatTentangTVKU() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### [Tentang TVKU]\n%s\n\n", k.data.KataPengantar))
	sb.WriteString(fmt.Sprintf("### [Visi dan Misi]\n**Visi:** %s\n**Misi:** %s\n\n", k.data.Visi, k.data.Misi))

	if len(k.data.RateCard) > 0 {
		sb.WriteString("### [Rate Card]\n")
		for _, entry := range k.data.RateCard {
			sb.WriteString(fmt.Sprintf("- %s: %s (%s)\n", entry.Acara, entry.Durasi, entry.Harga))
		}
		sb.WriteString("\n")
	}

	if len(k.data.MediaSosial) > 0 {
		// Sorted so the section (and the document ingested from it) is
		// byte-identical across runs.
		platforms := make([]string, 0, len(k.data.MediaSosial))
		for platform := range k.data.MediaSosial {
			platforms = append(platforms, platform)
		}
		sort.Strings(platforms)

		sb.WriteString("### [Media Sosial]\n")
		for _, platform := range platforms {
			code := k.data.MediaSosial[platform]
			sb.WriteString(fmt.Sprintf("- [%s: %s](%s)\n", platform, code, socialMediaURLs[code]))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
