package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/nindyaadesyana/chatbot/models"
)

// FeedService provides formatted context sections from the live TVKU REST
// APIs. All methods degrade to an empty section on failure; callers decide
// how to answer without the data.
type FeedService interface {
	GetBerita(ctx context.Context) (string, error)
	GetProgramAcara(ctx context.Context) (string, error)
	GetJadwalAcara(ctx context.Context) (string, error)
}

type feedService struct {
	httpClient *http.Client
	baseURL    string
	retries    int
}

// NewFeedService creates a feed client. The http.Client's timeout bounds
// every call; retries is the number of attempts per request.
func NewFeedService(httpClient *http.Client, baseURL string, retries int) FeedService {
	if retries < 1 {
		retries = 1
	}
	return &feedService{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		retries:    retries,
	}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// GetBerita fetches the latest news, newest first, and renders the top five
// as a numbered context section. Returns an empty string when the feed has
// no items.
func (s *feedService) GetBerita(ctx context.Context) (string, error) {
	var envelope models.FeedEnvelope[models.Berita]
	if err := s.getJSON(ctx, "/berita", &envelope); err != nil {
		return "", fmt.Errorf("failed to fetch berita: %w", err)
	}
	if len(envelope.Data) == 0 {
		return "", nil
	}

	items := envelope.Data
	sort.SliceStable(items, func(i, j int) bool {
		return parsePublishTime(items[i].WaktuPublish).After(parsePublishTime(items[j].WaktuPublish))
	})
	if len(items) > 5 {
		items = items[:5]
	}

	var sb strings.Builder
	sb.WriteString("\n\n### [Berita Terkini TVKU]\n")
	for i, item := range items {
		kategori := "Umum"
		if item.Kategori != nil && item.Kategori.Nama != "" {
			kategori = item.Kategori.Nama
		}
		deskripsi := strings.TrimSpace(htmlTagPattern.ReplaceAllString(item.Deskripsi, ""))
		sb.WriteString(fmt.Sprintf("%d. **%s**\n   Kategori: %s\n   Deskripsi: %s\n   Waktu: %s\n\n",
			i+1, item.Judul, kategori, deskripsi, formatPublishDate(item.WaktuPublish)))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// GetProgramAcara fetches the program list as a bulleted context section.
func (s *feedService) GetProgramAcara(ctx context.Context) (string, error) {
	var envelope models.FeedEnvelope[models.ProgramAcara]
	if err := s.getJSON(ctx, "/program-acara", &envelope); err != nil {
		return "", fmt.Errorf("failed to fetch program acara: %w", err)
	}
	if len(envelope.Data) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("\n\n### [Program Acara]\n")
	for _, item := range envelope.Data {
		sb.WriteString(fmt.Sprintf("• **%s** - %s\n", item.Judul, item.Deskripsi))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// GetJadwalAcara fetches the broadcast schedule as a bulleted context section.
func (s *feedService) GetJadwalAcara(ctx context.Context) (string, error) {
	var envelope models.FeedEnvelope[models.JadwalAcara]
	if err := s.getJSON(ctx, "/jadwal-acara", &envelope); err != nil {
		return "", fmt.Errorf("failed to fetch jadwal acara: %w", err)
	}
	if len(envelope.Data) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("\n\n### [Jadwal Acara Terkini]\n")
	for _, item := range envelope.Data {
		hari := ""
		if item.Hari != nil {
			hari = item.Hari.Hari
		}
		sb.WriteString(fmt.Sprintf("• **%s** (%s) %s - %s\n", item.Acara, hari, item.JamAwal, item.JamAkhir))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// getJSON issues a GET with bounded retries and decodes the body into out.
// Retries back off linearly; the context deadline still wins.
func (s *feedService) getJSON(ctx context.Context, path string, out any) error {
	url := s.baseURL + path

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request for %s: %w", url, err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("SERVICE: GET %s attempt %d/%d failed: %v", url, attempt, s.retries, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
			log.Printf("SERVICE: GET %s attempt %d/%d: status %d", url, attempt, s.retries, resp.StatusCode)
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", url, err)
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed for %s: %w", s.retries, url, lastErr)
}

func parsePublishTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatPublishDate(value string) string {
	t := parsePublishTime(value)
	if t.IsZero() {
		return value
	}
	return t.Format("2/1/2006")
}
