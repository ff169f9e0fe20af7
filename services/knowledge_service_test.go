package services

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestKnowledgeService(t *testing.T) *KnowledgeService {
	t.Helper()
	svc, err := NewKnowledgeService(filepath.Join("testdata", "tentangTVKU.json"))
	if err != nil {
		t.Fatalf("NewKnowledgeService: %v", err)
	}
	return svc
}

func TestNewKnowledgeServiceMissingFile(t *testing.T) {
	if _, err := NewKnowledgeService(filepath.Join("testdata", "nope.json")); err == nil {
		t.Fatal("expected an error for a missing knowledge file")
	}
}

func TestRateCardTable(t *testing.T) {
	svc := newTestKnowledgeService(t)

	table := svc.RateCardTable()

	if !strings.Contains(table, "| Acara | Durasi | Harga |") {
		t.Errorf("header row missing:\n%s", table)
	}
	for _, entry := range svc.RateCard() {
		row := "| " + entry.Acara + " | " + entry.Durasi + " | " + entry.Harga + " |"
		if !strings.Contains(table, row) {
			t.Errorf("row %q missing:\n%s", row, table)
		}
	}
}

func TestFormatTentangTVKU(t *testing.T) {
	svc := newTestKnowledgeService(t)

	section := svc.FormatTentangTVKU()

	for _, want := range []string{
		"### [Tentang TVKU]",
		"**Visi:** Menyegarkan bangsa melalui media audio visual",
		"**Misi:**",
		"### [Rate Card]",
		"- Blocking Time Talkshow: 60 Menit (Rp 30.000.000)",
		"### [Media Sosial]",
		"https://www.instagram.com/tvku_smg",
		"https://www.youtube.com/@TVKU_udinus",
	} {
		if !strings.Contains(section, want) {
			t.Errorf("formatted section missing %q:\n%s", want, section)
		}
	}
}

func TestFormatTentangTVKUIsDeterministic(t *testing.T) {
	svc := newTestKnowledgeService(t)

	first := svc.FormatTentangTVKU()
	for i := 0; i < 20; i++ {
		if got := svc.FormatTentangTVKU(); got != first {
			t.Fatal("formatted section differs between calls")
		}
	}

	// Platforms render in sorted order.
	if strings.Index(first, "Instagram") > strings.Index(first, "YouTube") {
		t.Errorf("social media platforms not sorted:\n%s", first)
	}
}
