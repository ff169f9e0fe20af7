package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetBerita(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/berita" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":[
			{"id":1,"judul":"Berita Lama","deskripsi":"<p>Isi lama</p>","waktu_publish":"2025-05-01 08:00:00","kategori":{"nama":"Kampus"}},
			{"id":2,"judul":"Berita Baru","deskripsi":"<p>Isi <b>baru</b></p>","waktu_publish":"2025-06-01 08:00:00","kategori":{"nama":"Umum"}}
		]}`))
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 1)
	section, err := feeds.GetBerita(context.Background())
	if err != nil {
		t.Fatalf("GetBerita: %v", err)
	}

	if !strings.Contains(section, "### [Berita Terkini TVKU]") {
		t.Errorf("section header missing:\n%s", section)
	}
	// Newest first.
	if strings.Index(section, "Berita Baru") > strings.Index(section, "Berita Lama") {
		t.Errorf("news not sorted newest first:\n%s", section)
	}
	if strings.Contains(section, "<p>") || strings.Contains(section, "<b>") {
		t.Errorf("HTML tags survived:\n%s", section)
	}
	if !strings.Contains(section, "Kategori: Umum") {
		t.Errorf("category missing:\n%s", section)
	}
}

func TestGetBeritaLimitsToFive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []string
		for i := 0; i < 8; i++ {
			items = append(items, `{"judul":"Item","deskripsi":"x","waktu_publish":"2025-06-01"}`)
		}
		w.Write([]byte(`{"data":[` + strings.Join(items, ",") + `]}`))
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 1)
	section, err := feeds.GetBerita(context.Background())
	if err != nil {
		t.Fatalf("GetBerita: %v", err)
	}

	if got := strings.Count(section, "**Item**"); got != 5 {
		t.Errorf("rendered %d items, want 5", got)
	}
}

func TestGetBeritaEmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 1)
	section, err := feeds.GetBerita(context.Background())
	if err != nil {
		t.Fatalf("GetBerita: %v", err)
	}
	if section != "" {
		t.Errorf("empty feed produced a section: %q", section)
	}
}

func TestGetProgramAcara(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/program-acara" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":[{"id_program":1,"judul":"Warta Udinus","deskripsi":"Berita kampus harian"}]}`))
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 1)
	section, err := feeds.GetProgramAcara(context.Background())
	if err != nil {
		t.Fatalf("GetProgramAcara: %v", err)
	}
	if !strings.Contains(section, "• **Warta Udinus** - Berita kampus harian") {
		t.Errorf("program entry missing:\n%s", section)
	}
}

func TestGetJadwalAcara(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jadwal-acara" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data":[{"acara":"Warta Udinus","jam_awal":18,"jam_akhir":19,"hari":{"hari":"Senin"}}]}`))
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 1)
	section, err := feeds.GetJadwalAcara(context.Background())
	if err != nil {
		t.Fatalf("GetJadwalAcara: %v", err)
	}
	if !strings.Contains(section, "**Warta Udinus** (Senin) 18 - 19") {
		t.Errorf("schedule entry missing:\n%s", section)
	}
}

func TestGetJSONRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data":[{"judul":"Pulih","deskripsi":"x","waktu_publish":"2025-06-01"}]}`))
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 3)
	section, err := feeds.GetBerita(context.Background())
	if err != nil {
		t.Fatalf("GetBerita after retries: %v", err)
	}
	if !strings.Contains(section, "Pulih") {
		t.Errorf("recovered response missing:\n%s", section)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestGetJSONGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	feeds := NewFeedService(server.Client(), server.URL, 2)
	if _, err := feeds.GetBerita(context.Background()); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
}

func TestGetJSONRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	feeds := NewFeedService(server.Client(), server.URL, 5)
	start := time.Now()
	if _, err := feeds.GetBerita(ctx); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("retries ignored the context deadline, took %s", elapsed)
	}
}
