package models

// RateCardEntry is one advertised service in the rate card. Loaded from the
// static knowledge JSON, immutable at runtime.
type RateCardEntry struct {
	Acara  string `json:"acara"`
	Durasi string `json:"durasi"`
	Harga  string `json:"harga"`
}

// TentangTVKU is the static organizational knowledge file.
type TentangTVKU struct {
	KataPengantar string            `json:"kataPengantar"`
	Visi          string            `json:"visi"`
	Misi          string            `json:"misi"`
	RateCard      []RateCardEntry   `json:"rateCard"`
	MediaSosial   map[string]string `json:"mediaSosial"`
}

// UploadedFile describes one file in the uploads directory as reported by
// GET /api/database.
type UploadedFile struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	UploadDate string `json:"uploadDate"`
	Type       string `json:"type"`
}
