package models

import "encoding/json"

// Types for the TVKU REST feeds. Every endpoint wraps its payload in a
// top-level "data" array; consumers tolerate the array being missing or
// empty.

// FeedEnvelope is the common wrapper shape of the TVKU API responses.
type FeedEnvelope[T any] struct {
	Data []T `json:"data"`
}

// Berita is a single news item from /api/berita.
type Berita struct {
	ID           int       `json:"id"`
	Judul        string    `json:"judul"`
	Deskripsi    string    `json:"deskripsi"`
	Kategori     *Kategori `json:"kategori"`
	WaktuPublish string    `json:"waktu_publish"`
}

// Kategori is a news category.
type Kategori struct {
	Nama string `json:"nama"`
}

// ProgramAcara is a single program from /api/program-acara.
type ProgramAcara struct {
	ID        int    `json:"id_program"`
	Judul     string `json:"judul"`
	Deskripsi string `json:"deskripsi"`
}

// JadwalAcara is a schedule entry from /api/jadwal-acara. The API has served
// jam_awal both as a number and as a string, so json.Number absorbs either.
type JadwalAcara struct {
	ID       int         `json:"id"`
	Acara    string      `json:"acara"`
	JamAwal  json.Number `json:"jam_awal"`
	JamAkhir json.Number `json:"jam_akhir"`
	Hari     *Hari       `json:"hari"`
}

// Hari is the broadcast day of a schedule entry.
type Hari struct {
	ID   int    `json:"id"`
	Hari string `json:"hari"`
}
