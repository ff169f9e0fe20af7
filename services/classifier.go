package services

import "strings"

// Category is the closed set of response paths a question can be routed to.
type Category string

const (
	CategoryGreeting       Category = "greeting"
	CategoryThanks         Category = "thanks"
	CategoryRatecard       Category = "ratecard"
	CategoryOrganizational Category = "organizational"
	CategoryNews           Category = "news"
	CategorySchedule       Category = "schedule"
	CategoryProgram        Category = "program"
	CategoryOffTopic       Category = "off_topic"
	CategoryGeneral        Category = "general"
)

// ClassifierRule matches a category by case-insensitive substring containment.
// A rule with Exclude keywords does not fire when any of them is present,
// which lets "harga program acara" fall through to the program path instead
// of the rate card.
type ClassifierRule struct {
	Category Category
	Keywords []string
	Exclude  []string
}

var programKeywords = []string{"program", "acara", "tayangan", "siaran", "show"}

// classifierRules is evaluated top to bottom; the first matching rule wins.
// Greeting and thanks come before topic keywords, the off-topic denylist
// before the general/RAG fallthrough. A message mixing on- and off-topic
// keywords resolves by this fixed order.
var classifierRules = []ClassifierRule{
	{Category: CategoryGreeting, Keywords: []string{"halo", "hi", "hai", "assalamualaikum", "pagi", "siang", "sore", "malam"}},
	{Category: CategoryThanks, Keywords: []string{"terimakasih", "terima kasih", "makasih", "thanks", "thank you"}},
	{Category: CategoryRatecard, Keywords: []string{"ratecard", "rate card", "tarif iklan", "harga iklan", "biaya iklan", "tarif", "harga", "iklan"}, Exclude: programKeywords},
	{Category: CategoryOrganizational, Keywords: []string{"visi", "misi", "direktur", "manajemen", "struktur organisasi", "sejarah", "penghargaan", "fasilitas", "kontak", "media sosial", "alamat"}},
	{Category: CategoryNews, Keywords: []string{"berita", "news", "kabar", "terbaru", "terkini", "update", "hari ini"}},
	{Category: CategorySchedule, Keywords: []string{"jadwal", "schedule", "jam", "kapan"}},
	{Category: CategoryProgram, Keywords: programKeywords},
	{Category: CategoryOffTopic, Keywords: []string{"politik", "pemilu", "agama", "judi", "saham", "kripto", "crypto", "zodiak", "resep", "sepak bola"}},
}

// Classifier routes a raw user message to a Category using keyword matching
// only; no model is involved.
type Classifier struct {
	rules []ClassifierRule
}

// NewClassifier creates a classifier with the default rule table.
func NewClassifier() *Classifier {
	return &Classifier{rules: classifierRules}
}

// Classify returns the first matching category, or CategoryGeneral when no
// rule fires. Matching is case-insensitive; greeting keywords also match on
// exact equality of the trimmed message.
func (c *Classifier) Classify(input string) Category {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return CategoryGeneral
	}

	for _, rule := range c.rules {
		if rule.matches(normalized) {
			return rule.Category
		}
	}
	return CategoryGeneral
}

func (r ClassifierRule) matches(normalized string) bool {
	for _, excluded := range r.Exclude {
		if strings.Contains(normalized, excluded) {
			return false
		}
	}
	for _, keyword := range r.Keywords {
		if normalized == keyword || strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}
