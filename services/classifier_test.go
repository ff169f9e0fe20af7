package services

import "testing"

func TestClassify(t *testing.T) {
	classifier := NewClassifier()

	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{"exact greeting", "halo", CategoryGreeting},
		{"greeting with salutation", "Selamat pagi Dira", CategoryGreeting},
		{"mixed case greeting", "HAI dira", CategoryGreeting},
		{"thanks", "terima kasih banyak ya", CategoryThanks},
		{"thanks slang", "makasih", CategoryThanks},
		{"ratecard", "berapa tarif iklan di tvku?", CategoryRatecard},
		{"ratecard plain harga", "harga pasang iklan", CategoryRatecard},
		{"organizational", "apa visi dan misi tvku", CategoryOrganizational},
		{"organizational management", "siapa direktur tvku", CategoryOrganizational},
		{"news", "ada berita terbaru apa?", CategoryNews},
		{"schedule", "kapan tayangnya?", CategorySchedule},
		{"program", "program unggulan tvku apa saja", CategoryProgram},
		{"off topic", "bagaimana prediksi pemilu tahun depan", CategoryOffTopic},
		{"off topic gambling", "apakah judi online legal", CategoryOffTopic},
		{"general", "apa itu tvku", CategoryGeneral},
		{"empty", "", CategoryGeneral},
		{"whitespace only", "   ", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// A price question about a program must reach the feed-backed program path,
// not the rate card, even though it contains a price keyword.
func TestClassifyRatecardExclusion(t *testing.T) {
	classifier := NewClassifier()

	if got := classifier.Classify("berapa harga slot di program berjalan?"); got != CategoryProgram {
		t.Errorf("Classify = %q, want %q", got, CategoryProgram)
	}
	if got := classifier.Classify("berapa harga tayangan iklan?"); got != CategoryProgram {
		// "tayangan" is a program keyword and wins over the price keyword.
		t.Errorf("Classify = %q, want %q", got, CategoryProgram)
	}
}

// Rule order is fixed: greeting beats every topic keyword in the same message.
func TestClassifyRuleOrder(t *testing.T) {
	classifier := NewClassifier()

	if got := classifier.Classify("halo, ada berita terbaru?"); got != CategoryGreeting {
		t.Errorf("Classify = %q, want %q", got, CategoryGreeting)
	}
	if got := classifier.Classify("berita tentang jadwal baru"); got != CategoryNews {
		t.Errorf("Classify = %q, want %q", got, CategoryNews)
	}
}
