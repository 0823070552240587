package query_test

import (
	"testing"

	"github.com/filmoteka/filmoteka-bot/internal/query"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantYear  string
	}{
		{"single token", "Inception", "Inception", ""},
		{"title with year", "Inception 2010", "Inception", "2010"},
		{"multiword title with year", "The Dark Knight 2008", "The Dark Knight", "2008"},
		{"numeric suffix below range", "Apollo 13", "Apollo 13", ""},
		{"numeric suffix above range", "Blade 3000", "Blade 3000", ""},
		{"non-numeric last token", "Unknown Movie Xyz", "Unknown Movie Xyz", ""},
		{"year lower bound", "Metropolis 1900", "Metropolis", "1900"},
		{"year upper bound", "Something 2025", "Something", "2025"},
		{"just below lower bound", "Old Film 1899", "Old Film 1899", ""},
		{"just above upper bound", "Future Film 2026", "Future Film 2026", ""},
		{"extra spaces collapse in title", "The   Dark  Knight 2008", "The Dark Knight", "2008"},
		{"single numeric token is a title", "1917", "1917", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, year := query.Parse(tt.text)
			if title != tt.wantTitle {
				t.Errorf("Parse(%q) title = %q, want %q", tt.text, title, tt.wantTitle)
			}
			if year != tt.wantYear {
				t.Errorf("Parse(%q) year = %q, want %q", tt.text, year, tt.wantYear)
			}
		})
	}
}
