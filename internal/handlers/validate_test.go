package handlers

import (
	"strings"
	"testing"

	"deckpress/internal/models"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		display   string
		wantError bool
	}{
		{"valid", "ana@example.com", "correct horse", "Ana", false},
		{"empty email", "", "correct horse", "Ana", true},
		{"bad email", "not-an-email", "correct horse", "Ana", true},
		{"display form email", "Ana <ana@example.com>", "correct horse", "Ana", true},
		{"short password", "ana@example.com", "short", "Ana", true},
		{"long password", "ana@example.com", strings.Repeat("p", 73), "Ana", true},
		{"empty display name", "ana@example.com", "correct horse", "  ", true},
		{"display name too long", "ana@example.com", "correct horse", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateCredentials(tt.email, tt.password, tt.display)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateMeta(t *testing.T) {
	tests := []struct {
		name      string
		meta      models.Meta
		wantError bool
	}{
		{"empty", models.Meta{}, false},
		{"valid", models.Meta{Title: "Q3", Author: "Ana", SlideSize: "4:3"}, false},
		{"title too long", models.Meta{Title: strings.Repeat("a", 301)}, true},
		{"author too long", models.Meta{Author: strings.Repeat("a", 201)}, true},
		{"unknown slide size", models.Meta{SlideSize: "21:9"}, true},
		{"footer too long", models.Meta{Footer: models.HeaderFooter{Text: strings.Repeat("a", 501)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateMeta(tt.meta)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	if msg := validateFilename("deck"); msg != "" {
		t.Errorf("unexpected error: %s", msg)
	}
	if msg := validateFilename(strings.Repeat("a", 201)); msg == "" {
		t.Error("expected an error for a long filename")
	}
}
