package webmeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewFetcherClampsNegativeRetries(t *testing.T) {
	f := NewFetcher(1000, -3, zap.NewNop())
	if f.maxRetries != 0 {
		t.Errorf("maxRetries = %d, want 0", f.maxRetries)
	}

	// The single attempt must still run.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Acme</title></head></html>`))
	}))
	defer srv.Close()

	meta, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Acme" {
		t.Errorf("title = %q", meta.Title)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name            string
		html            string
		wantTitle       string
		wantDescription string
	}{
		{
			name:      "title tag only",
			html:      `<html><head><title>Acme Corp</title></head><body></body></html>`,
			wantTitle: "Acme Corp",
		},
		{
			name:      "og title wins",
			html:      `<html><head><title>Acme</title><meta property="og:title" content="Acme Corporation"></head></html>`,
			wantTitle: "Acme Corporation",
		},
		{
			name:            "meta description",
			html:            `<html><head><title>Acme</title><meta name="description" content="We make anvils."></head></html>`,
			wantTitle:       "Acme",
			wantDescription: "We make anvils.",
		},
		{
			name:            "og description fallback",
			html:            `<html><head><meta property="og:description" content="Anvils and more."></head></html>`,
			wantDescription: "Anvils and more.",
		},
		{
			name:      "whitespace trimmed",
			html:      "<html><head><title>\n  Acme  \n</title></head></html>",
			wantTitle: "Acme",
		},
		{
			name: "empty document",
			html: `<html></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Parse(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if meta.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", meta.Title, tt.wantTitle)
			}
			if meta.Description != tt.wantDescription {
				t.Errorf("description = %q, want %q", meta.Description, tt.wantDescription)
			}
		})
	}
}
