package httpserver

import (
	"net/url"
	"testing"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantErr     bool
	}{
		{"defaults", "", 1, 10, false},
		{"explicit", "page=3&per_page=20", 3, 20, false},
		{"trimmed", "page= 2 &per_page= 5 ", 2, 5, false},
		{"page zero", "page=0", 0, 0, true},
		{"page negative", "page=-1", 0, 0, true},
		{"page not a number", "page=abc", 0, 0, true},
		{"per_page zero", "per_page=0", 0, 0, true},
		{"per_page above cap", "per_page=21", 0, 0, true},
		{"per_page at cap", "per_page=20", 1, 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			page, perPage, err := parseListParams(values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page != tt.wantPage || perPage != tt.wantPerPage {
				t.Fatalf("parseListParams(%q) = %d,%d, want %d,%d", tt.query, page, perPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestPageLink(t *testing.T) {
	link := pageLink(2, 15)
	if link == nil || *link != "/theater/movies/?page=2&per_page=15" {
		t.Fatalf("pageLink = %v", link)
	}
}
