package httpserver

import (
	"net/url"
	"testing"
)

func FuzzParseListParams(f *testing.F) {
	seeds := []string{
		"page=1&per_page=10",
		"page=0",
		"per_page=100",
		"page=abc&per_page=xyz",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		page, perPage, err := parseListParams(values)
		if err != nil {
			return
		}
		if page < 1 {
			t.Fatalf("accepted page %d", page)
		}
		if perPage < 1 || perPage > maxPerPage {
			t.Fatalf("accepted per_page %d", perPage)
		}
	})
}
