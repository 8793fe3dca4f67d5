package client

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"testing"
	"time"
)

// TestClientSmoke runs against a live API instance when THEATER_API_URL is set.
func TestClientSmoke(t *testing.T) {
	baseURL := os.Getenv("THEATER_API_URL")
	if baseURL == "" {
		t.Skip("THEATER_API_URL not provided")
	}

	api, err := New(baseURL, 3*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	list, err := api.List(ctx, 1, 10)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			t.Skip("catalog is empty")
		}
		t.Fatalf("list movies: %v", err)
	}
	if list.TotalItems < int64(len(list.Movies)) {
		t.Fatalf("total_items %d smaller than page size %d", list.TotalItems, len(list.Movies))
	}

	if len(list.Movies) > 0 {
		detail, err := api.Get(ctx, list.Movies[0].ID)
		if err != nil {
			t.Fatalf("get movie: %v", err)
		}
		if detail.ID != list.Movies[0].ID || detail.Country.Code == "" {
			t.Fatalf("unexpected detail payload: %+v", detail)
		}
	}
}
