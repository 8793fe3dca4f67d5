package httpserver

import (
	"fmt"
	"net/http"
	"testing"
)

func BenchmarkHandleListMovies(b *testing.B) {
	srv := buildTestServer(b)

	for i := 0; i < 25; i++ {
		payload := dunePayload()
		payload["name"] = fmt.Sprintf("Bench Movie %d", i)
		rec := doRequest(srv, http.MethodPost, "/theater/movies/", payload)
		if rec.Code != http.StatusCreated {
			b.Fatalf("seed movie %d: status %d", i, rec.Code)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doRequest(srv, http.MethodGet, "/theater/movies/?page=1&per_page=20", nil)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
