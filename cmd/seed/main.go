// Command seed loads a JSON array of movie payloads and creates each one
// through a running catalog API. Duplicates are reported and skipped.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"theater/internal/client"
)

func main() {
	var (
		addr    = flag.String("addr", "http://localhost:8080", "base URL of the theater API")
		data    = flag.String("data", "seed-movies.json", "path to a JSON array of movie create payloads")
		timeout = flag.Duration("timeout", 10*time.Second, "per-request timeout")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[theater-seed] ", log.LstdFlags)

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Fatalf("read seed data: %v", err)
	}

	var payloads []client.MovieCreate
	if err := json.Unmarshal(file, &payloads); err != nil {
		logger.Fatalf("parse seed data: %v", err)
	}

	api, err := client.New(*addr, *timeout, logger)
	if err != nil {
		logger.Fatalf("init api client: %v", err)
	}

	var created, skipped, failed int
	for _, payload := range payloads {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		movie, err := api.Create(ctx, payload)
		cancel()

		switch {
		case err == nil:
			created++
			logger.Printf("created %q (id=%d)", movie.Name, movie.ID)
		case errors.Is(err, client.ErrConflict):
			skipped++
			logger.Printf("skipped %q: already exists", payload.Name)
		default:
			failed++
			logger.Printf("failed %q: %v", payload.Name, err)
		}
	}

	logger.Printf("done: %d created, %d skipped, %d failed", created, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
