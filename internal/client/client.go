// Package client provides a typed HTTP client for the theater catalog API,
// used by the seed tool and by contract tests against a running instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the API has no movie for the request.
var ErrNotFound = errors.New("client: not found")

// ErrConflict is returned when a create collides with an existing movie.
var ErrConflict = errors.New("client: duplicate movie")

// MovieCreate is the create payload accepted by POST /theater/movies/.
type MovieCreate struct {
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	Score     float64  `json:"score"`
	Overview  string   `json:"overview"`
	Status    string   `json:"status"`
	Budget    float64  `json:"budget"`
	Revenue   float64  `json:"revenue"`
	Country   string   `json:"country"`
	Genres    []string `json:"genres"`
	Actors    []string `json:"actors"`
	Languages []string `json:"languages"`
}

// Country mirrors the country object in detail payloads.
type Country struct {
	ID   int64   `json:"id"`
	Code string  `json:"code"`
	Name *string `json:"name"`
}

// NamedEntity mirrors genre/actor/language objects in detail payloads.
type NamedEntity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetail is the full movie representation returned by the API.
type MovieDetail struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Date      string        `json:"date"`
	Score     float64       `json:"score"`
	Overview  string        `json:"overview"`
	Status    string        `json:"status"`
	Budget    float64       `json:"budget"`
	Revenue   float64       `json:"revenue"`
	Country   Country       `json:"country"`
	Genres    []NamedEntity `json:"genres"`
	Actors    []NamedEntity `json:"actors"`
	Languages []NamedEntity `json:"languages"`
}

// MovieListItem is the summary shape returned by the list endpoint.
type MovieListItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Score    float64 `json:"score"`
	Overview string  `json:"overview"`
}

// MovieList is one page of movies with pagination metadata.
type MovieList struct {
	Movies     []MovieListItem `json:"movies"`
	PrevPage   *string         `json:"prev_page"`
	NextPage   *string         `json:"next_page"`
	TotalPages int             `json:"total_pages"`
	TotalItems int64           `json:"total_items"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the theater catalog API over HTTP.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	logger  *log.Logger
}

// New constructs a catalog API client with connection timeouts applied.
func New(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	return &Client{
		baseURL: parsed,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}, nil
}

// Create submits a new movie and returns its detail representation.
func (c *Client) Create(ctx context.Context, payload MovieCreate) (MovieDetail, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return MovieDetail{}, fmt.Errorf("encode payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/theater/movies/", bytes.NewReader(body))
	if err != nil {
		return MovieDetail{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var detail MovieDetail
	if err := c.do(req, http.StatusCreated, &detail); err != nil {
		return MovieDetail{}, err
	}
	return detail, nil
}

// Get fetches one movie by id.
func (c *Client) Get(ctx context.Context, id int64) (MovieDetail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/theater/movies/%d/", id), nil)
	if err != nil {
		return MovieDetail{}, err
	}

	var detail MovieDetail
	if err := c.do(req, http.StatusOK, &detail); err != nil {
		return MovieDetail{}, err
	}
	return detail, nil
}

// List fetches one page of movies.
func (c *Client) List(ctx context.Context, page, perPage int) (MovieList, error) {
	rel := fmt.Sprintf("/theater/movies/?page=%d&per_page=%d", page, perPage)
	req, err := c.newRequest(ctx, http.MethodGet, rel, nil)
	if err != nil {
		return MovieList{}, err
	}

	var list MovieList
	if err := c.do(req, http.StatusOK, &list); err != nil {
		return MovieList{}, err
	}
	return list, nil
}

func (c *Client) newRequest(ctx context.Context, method, rel string, body *bytes.Reader) (*http.Request, error) {
	relURL, err := url.Parse(rel)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	endpoint := c.baseURL.ResolveReference(relURL)

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint.String(), nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, wantStatus int, dst interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == wantStatus:
		if dst == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	default:
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("api returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		c.logger.Printf("client: unexpected status %d for %s %s", resp.StatusCode, req.Method, req.URL.Path)
		return fmt.Errorf("api returned %d", resp.StatusCode)
	}
}
