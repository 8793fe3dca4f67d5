package httpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater/internal/domain"
	"theater/internal/repository"
)

func validCreateRequest() movieCreateRequest {
	score, budget, revenue := 85.0, 1000.0, 5000.0
	return movieCreateRequest{
		Name:      "Dune",
		Date:      "2024-01-01",
		Score:     &score,
		Overview:  "A mythic journey.",
		Status:    "RELEASED",
		Budget:    &budget,
		Revenue:   &revenue,
		Country:   "USA",
		Genres:    []string{"Sci-Fi"},
		Actors:    []string{"Actor A"},
		Languages: []string{"English"},
	}
}

func TestBuildCreateParams(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	params, err := buildCreateParams(validCreateRequest(), now)
	require.NoError(t, err)
	assert.Equal(t, "Dune", params.Name)
	assert.Equal(t, domain.StatusReleased, params.Status)
	assert.Equal(t, "USA", params.CountryCode)
	assert.Equal(t, "2024-01-01", params.Date.Format("2006-01-02"))

	tests := []struct {
		name    string
		mutate  func(req *movieCreateRequest)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(req *movieCreateRequest) { req.Name = "  " },
			wantErr: "name is required",
		},
		{
			name:    "bad date format",
			mutate:  func(req *movieCreateRequest) { req.Date = "01/02/2024" },
			wantErr: "YYYY-MM-DD",
		},
		{
			name:    "date more than one year out",
			mutate:  func(req *movieCreateRequest) { req.Date = "2025-07-01" },
			wantErr: "one year in the future",
		},
		{
			name:    "missing score",
			mutate:  func(req *movieCreateRequest) { req.Score = nil },
			wantErr: "score is required",
		},
		{
			name: "score above range",
			mutate: func(req *movieCreateRequest) {
				score := 101.0
				req.Score = &score
			},
			wantErr: "between 0 and 100",
		},
		{
			name:    "missing overview",
			mutate:  func(req *movieCreateRequest) { req.Overview = "" },
			wantErr: "overview is required",
		},
		{
			name:    "alpha-3 name alias rejected",
			mutate:  func(req *movieCreateRequest) { req.Country = "UAE" },
			wantErr: "ISO 3166-1",
		},
		{
			name:    "unknown status",
			mutate:  func(req *movieCreateRequest) { req.Status = "CANCELLED" },
			wantErr: "status must be one of",
		},
		{
			name: "negative budget",
			mutate: func(req *movieCreateRequest) {
				budget := -1.0
				req.Budget = &budget
			},
			wantErr: "budget must be non-negative",
		},
		{
			name: "negative revenue",
			mutate: func(req *movieCreateRequest) {
				revenue := -1.0
				req.Revenue = &revenue
			},
			wantErr: "revenue must be non-negative",
		},
		{
			name:    "invalid country code",
			mutate:  func(req *movieCreateRequest) { req.Country = "ZZZ" },
			wantErr: "ISO 3166-1",
		},
		{
			name:    "alpha-2 country code rejected",
			mutate:  func(req *movieCreateRequest) { req.Country = "US" },
			wantErr: "ISO 3166-1",
		},
		{
			name:    "missing genres",
			mutate:  func(req *movieCreateRequest) { req.Genres = nil },
			wantErr: "genres, actors and languages are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := buildCreateParams(req, now)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildCreateParams_DateBoundary(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	// Exactly 365 days out is still valid.
	req := validCreateRequest()
	req.Date = now.AddDate(0, 0, 365).Format("2006-01-02")
	_, err := buildCreateParams(req, now)
	require.NoError(t, err)

	req.Date = now.AddDate(0, 0, 366).Format("2006-01-02")
	_, err = buildCreateParams(req, now)
	require.Error(t, err)
}

func TestNormalizeCountryCode(t *testing.T) {
	code, err := normalizeCountryCode("usa")
	require.NoError(t, err)
	assert.Equal(t, "USA", code)

	code, err = normalizeCountryCode(" FRA ")
	require.NoError(t, err)
	assert.Equal(t, "FRA", code)

	for _, valid := range []string{"ARE", "GBR", "DEU"} {
		code, err = normalizeCountryCode(valid)
		require.NoError(t, err, valid)
		assert.Equal(t, valid, code)
	}

	// Name aliases resolve to a country but are not its alpha-3 code.
	for _, raw := range []string{"", "ZZZ", "US", "USAA", "123", "UAE", "ENG", "uae"} {
		_, err := normalizeCountryCode(raw)
		assert.Error(t, err, raw)
	}
}

func TestBuildUpdateParams(t *testing.T) {
	// Empty payload is valid and touches nothing.
	params, err := buildUpdateParams(movieUpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, countSetFields(params))

	score := 50.0
	status := "in_production"
	req := movieUpdateRequest{Score: &score, Status: &status}
	params, err = buildUpdateParams(req)
	require.NoError(t, err)
	require.NotNil(t, params.Score)
	require.NotNil(t, params.Status)
	assert.Equal(t, domain.StatusInProduction, *params.Status)
	assert.Nil(t, params.Name)
	assert.Nil(t, params.Date)

	bad := 120.0
	_, err = buildUpdateParams(movieUpdateRequest{Score: &bad})
	assert.Error(t, err)

	badStatus := "UNKNOWN"
	_, err = buildUpdateParams(movieUpdateRequest{Status: &badStatus})
	assert.Error(t, err)

	empty := "   "
	_, err = buildUpdateParams(movieUpdateRequest{Name: &empty})
	assert.Error(t, err)
}

func countSetFields(params repository.MovieUpdateParams) int {
	n := 0
	for _, set := range []bool{
		params.Name != nil, params.Date != nil, params.Score != nil,
		params.Overview != nil, params.Status != nil,
		params.Budget != nil, params.Revenue != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
