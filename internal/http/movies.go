package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/biter777/countries"
	"github.com/go-chi/chi/v5"

	"theater/internal/domain"
	"theater/internal/repository"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	dateLayout = "2006-01-02"
	maxNameLen = 255

	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 20
)

const (
	msgNoMovies      = "No movies found."
	msgMovieNotFound = "Movie with the given ID was not found."
	msgInvalidInput  = "Invalid input data."
	msgMovieUpdated  = "Movie updated successfully."
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieCreateRequest struct {
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	Score     *float64 `json:"score"`
	Overview  string   `json:"overview"`
	Status    string   `json:"status"`
	Budget    *float64 `json:"budget"`
	Revenue   *float64 `json:"revenue"`
	Country   string   `json:"country"`
	Genres    []string `json:"genres"`
	Actors    []string `json:"actors"`
	Languages []string `json:"languages"`
}

type movieUpdateRequest struct {
	Name     *string  `json:"name"`
	Date     *string  `json:"date"`
	Score    *float64 `json:"score"`
	Overview *string  `json:"overview"`
	Status   *string  `json:"status"`
	Budget   *float64 `json:"budget"`
	Revenue  *float64 `json:"revenue"`
}

type movieListItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Score    float64 `json:"score"`
	Overview string  `json:"overview"`
}

type movieListResponse struct {
	Movies     []movieListItem `json:"movies"`
	PrevPage   *string         `json:"prev_page"`
	NextPage   *string         `json:"next_page"`
	TotalPages int             `json:"total_pages"`
	TotalItems int64           `json:"total_items"`
}

type countryResponse struct {
	ID   int64   `json:"id"`
	Code string  `json:"code"`
	Name *string `json:"name"`
}

type namedEntityResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type movieDetailResponse struct {
	ID        int64                 `json:"id"`
	Name      string                `json:"name"`
	Date      string                `json:"date"`
	Score     float64               `json:"score"`
	Overview  string                `json:"overview"`
	Status    string                `json:"status"`
	Budget    float64               `json:"budget"`
	Revenue   float64               `json:"revenue"`
	Country   countryResponse       `json:"country"`
	Genres    []namedEntityResponse `json:"genres"`
	Actors    []namedEntityResponse `json:"actors"`
	Languages []namedEntityResponse `json:"languages"`
}

type messageResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := parseListParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := s.repo.Movies.List(r.Context(), page, perPage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", msgNoMovies)
			return
		}
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}

	items := make([]movieListItem, 0, len(result.Items))
	for _, movie := range result.Items {
		items = append(items, movieListItem{
			ID:       movie.ID,
			Name:     movie.Name,
			Date:     movie.Date.Format(dateLayout),
			Score:    movie.Score,
			Overview: movie.Overview,
		})
	}

	resp := movieListResponse{
		Movies:     items,
		TotalPages: result.TotalPages,
		TotalItems: result.TotalItems,
	}
	if page > 1 {
		resp.PrevPage = pageLink(page-1, perPage)
	}
	if page < result.TotalPages {
		resp.NextPage = pageLink(page+1, perPage)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func parseListParams(query url.Values) (page, perPage int, err error) {
	page, perPage = defaultPage, defaultPerPage

	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err = strconv.Atoi(val)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be an integer greater than or equal to 1")
		}
	}
	if val := strings.TrimSpace(query.Get("per_page")); val != "" {
		perPage, err = strconv.Atoi(val)
		if err != nil || perPage < 1 || perPage > maxPerPage {
			return 0, 0, fmt.Errorf("per_page must be an integer between 1 and %d", maxPerPage)
		}
	}
	return page, perPage, nil
}

func pageLink(page, perPage int) *string {
	link := fmt.Sprintf("/theater/movies/?page=%d&per_page=%d", page, perPage)
	return &link
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	params, err := buildCreateParams(req, time.Now())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	movie, err := s.repo.Movies.Create(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			msg := fmt.Sprintf("A movie with the name '%s' and release date '%s' already exists.",
				params.Name, params.Date.Format(dateLayout))
			s.respondError(w, http.StatusConflict, "CONFLICT", msg)
		case errors.Is(err, repository.ErrInvalidData):
			s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", msgInvalidInput)
		default:
			s.logger.Printf("create movie error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create movie")
		}
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/theater/movies/%d/", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieDetailResponse(movie))
}

// buildCreateParams validates the create payload before any store access.
func buildCreateParams(req movieCreateRequest, now time.Time) (repository.MovieCreateParams, error) {
	var params repository.MovieCreateParams

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return params, fmt.Errorf("name is required")
	}
	if len(name) > maxNameLen {
		return params, fmt.Errorf("name must be at most %d characters", maxNameLen)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return params, fmt.Errorf("date must follow YYYY-MM-DD format")
	}
	if date.After(now.AddDate(0, 0, 365)) {
		return params, fmt.Errorf("date cannot be more than one year in the future")
	}

	if req.Score == nil {
		return params, fmt.Errorf("score is required")
	}
	if *req.Score < 0 || *req.Score > 100 {
		return params, fmt.Errorf("score must be between 0 and 100")
	}

	if req.Overview == "" {
		return params, fmt.Errorf("overview is required")
	}

	status := domain.MovieStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return params, fmt.Errorf("status must be one of RELEASED, POST_PRODUCTION, IN_PRODUCTION")
	}

	if req.Budget == nil {
		return params, fmt.Errorf("budget is required")
	}
	if *req.Budget < 0 {
		return params, fmt.Errorf("budget must be non-negative")
	}
	if req.Revenue == nil {
		return params, fmt.Errorf("revenue is required")
	}
	if *req.Revenue < 0 {
		return params, fmt.Errorf("revenue must be non-negative")
	}

	code, err := normalizeCountryCode(req.Country)
	if err != nil {
		return params, err
	}

	if req.Genres == nil || req.Actors == nil || req.Languages == nil {
		return params, fmt.Errorf("genres, actors and languages are required")
	}

	return repository.MovieCreateParams{
		Name:        name,
		Date:        date,
		Score:       *req.Score,
		Overview:    req.Overview,
		Status:      status,
		Budget:      *req.Budget,
		Revenue:     *req.Revenue,
		CountryCode: code,
		Genres:      req.Genres,
		Actors:      req.Actors,
		Languages:   req.Languages,
	}, nil
}

// normalizeCountryCode upper-cases the input and checks it against the
// ISO 3166-1 reference dataset. The resolved country must carry the input as
// its alpha-3 code; name aliases that merely resolve to a country ("UAE",
// "ENG") are not codes and are rejected.
func normalizeCountryCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", fmt.Errorf("country code is required")
	}
	country := countries.ByName(code)
	if len(code) != 3 || country == countries.Unknown || country.Alpha3() != code {
		return "", fmt.Errorf("'%s' is not a valid ISO 3166-1 alpha-3 country code", code)
	}
	return code, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeMovieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", msgMovieNotFound)
			return
		}
		s.logger.Printf("get movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch movie")
		return
	}

	s.respondJSON(w, http.StatusOK, toMovieDetailResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeMovieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req movieUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	params, err := buildUpdateParams(req)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := s.repo.Movies.Update(r.Context(), id, params); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", msgMovieNotFound)
		case errors.Is(err, repository.ErrInvalidData):
			s.respondError(w, http.StatusBadRequest, "INVALID_INPUT", msgInvalidInput)
		default:
			s.logger.Printf("update movie error: %v", err)
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update movie")
		}
		return
	}

	s.respondJSON(w, http.StatusOK, messageResponse{Detail: msgMovieUpdated})
}

// buildUpdateParams validates only the fields present in the sparse payload.
func buildUpdateParams(req movieUpdateRequest) (repository.MovieUpdateParams, error) {
	var params repository.MovieUpdateParams

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return params, fmt.Errorf("name cannot be empty")
		}
		if len(name) > maxNameLen {
			return params, fmt.Errorf("name must be at most %d characters", maxNameLen)
		}
		params.Name = &name
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return params, fmt.Errorf("date must follow YYYY-MM-DD format")
		}
		params.Date = &date
	}
	if req.Score != nil {
		if *req.Score < 0 || *req.Score > 100 {
			return params, fmt.Errorf("score must be between 0 and 100")
		}
		params.Score = req.Score
	}
	if req.Overview != nil {
		params.Overview = req.Overview
	}
	if req.Status != nil {
		status := domain.MovieStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !status.Valid() {
			return params, fmt.Errorf("status must be one of RELEASED, POST_PRODUCTION, IN_PRODUCTION")
		}
		params.Status = &status
	}
	if req.Budget != nil {
		if *req.Budget < 0 {
			return params, fmt.Errorf("budget must be non-negative")
		}
		params.Budget = req.Budget
	}
	if req.Revenue != nil {
		if *req.Revenue < 0 {
			return params, fmt.Errorf("revenue must be non-negative")
		}
		params.Revenue = req.Revenue
	}
	return params, nil
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := decodeMovieIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.repo.Movies.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", msgMovieNotFound)
			return
		}
		s.logger.Printf("delete movie error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete movie")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeMovieIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "movieID")
	if raw == "" {
		return 0, fmt.Errorf("missing movie id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid movie id parameter")
	}
	return id, nil
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func toMovieDetailResponse(movie domain.Movie) movieDetailResponse {
	return movieDetailResponse{
		ID:       movie.ID,
		Name:     movie.Name,
		Date:     movie.Date.Format(dateLayout),
		Score:    movie.Score,
		Overview: movie.Overview,
		Status:   string(movie.Status),
		Budget:   movie.Budget,
		Revenue:  movie.Revenue,
		Country: countryResponse{
			ID:   movie.Country.ID,
			Code: movie.Country.Code,
			Name: movie.Country.Name,
		},
		Genres:    toNamedEntityResponses(movie.Genres),
		Actors:    toNamedEntityResponses(movie.Actors),
		Languages: toNamedEntityResponses(movie.Languages),
	}
}

func toNamedEntityResponses(entities []domain.NamedEntity) []namedEntityResponse {
	out := make([]namedEntityResponse, 0, len(entities))
	for _, e := range entities {
		out = append(out, namedEntityResponse{ID: e.ID, Name: e.Name})
	}
	return out
}
