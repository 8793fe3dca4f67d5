package domain

import "time"

// MovieStatus is the lifecycle state of a movie in the catalog.
type MovieStatus string

const (
	StatusReleased       MovieStatus = "RELEASED"
	StatusPostProduction MovieStatus = "POST_PRODUCTION"
	StatusInProduction   MovieStatus = "IN_PRODUCTION"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s MovieStatus) Valid() bool {
	switch s {
	case StatusReleased, StatusPostProduction, StatusInProduction:
		return true
	}
	return false
}

// Movie represents the canonical movie entity in the database/service.
type Movie struct {
	ID        int64
	Name      string
	Date      time.Time
	Score     float64
	Overview  string
	Status    MovieStatus
	Budget    float64
	Revenue   float64
	Country   Country
	Genres    []NamedEntity
	Actors    []NamedEntity
	Languages []NamedEntity
	CreatedAt time.Time
	UpdatedAt time.Time
}
