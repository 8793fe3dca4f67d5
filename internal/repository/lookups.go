package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"theater/internal/domain"
)

// LookupKind selects which lookup table a get-or-create call targets.
type LookupKind string

const (
	KindGenres    LookupKind = "genres"
	KindActors    LookupKind = "actors"
	KindLanguages LookupKind = "languages"
)

// LookupsRepository resolves shared lookup rows (genres, actors, languages,
// countries) by their business key, creating missing rows lazily.
type LookupsRepository struct {
	pool *pgxpool.Pool
}

// GetOrCreate returns one row per distinct input name: existing rows are
// reused and missing names are inserted in first-seen order. Names repeated
// within the input produce a single row. An empty input returns no rows and
// touches the store not at all. Pass the enclosing transaction as q, or nil
// to run against the pool.
func (r *LookupsRepository) GetOrCreate(ctx context.Context, q querier, kind LookupKind, names []string) ([]domain.NamedEntity, error) {
	if q == nil {
		q = r.pool
	}
	if len(names) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, name FROM %s WHERE name = ANY($1)`, kind)
	rows, err := q.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", kind, err)
	}
	existing, err := collectNamedEntities(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		seen[e.Name] = struct{}{}
	}

	missing := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return existing, nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s (name) SELECT unnest($1::text[]) RETURNING id, name`, kind)
	rows, err = q.Query(ctx, insert, missing)
	if err != nil {
		return nil, mapIntegrityError(fmt.Errorf("insert %s: %w", kind, err))
	}
	created, err := collectNamedEntities(rows)
	if err != nil {
		return nil, mapIntegrityError(fmt.Errorf("scan inserted %s: %w", kind, err))
	}

	return append(existing, created...), nil
}

// EnsureCountry returns the country row for the given ISO alpha-3 code,
// inserting a row with no display name when the code is unknown to the store.
func (r *LookupsRepository) EnsureCountry(ctx context.Context, q querier, code string) (domain.Country, error) {
	if q == nil {
		q = r.pool
	}
	var country domain.Country
	err := q.QueryRow(ctx, `SELECT id, code, name FROM countries WHERE code = $1`, code).
		Scan(&country.ID, &country.Code, &country.Name)
	if err == nil {
		return country, nil
	}
	if err != pgx.ErrNoRows {
		return domain.Country{}, fmt.Errorf("select country: %w", err)
	}

	err = q.QueryRow(ctx, `INSERT INTO countries (code, name) VALUES ($1, NULL) RETURNING id, code, name`, code).
		Scan(&country.ID, &country.Code, &country.Name)
	if err != nil {
		return domain.Country{}, mapIntegrityError(fmt.Errorf("insert country: %w", err))
	}
	return country, nil
}

func collectNamedEntities(rows pgx.Rows) ([]domain.NamedEntity, error) {
	defer rows.Close()
	var entities []domain.NamedEntity
	for rows.Next() {
		var e domain.NamedEntity
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
