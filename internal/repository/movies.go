package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"theater/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool    *pgxpool.Pool
	lookups *LookupsRepository
}

// MovieCreateParams bundles the fields required to create a movie. Lookup
// references arrive as business keys and are resolved inside the transaction.
type MovieCreateParams struct {
	Name        string
	Date        time.Time
	Score       float64
	Overview    string
	Status      domain.MovieStatus
	Budget      float64
	Revenue     float64
	CountryCode string
	Genres      []string
	Actors      []string
	Languages   []string
}

// MovieUpdateParams carries a sparse field set; nil fields are left untouched.
type MovieUpdateParams struct {
	Name     *string
	Date     *time.Time
	Score    *float64
	Overview *string
	Status   *domain.MovieStatus
	Budget   *float64
	Revenue  *float64
}

// MoviePage is one page of movie summaries plus pagination totals.
type MoviePage struct {
	Items      []domain.Movie
	TotalPages int
	TotalItems int64
}

// Create inserts a movie with its country and lookup references in a single
// transaction. A movie with the same name and date yields ErrDuplicate; a
// uniqueness race lost at commit time yields ErrInvalidData.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE name = $1 AND date = $2)`,
		params.Name, params.Date).Scan(&exists)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return domain.Movie{}, ErrDuplicate
	}

	country, err := r.lookups.EnsureCountry(ctx, tx, params.CountryCode)
	if err != nil {
		return domain.Movie{}, err
	}
	genres, err := r.lookups.GetOrCreate(ctx, tx, KindGenres, params.Genres)
	if err != nil {
		return domain.Movie{}, err
	}
	actors, err := r.lookups.GetOrCreate(ctx, tx, KindActors, params.Actors)
	if err != nil {
		return domain.Movie{}, err
	}
	languages, err := r.lookups.GetOrCreate(ctx, tx, KindLanguages, params.Languages)
	if err != nil {
		return domain.Movie{}, err
	}

	var movieID int64
	err = tx.QueryRow(ctx, `
        INSERT INTO movies (name, date, score, overview, status, budget, revenue, country_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id
    `, params.Name, params.Date, params.Score, params.Overview, string(params.Status),
		params.Budget, params.Revenue, country.ID).Scan(&movieID)
	if err != nil {
		return domain.Movie{}, mapIntegrityError(fmt.Errorf("insert movie: %w", err))
	}

	joins := []struct {
		query    string
		entities []domain.NamedEntity
	}{
		{`INSERT INTO movie_genres (movie_id, genre_id) SELECT $1::bigint, unnest($2::bigint[])`, genres},
		{`INSERT INTO movie_actors (movie_id, actor_id) SELECT $1::bigint, unnest($2::bigint[])`, actors},
		{`INSERT INTO movie_languages (movie_id, language_id) SELECT $1::bigint, unnest($2::bigint[])`, languages},
	}
	for _, join := range joins {
		if len(join.entities) == 0 {
			continue
		}
		ids := make([]int64, 0, len(join.entities))
		for _, e := range join.entities {
			ids = append(ids, e.ID)
		}
		if _, err := tx.Exec(ctx, join.query, movieID, ids); err != nil {
			return domain.Movie{}, mapIntegrityError(fmt.Errorf("insert join rows: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Movie{}, mapIntegrityError(fmt.Errorf("commit: %w", err))
	}

	return r.GetByID(ctx, movieID)
}

// GetByID fetches a movie with its country and all lookup relations populated.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	var movie domain.Movie
	var status string
	err := r.pool.QueryRow(ctx, `
        SELECT m.id, m.name, m.date, m.score, m.overview, m.status, m.budget, m.revenue,
               c.id, c.code, c.name, m.created_at, m.updated_at
        FROM movies m
        JOIN countries c ON c.id = m.country_id
        WHERE m.id = $1
    `, id).Scan(
		&movie.ID, &movie.Name, &movie.Date, &movie.Score, &movie.Overview, &status,
		&movie.Budget, &movie.Revenue,
		&movie.Country.ID, &movie.Country.Code, &movie.Country.Name,
		&movie.CreatedAt, &movie.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, fmt.Errorf("select movie: %w", err)
	}
	movie.Status = domain.MovieStatus(status)

	if movie.Genres, err = r.relatedEntities(ctx, id, KindGenres); err != nil {
		return domain.Movie{}, err
	}
	if movie.Actors, err = r.relatedEntities(ctx, id, KindActors); err != nil {
		return domain.Movie{}, err
	}
	if movie.Languages, err = r.relatedEntities(ctx, id, KindLanguages); err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

// join table and FK column per lookup kind; kinds are a closed set so the
// identifiers can be interpolated safely.
var lookupJoins = map[LookupKind]struct {
	table  string
	column string
}{
	KindGenres:    {"movie_genres", "genre_id"},
	KindActors:    {"movie_actors", "actor_id"},
	KindLanguages: {"movie_languages", "language_id"},
}

func (r *MoviesRepository) relatedEntities(ctx context.Context, movieID int64, kind LookupKind) ([]domain.NamedEntity, error) {
	join := lookupJoins[kind]
	query := fmt.Sprintf(`
        SELECT e.id, e.name
        FROM %s e
        JOIN %s j ON j.%s = e.id
        WHERE j.movie_id = $1
        ORDER BY e.id
    `, kind, join.table, join.column)

	rows, err := r.pool.Query(ctx, query, movieID)
	if err != nil {
		return nil, fmt.Errorf("select related %s: %w", kind, err)
	}
	entities, err := collectNamedEntities(rows)
	if err != nil {
		return nil, fmt.Errorf("scan related %s: %w", kind, err)
	}
	return entities, nil
}

// List returns one page of movies ordered by descending id. The page carries
// only summary fields; relations are not loaded. An empty catalog or a page
// past the last one yields ErrNotFound.
func (r *MoviesRepository) List(ctx context.Context, page, perPage int) (MoviePage, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return MoviePage{}, fmt.Errorf("count movies: %w", err)
	}
	if total == 0 {
		return MoviePage{}, ErrNotFound
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if page > totalPages {
		return MoviePage{}, ErrNotFound
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, date, score, overview
        FROM movies
        ORDER BY id DESC
        OFFSET $1 LIMIT $2
    `, offset, perPage)
	if err != nil {
		return MoviePage{}, fmt.Errorf("select movies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Movie, 0, perPage)
	for rows.Next() {
		var movie domain.Movie
		if err := rows.Scan(&movie.ID, &movie.Name, &movie.Date, &movie.Score, &movie.Overview); err != nil {
			return MoviePage{}, fmt.Errorf("scan movie: %w", err)
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MoviePage{}, err
	}

	return MoviePage{Items: items, TotalPages: totalPages, TotalItems: total}, nil
}

// Update applies only the non-nil fields and bumps updated_at. A name/date
// collision with another movie surfaces as ErrInvalidData.
func (r *MoviesRepository) Update(ctx context.Context, id int64, params MovieUpdateParams) error {
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	var updatedID int64
	err := r.pool.QueryRow(ctx, `
        UPDATE movies
        SET name = COALESCE($2, name),
            date = COALESCE($3, date),
            score = COALESCE($4, score),
            overview = COALESCE($5, overview),
            status = COALESCE($6, status),
            budget = COALESCE($7, budget),
            revenue = COALESCE($8, revenue),
            updated_at = now()
        WHERE id = $1
        RETURNING id
    `, id, params.Name, params.Date, params.Score, params.Overview, status,
		params.Budget, params.Revenue).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return mapIntegrityError(fmt.Errorf("update movie: %w", err))
	}
	return nil
}

// Delete removes the movie and, via cascade, its join rows. Shared lookup
// entities are left in place even when no movie references them anymore.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
