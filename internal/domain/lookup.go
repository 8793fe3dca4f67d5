package domain

// Country is a normalized country row keyed by its ISO 3166-1 alpha-3 code.
// Name stays nil until someone backfills the display name.
type Country struct {
	ID   int64
	Code string
	Name *string
}

// NamedEntity is a shared lookup row (genre, actor, language) referenced by
// movies through a join table. Rows are created lazily on first reference and
// never deleted by this service.
type NamedEntity struct {
	ID   int64
	Name string
}
