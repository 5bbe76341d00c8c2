package music

import (
	"context"

	"musicshelf/internal/domain"
)

// Parser defines the capability set a streaming-service link parser must
// implement. Each supported service (Spotify, and potentially others later)
// provides its own implementation; the bot only talks to this interface, so
// adding a service is a new type, not a structural change.
type Parser interface {
	// IsValidURL reports whether the URL belongs to this service.
	// Pure string check, no network call.
	IsValidURL(url string) bool

	// LinkTypeOf classifies the link from its URL shape. The second return
	// value is false when the URL does not match any known entity kind.
	LinkTypeOf(url string) (domain.LinkType, bool)

	// CleanURL strips the query-string suffix to produce the canonical form
	// that gets stored and compared for duplicates. Idempotent.
	CleanURL(url string) string

	// EntityIDFromURL extracts the opaque catalog identifier, the trailing
	// path segment of a cleaned URL.
	EntityIDFromURL(url string) string

	// LinkInfo resolves the link to descriptive metadata via the upstream
	// catalog. Upstream failures are returned as-is to the caller.
	LinkInfo(ctx context.Context, url string, lt domain.LinkType) (domain.LinkInfo, error)

	// Search runs a keyword search against the catalog, scoped to one
	// entity kind, and returns the raw candidate list.
	Search(ctx context.Context, query string, et domain.EntityType) ([]domain.SearchResult, error)
}
