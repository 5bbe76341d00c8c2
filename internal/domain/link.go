package domain

// LinkType classifies what kind of catalog entity a streaming link points to.
// The numeric values are stable because they are stored as integers in the
// database.
type LinkType int

const (
	LinkTypeArtist LinkType = 1
	LinkTypeAlbum  LinkType = 2
	LinkTypeTrack  LinkType = 3
)

// String returns a human-readable name for the link type.
func (lt LinkType) String() string {
	switch lt {
	case LinkTypeArtist:
		return "artist"
	case LinkTypeAlbum:
		return "album"
	case LinkTypeTrack:
		return "track"
	default:
		return "unknown"
	}
}

// EntityType names the searchable entity kinds of the upstream catalog.
// Kept separate from LinkType: a link's type is inferred from the URL shape,
// while an entity type scopes a search query.
type EntityType string

const (
	EntityTypeArtist EntityType = "artist"
	EntityTypeAlbum  EntityType = "album"
	EntityTypeTrack  EntityType = "track"
)

// LinkInfo holds the metadata resolved for a single streaming link.
// It is created fresh per resolution and never persisted directly; an empty
// string means the field is absent (e.g. an artist without genre tags).
type LinkInfo struct {
	Type   LinkType
	Artist string
	Album  string
	Track  string
	Genre  string
}

// SearchResult is one candidate match returned by a catalog keyword search.
type SearchResult struct {
	ID     string
	Name   string
	Artist string
}
