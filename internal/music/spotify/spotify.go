package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	spot "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"musicshelf/internal/domain"
)

const linkDomain = "open.spotify.com"

// catalog is the slice of the Spotify Web API the parser actually uses.
// *spot.Client satisfies it; tests substitute a fake.
type catalog interface {
	GetArtist(ctx context.Context, id spot.ID) (*spot.FullArtist, error)
	GetAlbum(ctx context.Context, id spot.ID, opts ...spot.RequestOption) (*spot.FullAlbum, error)
	GetTrack(ctx context.Context, id spot.ID, opts ...spot.RequestOption) (*spot.FullTrack, error)
	Search(ctx context.Context, query string, t spot.SearchType, opts ...spot.RequestOption) (*spot.SearchResult, error)
}

// Parser resolves open.spotify.com links against the Spotify Web API.
type Parser struct {
	client catalog
	log    logrus.FieldLogger
}

// NewParser builds a Parser with a client-credentials authenticated API
// client. The token source refreshes itself; the context only bounds the
// initial token request.
func NewParser(ctx context.Context, clientID, clientSecret string, logger logrus.FieldLogger) *Parser {
	ccfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	httpClient := ccfg.Client(ctx)
	return newParser(spot.New(httpClient), logger)
}

// NewParserWithHTTPClient is like NewParser but uses the given HTTP client
// directly, bypassing client-credentials auth.
func NewParserWithHTTPClient(httpClient *http.Client, logger logrus.FieldLogger) *Parser {
	return newParser(spot.New(httpClient), logger)
}

func newParser(client catalog, logger logrus.FieldLogger) *Parser {
	return &Parser{
		client: client,
		log:    logger.WithField("component", "spotify_parser"),
	}
}

// IsValidURL reports whether the URL points at the Spotify catalog.
func (p *Parser) IsValidURL(rawURL string) bool {
	return strings.Contains(rawURL, linkDomain)
}

// LinkTypeOf classifies a link by the entity keyword in its URL path.
func (p *Parser) LinkTypeOf(rawURL string) (domain.LinkType, bool) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}

	switch {
	case strings.Contains(path, "artist"):
		return domain.LinkTypeArtist, true
	case strings.Contains(path, "album"):
		return domain.LinkTypeAlbum, true
	case strings.Contains(path, "track"):
		return domain.LinkTypeTrack, true
	}
	return 0, false
}

// CleanURL strips everything from the first '?' onward, dropping share
// trackers like ?si=... so the same link always stores the same string.
func (p *Parser) CleanURL(rawURL string) string {
	if i := strings.Index(rawURL, "?"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// EntityIDFromURL returns the catalog id, the segment after the last '/'.
func (p *Parser) EntityIDFromURL(rawURL string) string {
	return rawURL[strings.LastIndex(rawURL, "/")+1:]
}

// LinkInfo looks the entity up in the catalog and fills in its names and
// genre. Albums and tracks rarely carry genre tags themselves, so when the
// entity's own list is empty the primary artist's first genre is used
// instead; the field stays empty when the artist has none either.
func (p *Parser) LinkInfo(ctx context.Context, rawURL string, lt domain.LinkType) (domain.LinkInfo, error) {
	entityID := spot.ID(p.EntityIDFromURL(rawURL))
	log := p.log.WithFields(logrus.Fields{"entity_id": entityID, "link_type": lt.String()})
	log.Debug("Resolving link info")

	info := domain.LinkInfo{Type: lt}

	switch lt {
	case domain.LinkTypeArtist:
		artist, err := p.client.GetArtist(ctx, entityID)
		if err != nil {
			return domain.LinkInfo{}, fmt.Errorf("failed to get artist %s: %w", entityID, err)
		}
		info.Artist = artist.Name
		info.Genre = firstGenre(artist.Genres)

	case domain.LinkTypeAlbum:
		album, err := p.client.GetAlbum(ctx, entityID)
		if err != nil {
			return domain.LinkInfo{}, fmt.Errorf("failed to get album %s: %w", entityID, err)
		}
		if len(album.Artists) == 0 {
			return domain.LinkInfo{}, fmt.Errorf("album %s has no artists", entityID)
		}
		info.Album = album.Name
		info.Artist = album.Artists[0].Name
		info.Genre = firstGenre(album.Genres)
		if info.Genre == "" {
			genre, err := p.artistGenre(ctx, album.Artists[0].ID)
			if err != nil {
				return domain.LinkInfo{}, err
			}
			info.Genre = genre
		}

	case domain.LinkTypeTrack:
		track, err := p.client.GetTrack(ctx, entityID)
		if err != nil {
			return domain.LinkInfo{}, fmt.Errorf("failed to get track %s: %w", entityID, err)
		}
		if len(track.Artists) == 0 {
			return domain.LinkInfo{}, fmt.Errorf("track %s has no artists", entityID)
		}
		info.Track = track.Name
		info.Album = track.Album.Name
		info.Artist = track.Artists[0].Name
		genre, err := p.artistGenre(ctx, track.Artists[0].ID)
		if err != nil {
			return domain.LinkInfo{}, err
		}
		info.Genre = genre

	default:
		return domain.LinkInfo{}, fmt.Errorf("unsupported link type %d", lt)
	}

	return info, nil
}

// Search runs a keyword search scoped to one entity kind and returns the raw
// candidate list in catalog order.
func (p *Parser) Search(ctx context.Context, query string, et domain.EntityType) ([]domain.SearchResult, error) {
	searchType, err := searchTypeFor(et)
	if err != nil {
		return nil, err
	}

	result, err := p.client.Search(ctx, query, searchType)
	if err != nil {
		return nil, fmt.Errorf("search %q failed: %w", query, err)
	}

	var results []domain.SearchResult
	switch et {
	case domain.EntityTypeArtist:
		if result.Artists != nil {
			for _, a := range result.Artists.Artists {
				results = append(results, domain.SearchResult{ID: string(a.ID), Name: a.Name})
			}
		}
	case domain.EntityTypeAlbum:
		if result.Albums != nil {
			for _, a := range result.Albums.Albums {
				r := domain.SearchResult{ID: string(a.ID), Name: a.Name}
				if len(a.Artists) > 0 {
					r.Artist = a.Artists[0].Name
				}
				results = append(results, r)
			}
		}
	case domain.EntityTypeTrack:
		if result.Tracks != nil {
			for _, t := range result.Tracks.Tracks {
				r := domain.SearchResult{ID: string(t.ID), Name: t.Name}
				if len(t.Artists) > 0 {
					r.Artist = t.Artists[0].Name
				}
				results = append(results, r)
			}
		}
	}

	return results, nil
}

func (p *Parser) artistGenre(ctx context.Context, artistID spot.ID) (string, error) {
	artist, err := p.client.GetArtist(ctx, artistID)
	if err != nil {
		return "", fmt.Errorf("failed to get artist %s for genre fallback: %w", artistID, err)
	}
	return firstGenre(artist.Genres), nil
}

func firstGenre(genres []string) string {
	if len(genres) > 0 {
		return genres[0]
	}
	return ""
}

func searchTypeFor(et domain.EntityType) (spot.SearchType, error) {
	switch et {
	case domain.EntityTypeArtist:
		return spot.SearchTypeArtist, nil
	case domain.EntityTypeAlbum:
		return spot.SearchTypeAlbum, nil
	case domain.EntityTypeTrack:
		return spot.SearchTypeTrack, nil
	default:
		return 0, fmt.Errorf("unsupported entity type %q", et)
	}
}
