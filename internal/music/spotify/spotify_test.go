package spotify

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	spot "github.com/zmb3/spotify/v2"

	"musicshelf/internal/domain"
)

// fakeCatalog implements the catalog interface with canned entities so the
// resolution logic can be tested without hitting the Spotify API.
type fakeCatalog struct {
	artists map[spot.ID]*spot.FullArtist
	albums  map[spot.ID]*spot.FullAlbum
	tracks  map[spot.ID]*spot.FullTrack
	search  *spot.SearchResult
}

var errNotFound = errors.New("entity not found")

func (f *fakeCatalog) GetArtist(_ context.Context, id spot.ID) (*spot.FullArtist, error) {
	if a, ok := f.artists[id]; ok {
		return a, nil
	}
	return nil, errNotFound
}

func (f *fakeCatalog) GetAlbum(_ context.Context, id spot.ID, _ ...spot.RequestOption) (*spot.FullAlbum, error) {
	if a, ok := f.albums[id]; ok {
		return a, nil
	}
	return nil, errNotFound
}

func (f *fakeCatalog) GetTrack(_ context.Context, id spot.ID, _ ...spot.RequestOption) (*spot.FullTrack, error) {
	if t, ok := f.tracks[id]; ok {
		return t, nil
	}
	return nil, errNotFound
}

func (f *fakeCatalog) Search(_ context.Context, _ string, _ spot.SearchType, _ ...spot.RequestOption) (*spot.SearchResult, error) {
	if f.search == nil {
		return nil, errNotFound
	}
	return f.search, nil
}

func newTestParser(t *testing.T, c *fakeCatalog) *Parser {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	return newParser(c, log)
}

func TestParser_IsValidURL(t *testing.T) {
	p := newTestParser(t, &fakeCatalog{})

	assert.True(t, p.IsValidURL("https://open.spotify.com/album/1yXlpa0dqoQCfucRNUpb8N"))
	assert.True(t, p.IsValidURL("https://open.spotify.com/track/abc?si=xyz"))
	assert.False(t, p.IsValidURL("https://music.youtube.com/watch?v=abc"))
	assert.False(t, p.IsValidURL("https://example.com/album/123"))
	assert.False(t, p.IsValidURL("not a url at all"))
}

func TestParser_LinkTypeOf(t *testing.T) {
	p := newTestParser(t, &fakeCatalog{})

	tests := []struct {
		name string
		url  string
		want domain.LinkType
		ok   bool
	}{
		{"artist link", "https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb", domain.LinkTypeArtist, true},
		{"album link", "https://open.spotify.com/album/1yXlpa0dqoQCfucRNUpb8N", domain.LinkTypeAlbum, true},
		{"track link", "https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl", domain.LinkTypeTrack, true},
		{"playlist link", "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", 0, false},
		{"bare domain", "https://open.spotify.com/", 0, false},
		{"keyword only in query", "https://open.spotify.com/playlist/abc?seed=track", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.LinkTypeOf(tt.url)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParser_CleanURL(t *testing.T) {
	p := newTestParser(t, &fakeCatalog{})

	dirty := "https://open.spotify.com/album/1yXlpa0dqoQCfucRNUpb8N?si=GKPFOXTgRq2SLEE-ruNfZQ"
	clean := "https://open.spotify.com/album/1yXlpa0dqoQCfucRNUpb8N"

	assert.Equal(t, clean, p.CleanURL(dirty))
	// No-op without a query string, and idempotent.
	assert.Equal(t, clean, p.CleanURL(clean))
	assert.Equal(t, p.CleanURL(dirty), p.CleanURL(p.CleanURL(dirty)))
}

func TestParser_EntityIDFromURL(t *testing.T) {
	p := newTestParser(t, &fakeCatalog{})

	assert.Equal(t, "1yXlpa0dqoQCfucRNUpb8N",
		p.EntityIDFromURL("https://open.spotify.com/album/1yXlpa0dqoQCfucRNUpb8N"))
	assert.Equal(t, "4Z8W4fKeB5YxbusRsdQVPb",
		p.EntityIDFromURL("https://open.spotify.com/artist/4Z8W4fKeB5YxbusRsdQVPb"))
}

func TestParser_LinkInfo_Artist(t *testing.T) {
	c := &fakeCatalog{
		artists: map[spot.ID]*spot.FullArtist{
			"artist1": {
				SimpleArtist: spot.SimpleArtist{ID: "artist1", Name: "Boards of Canada"},
				Genres:       []string{"idm", "downtempo"},
			},
		},
	}
	p := newTestParser(t, c)

	info, err := p.LinkInfo(context.Background(), "https://open.spotify.com/artist/artist1", domain.LinkTypeArtist)
	require.NoError(t, err)

	assert.Equal(t, domain.LinkTypeArtist, info.Type)
	assert.Equal(t, "Boards of Canada", info.Artist)
	assert.Equal(t, "idm", info.Genre, "first genre tag wins")
	assert.Empty(t, info.Album)
	assert.Empty(t, info.Track)
}

func TestParser_LinkInfo_AlbumGenreFallback(t *testing.T) {
	c := &fakeCatalog{
		artists: map[spot.ID]*spot.FullArtist{
			"artist1": {
				SimpleArtist: spot.SimpleArtist{ID: "artist1", Name: "Kraftwerk"},
				Genres:       []string{"electro", "krautrock"},
			},
		},
		albums: map[spot.ID]*spot.FullAlbum{
			"album1": {
				SimpleAlbum: spot.SimpleAlbum{
					ID:      "album1",
					Name:    "Computer World",
					Artists: []spot.SimpleArtist{{ID: "artist1", Name: "Kraftwerk"}},
				},
				// Albums rarely carry genres; empty triggers the artist fallback.
			},
		},
	}
	p := newTestParser(t, c)

	info, err := p.LinkInfo(context.Background(), "https://open.spotify.com/album/album1", domain.LinkTypeAlbum)
	require.NoError(t, err)

	assert.Equal(t, "Computer World", info.Album)
	assert.Equal(t, "Kraftwerk", info.Artist)
	assert.Equal(t, "electro", info.Genre, "falls back to the primary artist's first genre")
}

func TestParser_LinkInfo_AlbumOwnGenreWins(t *testing.T) {
	c := &fakeCatalog{
		albums: map[spot.ID]*spot.FullAlbum{
			"album1": {
				SimpleAlbum: spot.SimpleAlbum{
					ID:      "album1",
					Name:    "Discovery",
					Artists: []spot.SimpleArtist{{ID: "artist1", Name: "Daft Punk"}},
				},
				Genres: []string{"french house"},
			},
		},
	}
	p := newTestParser(t, c)

	info, err := p.LinkInfo(context.Background(), "https://open.spotify.com/album/album1", domain.LinkTypeAlbum)
	require.NoError(t, err)

	// No artist lookup needed when the album has its own genre tags.
	assert.Equal(t, "french house", info.Genre)
}

func TestParser_LinkInfo_TrackResolvesThroughArtist(t *testing.T) {
	c := &fakeCatalog{
		artists: map[spot.ID]*spot.FullArtist{
			"artist1": {
				SimpleArtist: spot.SimpleArtist{ID: "artist1", Name: "Burial"},
				Genres:       []string{"dubstep"},
			},
		},
		tracks: map[spot.ID]*spot.FullTrack{
			"track1": {
				SimpleTrack: spot.SimpleTrack{
					ID:      "track1",
					Name:    "Archangel",
					Artists: []spot.SimpleArtist{{ID: "artist1", Name: "Burial"}},
				},
				Album: spot.SimpleAlbum{Name: "Untrue"},
			},
		},
	}
	p := newTestParser(t, c)

	info, err := p.LinkInfo(context.Background(), "https://open.spotify.com/track/track1", domain.LinkTypeTrack)
	require.NoError(t, err)

	assert.Equal(t, "Archangel", info.Track)
	assert.Equal(t, "Untrue", info.Album)
	assert.Equal(t, "Burial", info.Artist)
	assert.Equal(t, "dubstep", info.Genre)
}

func TestParser_LinkInfo_GenreAbsentEverywhere(t *testing.T) {
	c := &fakeCatalog{
		artists: map[spot.ID]*spot.FullArtist{
			"artist1": {SimpleArtist: spot.SimpleArtist{ID: "artist1", Name: "Obscure Act"}},
		},
		albums: map[spot.ID]*spot.FullAlbum{
			"album1": {
				SimpleAlbum: spot.SimpleAlbum{
					ID:      "album1",
					Name:    "Demo Tape",
					Artists: []spot.SimpleArtist{{ID: "artist1", Name: "Obscure Act"}},
				},
			},
		},
	}
	p := newTestParser(t, c)

	info, err := p.LinkInfo(context.Background(), "https://open.spotify.com/album/album1", domain.LinkTypeAlbum)
	require.NoError(t, err)
	assert.Empty(t, info.Genre, "genre stays absent when the artist has no tags either")
}

func TestParser_LinkInfo_UpstreamErrorPropagates(t *testing.T) {
	p := newTestParser(t, &fakeCatalog{})

	_, err := p.LinkInfo(context.Background(), "https://open.spotify.com/track/missing", domain.LinkTypeTrack)
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotFound)
}

func TestParser_Search(t *testing.T) {
	c := &fakeCatalog{
		search: &spot.SearchResult{
			Tracks: &spot.FullTrackPage{
				Tracks: []spot.FullTrack{
					{
						SimpleTrack: spot.SimpleTrack{
							ID:      "track1",
							Name:    "One More Time",
							Artists: []spot.SimpleArtist{{ID: "artist1", Name: "Daft Punk"}},
						},
					},
				},
			},
		},
	}
	p := newTestParser(t, c)

	results, err := p.Search(context.Background(), "one more time", domain.EntityTypeTrack)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "track1", results[0].ID)
	assert.Equal(t, "One More Time", results[0].Name)
	assert.Equal(t, "Daft Punk", results[0].Artist)

	_, err = p.Search(context.Background(), "anything", domain.EntityType("podcast"))
	assert.Error(t, err, "unsupported entity kinds are rejected before hitting the API")
}
