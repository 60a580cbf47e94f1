package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RicherTunes/brainarr/internal/library"
	"github.com/RicherTunes/brainarr/internal/styles"
)

// snapshot is the YAML representation of a library for offline planning.
type snapshot struct {
	ProfileRecord struct {
		TotalTracks    int      `yaml:"total_tracks"`
		DominantStyles []string `yaml:"dominant_styles"`
	} `yaml:"profile"`

	ArtistRecords []artistRecord `yaml:"artists"`
	AlbumRecords  []albumRecord  `yaml:"albums"`

	// Similar is an optional catalog similarity table: slug -> similars.
	Similar map[string][]similarRecord `yaml:"similar"`
}

type artistRecord struct {
	ID         int64     `yaml:"id"`
	Name       string    `yaml:"name"`
	Added      time.Time `yaml:"added"`
	AlbumCount int       `yaml:"album_count"`
	Styles     []string  `yaml:"styles"`
}

type albumRecord struct {
	ID         int64     `yaml:"id"`
	ArtistID   int64     `yaml:"artist_id"`
	ArtistName string    `yaml:"artist_name"`
	Title      string    `yaml:"title"`
	Year       int       `yaml:"year"`
	Added      time.Time `yaml:"added"`
	Styles     []string  `yaml:"styles"`
}

type similarRecord struct {
	Slug       string  `yaml:"slug"`
	Similarity float64 `yaml:"similarity"`
}

func loadSnapshot(path string) (*snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library snapshot: %w", err)
	}
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing library snapshot: %w", err)
	}
	return &snap, nil
}

func (s *snapshot) Artists() []library.Artist {
	out := make([]library.Artist, 0, len(s.ArtistRecords))
	for _, r := range s.ArtistRecords {
		out = append(out, library.Artist{
			ID:         r.ID,
			Name:       r.Name,
			Added:      r.Added,
			AlbumCount: r.AlbumCount,
			Styles:     r.Styles,
		})
	}
	return out
}

func (s *snapshot) Albums() []library.Album {
	out := make([]library.Album, 0, len(s.AlbumRecords))
	for _, r := range s.AlbumRecords {
		out = append(out, library.Album{
			ID:         r.ID,
			ArtistID:   r.ArtistID,
			ArtistName: r.ArtistName,
			Title:      r.Title,
			Year:       r.Year,
			Added:      r.Added,
			Styles:     r.Styles,
		})
	}
	return out
}

func (s *snapshot) Profile() *library.Profile {
	return &library.Profile{
		TotalArtists:   len(s.ArtistRecords),
		TotalAlbums:    len(s.AlbumRecords),
		TotalTracks:    s.ProfileRecord.TotalTracks,
		DominantStyles: s.ProfileRecord.DominantStyles,
	}
}

func (s *snapshot) StyleContext() *library.StyleContext {
	return library.BuildStyleContext(s.Artists(), s.Albums())
}

// Catalog builds an identity catalog from every slug the snapshot mentions,
// plus the optional similarity table.
func (s *snapshot) Catalog() styles.Catalog {
	seen := make(map[string]struct{})
	var slugs []string
	add := func(list []string) {
		for _, slug := range list {
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			slugs = append(slugs, slug)
		}
	}
	for _, a := range s.ArtistRecords {
		add(a.Styles)
	}
	for _, al := range s.AlbumRecords {
		add(al.Styles)
	}
	add(s.ProfileRecord.DominantStyles)

	entries := make([]styles.Entry, 0, len(slugs))
	for _, slug := range slugs {
		entries = append(entries, styles.Entry{Name: slug, Slug: slug})
	}

	similar := make(map[string][]styles.ScoredSlug, len(s.Similar))
	for slug, recs := range s.Similar {
		for _, r := range recs {
			similar[slug] = append(similar[slug], styles.ScoredSlug{Slug: r.Slug, Similarity: r.Similarity})
		}
	}

	return styles.NewStaticCatalog(entries, similar)
}
