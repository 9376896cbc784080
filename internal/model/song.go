package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Song is the canonical unit moved between services. Source-specific
// identifiers live in IDs, keyed by the owning plugin name, so downstream
// outputs keep every id they need regardless of which input found the track.
type Song struct {
	Title    string            `json:"title" yaml:"title"`
	Artist   string            `json:"artist" yaml:"artist"`
	Artists  []string          `json:"artists,omitempty" yaml:"artists,omitempty"`
	Album    string            `json:"album,omitempty" yaml:"album,omitempty"`
	Date     string            `json:"date,omitempty" yaml:"date,omitempty"`
	ISRC     string            `json:"isrc,omitempty" yaml:"isrc,omitempty"`
	Location string            `json:"location,omitempty" yaml:"location,omitempty"`
	IDs      map[string]string `json:"ids,omitempty" yaml:"ids,omitempty"`
}

// foldTransform strips diacritic marks after decomposition and recomposes.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldString(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// Key returns the identity key for duplicate detection. Two songs are the
// same track when title and artist match under case- and diacritic-
// insensitive comparison.
func (s Song) Key() string {
	return foldString(s.Title) + "\x00" + foldString(s.Artist)
}

// Same reports whether other refers to the same track as s.
func (s Song) Same(other Song) bool {
	return s.Key() == other.Key()
}

// MergeIDs unions source identifiers from other into s. Existing entries
// win so the first plugin to report an id for a service keeps it.
func (s *Song) MergeIDs(other Song) {
	if len(other.IDs) == 0 {
		return
	}
	if s.IDs == nil {
		s.IDs = make(map[string]string, len(other.IDs))
	}
	for source, id := range other.IDs {
		if _, exists := s.IDs[source]; !exists {
			s.IDs[source] = id
		}
	}
}

// Clone returns a deep copy of the song.
func (s Song) Clone() Song {
	out := s
	if s.Artists != nil {
		out.Artists = append([]string(nil), s.Artists...)
	}
	if s.IDs != nil {
		out.IDs = make(map[string]string, len(s.IDs))
		for k, v := range s.IDs {
			out.IDs[k] = v
		}
	}
	return out
}
