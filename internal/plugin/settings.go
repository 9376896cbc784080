package plugin

import (
	"strconv"
	"strings"
)

// Settings holds the resolved field values handed to a plugin invocation.
type Settings map[string]string

// Get returns the trimmed value for a field, or "" when absent.
func (s Settings) Get(name string) string {
	return strings.TrimSpace(s[name])
}

// GetDefault returns the trimmed value for a field, falling back when blank.
func (s Settings) GetDefault(name, fallback string) string {
	if v := s.Get(name); v != "" {
		return v
	}
	return fallback
}

// Bool interprets common affirmative spellings ("yes", "true", "1", "on").
func (s Settings) Bool(name string) bool {
	switch strings.ToLower(s.Get(name)) {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}

// Float parses a field as a float, returning fallback on blank or bad input.
func (s Settings) Float(name string, fallback float64) float64 {
	v := s.Get(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// Clone returns an independent copy of the settings map.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
