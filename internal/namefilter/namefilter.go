// Package namefilter validates hero names.
package namefilter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
)

// DefaultMaxLength bounds a hero name when the config leaves it unset.
const DefaultMaxLength = 24

// Config holds the name filter configuration
type Config struct {
	MaxLength   int      `yaml:"max_length"`
	Enabled     bool     `yaml:"enabled"`
	BannedWords []string `yaml:"banned_words"`
	BannedNames []string `yaml:"banned_names"`
}

// NameFilter checks hero names for length, characters and banned words.
type NameFilter struct {
	maxLength   int
	enabled     bool
	bannedWords []string // Lowercase banned words (partial match)
	bannedNames []string // Lowercase banned names (exact match)
}

// New creates a new NameFilter from a Config. A nil config still enforces the
// length and character rules.
func New(cfg *Config) *NameFilter {
	if cfg == nil {
		return &NameFilter{maxLength: DefaultMaxLength}
	}

	nf := &NameFilter{
		maxLength:   cfg.MaxLength,
		enabled:     cfg.Enabled,
		bannedWords: make([]string, 0, len(cfg.BannedWords)),
		bannedNames: make([]string, 0, len(cfg.BannedNames)),
	}
	if nf.maxLength <= 0 {
		nf.maxLength = DefaultMaxLength
	}

	// Store lowercase versions for case-insensitive matching
	for _, word := range cfg.BannedWords {
		if word = strings.TrimSpace(word); word != "" {
			nf.bannedWords = append(nf.bannedWords, strings.ToLower(word))
		}
	}
	for _, name := range cfg.BannedNames {
		if name = strings.TrimSpace(name); name != "" {
			nf.bannedNames = append(nf.bannedNames, strings.ToLower(name))
		}
	}

	return nf
}

// MaxLength returns the longest accepted name in characters.
func (nf *NameFilter) MaxLength() int { return nf.maxLength }

// Check normalises a name and validates it. Runs of whitespace collapse to a
// single space. An empty name is accepted; the game then names the hero after
// the class.
func (nf *NameFilter) Check(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", nil
	}

	if n := utf8.RuneCountInString(name); n > nf.maxLength {
		return "", gameerr.IllegalActionf("hero names are at most %d characters, got %d", nf.maxLength, n)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' {
			return "", gameerr.IllegalActionf("hero names may not contain %q", r)
		}
	}

	if !nf.enabled {
		return name, nil
	}

	nameLower := strings.ToLower(name)
	for _, banned := range nf.bannedNames {
		if nameLower == banned {
			return "", gameerr.IllegalAction("that name is not allowed")
		}
	}
	for _, word := range nf.bannedWords {
		if strings.Contains(nameLower, word) {
			return "", gameerr.IllegalAction("that name contains a word that is not allowed")
		}
	}

	return name, nil
}
