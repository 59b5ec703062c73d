package ruleset

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is a move's damage class.
type Category string

const (
	Physical Category = "physical"
	Special  Category = "special"
	Status   Category = "status"
)

// Valid reports whether c is one of Physical, Special, or Status.
func (c Category) Valid() bool {
	switch c {
	case Physical, Special, Status:
		return true
	}
	return false
}

// Move is one entry of the move catalog.
type Move struct {
	// Key is the normalised catalog key, e.g. "thunder_shock".
	Key string `yaml:"-"`
	// Name is the display name; derived from Key when omitted.
	Name     string   `yaml:"name"`
	Power    int      `yaml:"power"`
	Type     string   `yaml:"type"`
	Accuracy int      `yaml:"accuracy"`
	Category Category `yaml:"category"`
	// Heals marks recovery moves that restore HP instead of dealing damage.
	Heals bool `yaml:"heals"`
}

// Validate checks that the move satisfies catalog invariants.
//
// Postcondition: Returns nil iff Power >= 0, Type is non-empty, Accuracy is in
// [1, 100], Category is valid, and healing moves are status moves.
func (m Move) Validate() error {
	if m.Power < 0 {
		return fmt.Errorf("move %q: power must be >= 0, got %d", m.Key, m.Power)
	}
	if m.Type == "" {
		return fmt.Errorf("move %q: type must not be empty", m.Key)
	}
	if m.Accuracy < 1 || m.Accuracy > 100 {
		return fmt.Errorf("move %q: accuracy must be 1-100, got %d", m.Key, m.Accuracy)
	}
	if !m.Category.Valid() {
		return fmt.Errorf("move %q: category must be one of [physical, special, status], got %q", m.Key, m.Category)
	}
	if m.Heals && m.Category != Status {
		return fmt.Errorf("move %q: healing moves must have category status", m.Key)
	}
	return nil
}

// IsStatus reports whether the move deals no direct damage.
func (m Move) IsStatus() bool { return m.Power == 0 || m.Category == Status }

// NormalizeKey canonicalises a move key: lower case, with spaces and hyphens
// folded to underscores. "Thunder Shock" and "thunder-shock" both become "thunder_shock".
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(k)
}

// NormalizeType canonicalises an elemental type name.
func NormalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// DisplayName renders a catalog key for humans: "thunder_shock" → "Thunder Shock".
func DisplayName(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(NormalizeKey(key), "_", " "))
}
