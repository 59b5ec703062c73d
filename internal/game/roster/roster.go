// Package roster provides combatant templates by name from YAML files.
package roster

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/moveset"
	"github.com/cory-johannsen/battlesim/internal/game/ruleset"
)

//go:embed content/*.yaml
var defaultContent embed.FS

// ErrNotFound is returned by Lookup when no combatant has the requested name.
var ErrNotFound = errors.New("combatant not found")

// Provider looks up combatant templates by name.
type Provider interface {
	// Lookup returns the template for name, or an error wrapping ErrNotFound.
	Lookup(name string) (combat.Template, error)
}

// Validate checks the shape of a template read from a roster file.
//
// Postcondition: Returns nil iff Name is non-empty, there are one or two
// types, and no stat is negative.
func Validate(t combat.Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("combatant: name must not be empty")
	}
	if len(t.Types) < 1 || len(t.Types) > 2 {
		return fmt.Errorf("combatant %q: must have 1 or 2 types, got %d", t.Name, len(t.Types))
	}
	s := t.Stats
	for _, f := range []struct {
		name string
		v    int
	}{
		{"hp", s.HP}, {"attack", s.Attack}, {"defense", s.Defense},
		{"speed", s.Speed}, {"special_attack", s.SpecialAttack}, {"special_defense", s.SpecialDefense},
	} {
		if f.v < 0 {
			return fmt.Errorf("combatant %q: %s must be >= 0, got %d", t.Name, f.name, f.v)
		}
	}
	return nil
}

// LoadTemplatesFromBytes parses every YAML document in data as a template.
//
// Postcondition: Returns the validated templates in document order, or an error
// on the first parse or validation failure.
func LoadTemplatesFromBytes(data []byte) ([]combat.Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []combat.Template
	for {
		var t combat.Template
		err := dec.Decode(&t)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing combatant YAML: %w", err)
		}
		if err := Validate(t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Roster is an in-memory Provider. Every template it returns carries a full
// move set from its Resolver.
//
// Invariant: keys of byName are normalised names.
type Roster struct {
	byName map[string]combat.Template
}

// New indexes templates by name, completing each move set with resolver.
//
// Precondition: resolver must be non-nil.
// Postcondition: Returns an error if two templates share a normalised name.
func New(templates []combat.Template, resolver *moveset.Resolver) (*Roster, error) {
	if resolver == nil {
		panic("roster.New: resolver must not be nil")
	}
	r := &Roster{byName: make(map[string]combat.Template, len(templates))}
	for _, t := range templates {
		key := normalizeName(t.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate combatant %q", t.Name)
		}
		r.byName[key] = resolver.Fill(t)
	}
	return r, nil
}

// LoadFS reads all *.yaml files in dir of fsys.
//
// Postcondition: Returns a Roster or an error naming the first bad file.
func LoadFS(fsys fs.FS, dir string, resolver *moveset.Resolver) (*Roster, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading roster dir %q: %w", dir, err)
	}

	var templates []combat.Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		ts, err := LoadTemplatesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", p, err)
		}
		templates = append(templates, ts...)
	}
	return New(templates, resolver)
}

// LoadDir reads all *.yaml files in the directory dir.
//
// Precondition: dir must be a readable directory.
func LoadDir(dir string, resolver *moveset.Resolver) (*Roster, error) {
	return LoadFS(os.DirFS(dir), ".", resolver)
}

// Default returns the built-in roster with move sets resolved against rules.
func Default(rules *ruleset.Rules) (*Roster, error) {
	resolver, err := moveset.Default(rules)
	if err != nil {
		return nil, err
	}
	return Builtin(resolver)
}

// Builtin returns the built-in roster with move sets filled by resolver.
func Builtin(resolver *moveset.Resolver) (*Roster, error) {
	return LoadFS(defaultContent, "content", resolver)
}

// Lookup returns a copy of the template registered under name. Matching ignores
// case and surrounding whitespace.
//
// Postcondition: On success the template has exactly moveset.Size moves.
func (r *Roster) Lookup(name string) (combat.Template, error) {
	t, ok := r.byName[normalizeName(name)]
	if !ok {
		return combat.Template{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return t.Clone(), nil
}

// Names returns the registered combatant names, sorted.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.byName))
	for _, t := range r.byName {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered combatants.
func (r *Roster) Len() int { return len(r.byName) }

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
