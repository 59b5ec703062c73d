package ruleset

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content/rules.yaml
var defaultRulesYAML []byte

// Parse decodes a rule table from YAML. Mechanics omitted from the document keep
// their DefaultMechanics values; unknown fields are rejected.
//
// Postcondition: Returns a valid *Rules or a parse/validation error.
func Parse(data []byte) (*Rules, error) {
	def := Definition{Mechanics: DefaultMechanics()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing rule table: %w", err)
	}
	return New(def)
}

// LoadFile reads and parses the rule table at path.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a valid *Rules or an error.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return r, nil
}

// Default returns the built-in rule table. It panics if the embedded table is
// invalid, which can only happen if the binary was built from a broken tree.
//
// Postcondition: Returns a non-nil *Rules.
func Default() *Rules {
	r, err := Parse(defaultRulesYAML)
	if err != nil {
		panic("ruleset: embedded rule table is invalid: " + err.Error())
	}
	return r
}
