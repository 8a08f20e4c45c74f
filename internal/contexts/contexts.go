// Package contexts holds the relationship contexts a user can declare about a
// target handle, the question asked for each, and the supported networks.
// The tables are embedded YAML, parsed once at init.
package contexts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/Milo-adonos/SilentView/internal/pkg/errors"
)

type Type string

const (
	ExCrush   Type = "ex_crush"
	Friend    Type = "friend"
	Business  Type = "business"
	Curiosity Type = "curiosity"
)

type Network string

const (
	TikTok    Network = "tiktok"
	Instagram Network = "instagram"
)

type TeaserSignals struct {
	Observer   string `yaml:"observer" json:"observer"`
	Recurring  string `yaml:"recurring" json:"recurring"`
	KeyMoment  string `yaml:"key_moment" json:"keyMoment"`
	Suspicious string `yaml:"suspicious" json:"suspicious"`
}

type ResultTexts struct {
	Title    string        `yaml:"title" json:"title"`
	Subtitle string        `yaml:"subtitle" json:"subtitle"`
	Signals  TeaserSignals `yaml:"signals" json:"signals"`
}

type Definition struct {
	Value    Type        `yaml:"value" json:"value"`
	Label    string      `yaml:"label" json:"label"`
	Icon     string      `yaml:"icon" json:"icon"`
	Question string      `yaml:"question" json:"question"`
	Answers  []string    `yaml:"answers" json:"options"`
	Result   ResultTexts `yaml:"result" json:"result"`
}

// HasAnswer reports whether answer is one of the definition's options.
func (d Definition) HasAnswer(answer string) bool {
	for _, a := range d.Answers {
		if a == answer {
			return true
		}
	}
	return false
}

type NetworkDefinition struct {
	Value Network `yaml:"value" json:"value"`
	Label string  `yaml:"label" json:"label"`
	Style string  `yaml:"style" json:"style"`
}

type document struct {
	Networks []NetworkDefinition `yaml:"networks"`
	Contexts []Definition        `yaml:"contexts"`
}

//go:embed contexts.yaml
var rawTables []byte

var (
	definitions []Definition
	byType      map[Type]Definition
	networks    []NetworkDefinition
	byNetwork   map[Network]NetworkDefinition
)

func init() {
	var doc document
	if err := yaml.Unmarshal(rawTables, &doc); err != nil {
		panic(fmt.Sprintf("contexts: parse embedded tables: %v", err))
	}
	definitions = doc.Contexts
	byType = make(map[Type]Definition, len(doc.Contexts))
	for _, d := range doc.Contexts {
		byType[d.Value] = d
	}
	networks = doc.Networks
	byNetwork = make(map[Network]NetworkDefinition, len(doc.Networks))
	for _, n := range doc.Networks {
		byNetwork[n.Value] = n
	}
}

// All returns the context definitions in display order.
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

func Networks() []NetworkDefinition {
	out := make([]NetworkDefinition, len(networks))
	copy(out, networks)
	return out
}

func Lookup(t Type) (Definition, bool) {
	d, ok := byType[t]
	return d, ok
}

func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	if _, ok := byType[t]; !ok {
		return "", fmt.Errorf("unknown context type %q: %w", s, pkgerrors.ErrInvalidArgument)
	}
	return t, nil
}

func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := byNetwork[n]; !ok {
		return "", fmt.Errorf("unknown network %q: %w", s, pkgerrors.ErrInvalidArgument)
	}
	return n, nil
}

// NetworkStyle resolves the style token for a network, "slate" when unknown.
func NetworkStyle(n Network) string {
	if d, ok := byNetwork[n]; ok {
		return d.Style
	}
	return "slate"
}

// NormalizeHandle trims whitespace and a single leading '@'.
func NormalizeHandle(raw string) string {
	h := strings.TrimSpace(raw)
	h = strings.TrimPrefix(h, "@")
	return strings.TrimSpace(h)
}
