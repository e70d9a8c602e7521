// Package catalog holds the game content: falling object archetypes, writing
// prompts and the keyword pool. The built-in catalog is embedded; a YAML file
// can replace any of its sections.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/catalog.yaml
var defaultCatalogYAML []byte

// FallbackPrompt is used when the catalog has no prompts.
const FallbackPrompt = "Write a short, serious update about your work."

// Archetype describes a UI mockup that can fall on the player.
// The simulation only reads Size; the rest is presentation.
type Archetype struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Kind  string `yaml:"kind"`
	Size  string `yaml:"size"`
	Blurb string `yaml:"blurb"`
}

// Keyword is a buzzword the player is asked to use, with its display color.
type Keyword struct {
	ID    string `yaml:"id"`
	Word  string `yaml:"word"`
	Color string `yaml:"color"`
}

// Catalog is the full content set for a run.
type Catalog struct {
	Archetypes []Archetype `yaml:"archetypes"`
	Prompts    []string    `yaml:"prompts"`
	Keywords   []Keyword   `yaml:"keywords"`
}

// ErrTooFewKeywords is returned when the keyword pool cannot fill a challenge.
var ErrTooFewKeywords = errors.New("catalog: too few keywords")

var validSizes = map[string]bool{"small": true, "medium": true, "large": true}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		// The embedded file is checked by tests.
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. Sections the file leaves empty keep the
// embedded defaults. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read %s: %w", path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to parse %s: %w", path, err)
	}

	c := Default()
	if len(override.Archetypes) > 0 {
		c.Archetypes = override.Archetypes
	}
	if len(override.Prompts) > 0 {
		c.Prompts = override.Prompts
	}
	if len(override.Keywords) > 0 {
		c.Keywords = override.Keywords
	}
	return c, nil
}

// Parse decodes and validates catalog YAML. Empty sections are allowed.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks archetype sizes and identifier uniqueness.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, a := range c.Archetypes {
		if a.ID == "" {
			return fmt.Errorf("catalog: archetype %q has no id", a.Title)
		}
		if seen["a:"+a.ID] {
			return fmt.Errorf("catalog: duplicate archetype id %q", a.ID)
		}
		seen["a:"+a.ID] = true
		if !validSizes[a.Size] {
			return fmt.Errorf("catalog: archetype %q has unknown size %q", a.ID, a.Size)
		}
	}
	for _, k := range c.Keywords {
		if k.ID == "" || k.Word == "" {
			return fmt.Errorf("catalog: keyword needs both id and word, got %+v", k)
		}
		if seen["k:"+k.ID] {
			return fmt.Errorf("catalog: duplicate keyword id %q", k.ID)
		}
		seen["k:"+k.ID] = true
	}
	return nil
}

// CheckKeywords reports an error wrapping ErrTooFewKeywords when the pool
// holds fewer than n keywords.
func (c *Catalog) CheckKeywords(n int) error {
	if len(c.Keywords) < n {
		return fmt.Errorf("%w: have %d, need %d", ErrTooFewKeywords, len(c.Keywords), n)
	}
	return nil
}

// PickArchetype returns a uniformly chosen archetype.
// ok is false when the catalog has none.
func (c *Catalog) PickArchetype(rng *rand.Rand) (a Archetype, ok bool) {
	if len(c.Archetypes) == 0 {
		return Archetype{}, false
	}
	return c.Archetypes[rng.Intn(len(c.Archetypes))], true
}

// PickPrompt returns a uniformly chosen prompt, or FallbackPrompt.
func (c *Catalog) PickPrompt(rng *rand.Rand) string {
	if len(c.Prompts) == 0 {
		return FallbackPrompt
	}
	return c.Prompts[rng.Intn(len(c.Prompts))]
}

// SampleKeywords draws n distinct keywords without replacement.
// Fewer are returned when the pool is smaller than n.
func (c *Catalog) SampleKeywords(rng *rand.Rand, n int) []Keyword {
	if n > len(c.Keywords) {
		n = len(c.Keywords)
	}
	if n <= 0 {
		return nil
	}
	perm := rng.Perm(len(c.Keywords))
	out := make([]Keyword, n)
	for i := range out {
		out[i] = c.Keywords[perm[i]]
	}
	return out
}

// Words returns the keyword strings in order.
func Words(kws []Keyword) []string {
	words := make([]string, len(kws))
	for i, k := range kws {
		words[i] = k.Word
	}
	return words
}
