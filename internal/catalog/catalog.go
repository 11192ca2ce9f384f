package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"moyen/internal/domain"
)

var ErrDuplicateTag = errors.New("duplicate intent tag")

// Catalog is the read-only intent table. Safe for concurrent reads.
type Catalog struct {
	intents []domain.Intent
	byTag   map[string]int
}

type document struct {
	Intents []domain.Intent `json:"intents" yaml:"intents"`
}

// Load reads a catalog document. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return New(doc.Intents)
}

func New(intents []domain.Intent) (*Catalog, error) {
	c := &Catalog{
		intents: make([]domain.Intent, 0, len(intents)),
		byTag:   make(map[string]int, len(intents)),
	}
	for _, in := range intents {
		tag := strings.TrimSpace(in.Tag)
		if tag == "" {
			return nil, fmt.Errorf("intent without tag")
		}
		if _, ok := c.byTag[tag]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTag, tag)
		}
		in.Tag = tag
		in.Patterns = append([]string{}, in.Patterns...)
		in.Responses = append([]string{}, in.Responses...)
		c.byTag[tag] = len(c.intents)
		c.intents = append(c.intents, in)
	}
	return c, nil
}

// Responses returns the reply candidates for tag and whether the tag exists.
func (c *Catalog) Responses(tag string) ([]string, bool) {
	idx, ok := c.byTag[tag]
	if !ok {
		return nil, false
	}
	return append([]string{}, c.intents[idx].Responses...), true
}

func (c *Catalog) Has(tag string) bool {
	_, ok := c.byTag[tag]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.intents)
}

func (c *Catalog) Tags() []string {
	out := make([]string, 0, len(c.intents))
	for _, in := range c.intents {
		out = append(out, in.Tag)
	}
	return out
}

// Validate checks that every tag a classifier can emit is either in the
// catalog or one of the reserved adapter tags.
func (c *Catalog) Validate(classes []string) error {
	var missing []string
	for _, tag := range classes {
		if tag == domain.TagTime || tag == domain.TagWeather {
			continue
		}
		if !c.Has(tag) {
			missing = append(missing, tag)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("classifier tags missing from catalog: %s", strings.Join(missing, ", "))
	}
	return nil
}
