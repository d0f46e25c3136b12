// Package archetype loads per-format deck archetype catalogs: labeled
// deck strategies with their identifying cards and meta share, used by
// the opponent modeling engine.
package archetype

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Entry describes one archetype in a format's metagame.
type Entry struct {
	Deck           string   `yaml:"deck"`
	Archetype      string   `yaml:"archetype"`
	KeyCards       []string `yaml:"key_cards"`
	SecondaryCards []string `yaml:"secondary_cards"`
	MetaPercentage float64  `yaml:"meta_percentage"`
}

// Catalog is the archetype catalog for one format. Entries keep their
// declaration order; ties in meta share resolve to the earlier entry.
type Catalog struct {
	Format  string
	Entries []Entry
}

// ByDeck returns the entry for a deck identifier.
func (c *Catalog) ByDeck(deck string) (Entry, bool) {
	for _, entry := range c.Entries {
		if entry.Deck == deck {
			return entry, true
		}
	}
	return Entry{}, false
}

// TopMetaEntry returns the entry with the highest meta percentage, or
// false for an empty catalog.
func (c *Catalog) TopMetaEntry() (Entry, bool) {
	if len(c.Entries) == 0 {
		return Entry{}, false
	}
	best := c.Entries[0]
	for _, entry := range c.Entries[1:] {
		if entry.MetaPercentage > best.MetaPercentage {
			best = entry
		}
	}
	return best, true
}

type catalogFile struct {
	Decks []Entry `yaml:"decks"`
}

// Store loads catalogs from YAML files, one per format, under a base
// directory. Loaded catalogs are cached; Reload discards the cache so
// the next Load re-reads the file. The store is constructed once and
// passed by reference to every consumer.
type Store struct {
	dir    string
	logger *zap.Logger
	cache  map[string]*Catalog
}

// NewStore creates a catalog store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]*Catalog),
	}
}

// Load returns the catalog for a format. A missing or malformed file is
// an error; match setup treats it as fatal.
func (s *Store) Load(format string) (*Catalog, error) {
	if catalog, ok := s.cache[format]; ok {
		return catalog, nil
	}

	path := filepath.Join(s.dir, format+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archetype: reading catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("archetype: parsing catalog %s: %w", path, err)
	}

	catalog := &Catalog{Format: format, Entries: file.Decks}
	s.cache[format] = catalog

	s.logger.Info("loaded archetype catalog",
		zap.String("format", format),
		zap.Int("entries", len(catalog.Entries)),
	)
	return catalog, nil
}

// Reload discards the cached catalog for a format; empty discards all.
func (s *Store) Reload(format string) {
	if format == "" {
		s.cache = make(map[string]*Catalog)
		return
	}
	delete(s.cache, format)
}
