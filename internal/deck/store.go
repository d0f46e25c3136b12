package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/card"
)

// ErrMalformed indicates a deck file could not be decoded. It is never
// coerced into an empty deck.
var ErrMalformed = errors.New("deck: malformed deck file")

// schemaVersion is written into saved deck metadata.
const schemaVersion = "1.1"

// Metadata describes a saved deck file.
type Metadata struct {
	Created    time.Time `json:"created"`
	TotalCards int       `json:"total_cards"`
	Version    string    `json:"version"`
	DeckName   string    `json:"deck_name"`
}

type deckFile struct {
	Cards    []*card.Card `json:"cards"`
	Metadata Metadata     `json:"metadata"`
}

// Store persists decks as JSON under dir/<format>/<name>.json.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a deck store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// SaveDeck writes the deck with metadata.
func (s *Store) SaveDeck(cards []*card.Card, name, format string) error {
	dir := filepath.Join(s.dir, format)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("deck: creating deck dir: %w", err)
	}

	file := deckFile{
		Cards: cards,
		Metadata: Metadata{
			Created:    time.Now().UTC(),
			TotalCards: len(cards),
			Version:    schemaVersion,
			DeckName:   name,
		},
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("deck: encoding %q: %w", name, err)
	}
	if err := os.WriteFile(s.deckPath(name, format), data, 0o644); err != nil {
		return fmt.Errorf("deck: writing %q: %w", name, err)
	}

	s.logger.Info("saved deck",
		zap.String("deck", name),
		zap.String("format", format),
		zap.Int("cards", len(cards)),
	)
	return nil
}

// LoadDeck reads a saved deck. A missing file or corrupt JSON is an
// error distinguishable from an empty deck.
func (s *Store) LoadDeck(name, format string) ([]*card.Card, error) {
	path := s.deckPath(name, format)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deck: reading %q: %w", name, err)
	}

	var file deckFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if file.Cards == nil {
		return nil, fmt.Errorf("%w: %s: missing cards key", ErrMalformed, path)
	}

	s.logger.Info("loaded deck",
		zap.String("deck", name),
		zap.String("format", format),
		zap.Int("cards", len(file.Cards)),
		zap.Time("created", file.Metadata.Created),
	)
	return file.Cards, nil
}

func (s *Store) deckPath(name, format string) string {
	return filepath.Join(s.dir, format, name+".json")
}
