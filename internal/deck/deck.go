// Package deck builds and persists decklists. Deck construction pulls
// card definitions from an external catalog; persistence is a JSON
// schema with cards plus metadata.
package deck

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/duelforge/duelforge/internal/card"
)

// Catalog is the external card catalog deck construction depends on.
// A lookup failure is fatal to deck construction.
type Catalog interface {
	FetchCard(ctx context.Context, name string) (*card.Card, error)
}

// ParseDecklist builds a deck from decklist text: one "<count> <name>"
// entry per line, blank lines ignored. Each unique name is fetched from
// the catalog once and replicated count times.
func ParseDecklist(ctx context.Context, decklist string, catalog Catalog) ([]*card.Card, error) {
	var deck []*card.Card
	fetched := make(map[string]*card.Card)

	for lineNo, line := range strings.Split(strings.TrimSpace(decklist), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		countStr, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("deck: line %d: expected \"<count> <name>\", got %q", lineNo+1, line)
		}
		count, err := strconv.Atoi(countStr)
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("deck: line %d: invalid count %q", lineNo+1, countStr)
		}
		name = strings.TrimSpace(name)

		c, ok := fetched[name]
		if !ok {
			c, err = catalog.FetchCard(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("deck: fetching %q: %w", name, err)
			}
			fetched[name] = c
		}
		for i := 0; i < count; i++ {
			deck = append(deck, c)
		}
	}
	return deck, nil
}
