package card

import (
	"github.com/google/uuid"

	"github.com/duelforge/duelforge/internal/game/counters"
)

// Zone identifies where a card instance currently sits.
type Zone int

const (
	ZoneLibrary Zone = iota
	ZoneHand
	ZoneBattlefield
	ZoneGraveyard
	ZoneStack
	ZoneExile
)

var zoneNames = map[Zone]string{
	ZoneLibrary:     "LIBRARY",
	ZoneHand:        "HAND",
	ZoneBattlefield: "BATTLEFIELD",
	ZoneGraveyard:   "GRAVEYARD",
	ZoneStack:       "STACK",
	ZoneExile:       "EXILE",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return "UNKNOWN"
}

// Face is one printed face of a card. Single-faced cards carry exactly one.
type Face struct {
	Name       string  `json:"name"`
	ManaCost   string  `json:"mana_cost"`
	TypeLine   string  `json:"type_line"`
	OracleText string  `json:"oracle_text"`
	Colors     []string `json:"colors,omitempty"`
	Power      string  `json:"power,omitempty"`
	Toughness  string  `json:"toughness,omitempty"`
	Loyalty    string  `json:"loyalty,omitempty"`
	Defence    string  `json:"defence,omitempty"`
}

// IsLand reports whether this face's type line makes it a land.
func (f Face) IsLand() bool {
	return containsWord(f.TypeLine, "Land")
}

// IsCreature reports whether this face's type line makes it a creature.
func (f Face) IsCreature() bool {
	return containsWord(f.TypeLine, "Creature")
}

// Card is the immutable printed definition shared by every copy in a deck.
type Card struct {
	Name          string   `json:"name"`
	Layout        string   `json:"layout"`
	CMC           float64  `json:"cmc"`
	Colors        []string `json:"colors,omitempty"`
	ColorIdentity []string `json:"color_identity"`
	Faces         []Face   `json:"faces"`
}

// FrontFace returns the first face, or a zero face if the card has none.
func (c *Card) FrontFace() Face {
	if len(c.Faces) == 0 {
		return Face{}
	}
	return c.Faces[0]
}

// IsLand reports whether the front face is a land.
func (c *Card) IsLand() bool {
	return c.FrontFace().IsLand()
}

// IsCreature reports whether the front face is a creature.
func (c *Card) IsCreature() bool {
	return c.FrontFace().IsCreature()
}

// Instance is a single in-match copy of a Card. Runtime state (zone,
// tapped, counters) lives here so copies of the same printing never
// share it.
type Instance struct {
	ID       string
	Card     *Card
	OwnerID  string
	Zone     Zone
	Tapped   bool
	Counters *counters.Counters
}

// NewInstance creates a fresh library-zone instance of the given card.
func NewInstance(c *Card, ownerID string) *Instance {
	return &Instance{
		ID:       uuid.NewString(),
		Card:     c,
		OwnerID:  ownerID,
		Zone:     ZoneLibrary,
		Counters: counters.NewCounters(),
	}
}

// Name returns the printed card name.
func (i *Instance) Name() string {
	return i.Card.Name
}

func containsWord(typeLine, word string) bool {
	// Type lines are space/em-dash separated words; a substring match on
	// word boundaries is enough for land/creature classification.
	for start := 0; start+len(word) <= len(typeLine); start++ {
		if typeLine[start:start+len(word)] != word {
			continue
		}
		beforeOK := start == 0 || typeLine[start-1] == ' '
		end := start + len(word)
		afterOK := end == len(typeLine) || typeLine[end] == ' '
		if beforeOK && afterOK {
			return true
		}
	}
	return false
}
