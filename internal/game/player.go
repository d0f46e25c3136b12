package game

import (
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"github.com/duelforge/duelforge/internal/card"
	"github.com/duelforge/duelforge/internal/game/counters"
	"github.com/duelforge/duelforge/internal/game/mana"
	"github.com/duelforge/duelforge/internal/game/rules"
)

const startingLife = 20

// PlayerKind distinguishes human-controlled from automated players.
type PlayerKind int

const (
	PlayerHuman PlayerKind = iota
	PlayerAutomated
)

func (k PlayerKind) String() string {
	switch k {
	case PlayerHuman:
		return "HUMAN"
	case PlayerAutomated:
		return "AUTOMATED"
	default:
		return "UNKNOWN"
	}
}

// Player holds one side's identity, life, mana and zones. All zone
// mutation goes through the transition methods below so the one-zone
// invariant holds: a card instance is always in exactly one zone.
type Player struct {
	ID   string
	Name string
	Kind PlayerKind

	Life               int
	LifeLostThisTurn   int
	LifeGainedThisTurn int
	Poison             int
	ManaPool           *mana.Pool
	Counters           *counters.Counters

	Library     []*card.Instance
	Hand        []*card.Instance
	Graveyard   []*card.Instance
	Battlefield []*card.Instance
	Exile       map[string]*card.Instance

	Archetype     string
	MulliganCount int
	KeptHand      bool
	Lost          bool
}

// NewPlayer creates a player with empty zones and starting life.
func NewPlayer(name string, kind PlayerKind) *Player {
	return &Player{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     kind,
		Life:     startingLife,
		ManaPool: mana.NewPool(),
		Counters: counters.NewCounters(),
		Exile:    make(map[string]*card.Instance),
	}
}

// LoadLibrary instantiates the given cards as this player's library.
// Called once at deck load; the instances exist for the match only.
func (p *Player) LoadLibrary(cards []*card.Card) {
	p.Library = make([]*card.Instance, 0, len(cards))
	for _, c := range cards {
		p.Library = append(p.Library, card.NewInstance(c, p.ID))
	}
}

// TotalCards returns the sum of all zone sizes. Outside explicit
// zone-changing effects this is conserved for the whole match.
func (p *Player) TotalCards() int {
	return len(p.Library) + len(p.Hand) + len(p.Graveyard) + len(p.Battlefield) + len(p.Exile)
}

// Draw moves up to amount cards from the top of the library to the
// hand, emitting CARD_DRAWN per card. If the library empties first, a
// single PLAYER_LOSES event is emitted, the player is marked lost and
// the cards drawn so far are returned with ok=false.
func (p *Player) Draw(queue *rules.Queue, amount int) (drawn []*card.Instance, ok bool) {
	for i := 0; i < amount; i++ {
		if len(p.Library) == 0 {
			p.Lost = true
			event := rules.NewEvent(rules.EventPlayerLoses, p.ID)
			event.Metadata["reason"] = "empty_library"
			queue.Enqueue(event)
			return drawn, false
		}
		inst := p.Library[0]
		p.Library = p.Library[1:]
		inst.Zone = card.ZoneHand
		p.Hand = append(p.Hand, inst)
		drawn = append(drawn, inst)

		event := rules.NewEvent(rules.EventCardDrawn, p.ID)
		event.TargetID = inst.ID
		event.Metadata["card_name"] = inst.Name()
		queue.Enqueue(event)
	}
	return drawn, true
}

// ShuffleLibrary shuffles the library in place with the supplied RNG.
func (p *Player) ShuffleLibrary(rng *rand.Rand, queue *rules.Queue) {
	queue.Enqueue(rules.NewEvent(rules.EventShuffleLibrary, p.ID))
	rng.Shuffle(len(p.Library), func(i, j int) {
		p.Library[i], p.Library[j] = p.Library[j], p.Library[i]
	})
	queue.Enqueue(rules.NewEvent(rules.EventLibraryShuffled, p.ID))
}

// ShuffleHandIntoLibrary returns the whole hand to the library and
// shuffles. Used by the mulligan loop.
func (p *Player) ShuffleHandIntoLibrary(rng *rand.Rand, queue *rules.Queue) {
	for _, inst := range p.Hand {
		inst.Zone = card.ZoneLibrary
	}
	p.Library = append(p.Library, p.Hand...)
	p.Hand = nil
	p.ShuffleLibrary(rng, queue)
}

// BottomFromHand moves the last n cards of the hand to the bottom of
// the library, emitting CARD_BOTTOMED per card. Which cards to bottom
// is a selection policy; taking them from the back keeps the operation
// deterministic.
func (p *Player) BottomFromHand(queue *rules.Queue, n int) {
	if n > len(p.Hand) {
		n = len(p.Hand)
	}
	for i := 0; i < n; i++ {
		inst := p.Hand[len(p.Hand)-1]
		p.Hand = p.Hand[:len(p.Hand)-1]
		inst.Zone = card.ZoneLibrary
		p.Library = append(p.Library, inst)

		event := rules.NewEvent(rules.EventCardBottomed, p.ID)
		event.TargetID = inst.ID
		queue.Enqueue(event)
	}
}

// MoveToBattlefield puts a hand card onto the battlefield, emitting
// CREATURE_ETB for creatures.
func (p *Player) MoveToBattlefield(queue *rules.Queue, inst *card.Instance) bool {
	if !p.removeFromHand(inst) {
		return false
	}
	inst.Zone = card.ZoneBattlefield
	p.Battlefield = append(p.Battlefield, inst)
	if inst.Card.IsCreature() {
		event := rules.NewEvent(rules.EventCreatureETB, p.ID)
		event.TargetID = inst.ID
		event.Metadata["card_name"] = inst.Name()
		queue.Enqueue(event)
	}
	return true
}

// MoveToGraveyard puts a battlefield card into the graveyard, emitting
// CREATURE_DIES for creatures.
func (p *Player) MoveToGraveyard(queue *rules.Queue, inst *card.Instance) bool {
	if !p.removeFromBattlefield(inst) {
		return false
	}
	inst.Zone = card.ZoneGraveyard
	p.Graveyard = append(p.Graveyard, inst)
	if inst.Card.IsCreature() {
		event := rules.NewEvent(rules.EventCreatureDies, p.ID)
		event.TargetID = inst.ID
		event.Metadata["card_name"] = inst.Name()
		queue.Enqueue(event)
	}
	return true
}

// ExileCard moves a battlefield card to exile.
func (p *Player) ExileCard(queue *rules.Queue, inst *card.Instance) bool {
	if !p.removeFromBattlefield(inst) {
		return false
	}
	inst.Zone = card.ZoneExile
	p.Exile[inst.ID] = inst

	event := rules.NewEvent(rules.EventCardExiled, p.ID)
	event.TargetID = inst.ID
	queue.Enqueue(event)
	return true
}

// GainLife adds to the life total and records the per-turn delta.
func (p *Player) GainLife(queue *rules.Queue, amount int) {
	if amount <= 0 {
		return
	}
	p.Life += amount
	p.LifeGainedThisTurn += amount
	p.emitLifeChange(queue, amount)
}

// LoseLife subtracts from the life total and records the per-turn delta.
func (p *Player) LoseLife(queue *rules.Queue, amount int) {
	if amount <= 0 {
		return
	}
	p.Life -= amount
	p.LifeLostThisTurn += amount
	p.emitLifeChange(queue, -amount)
}

// ResetTurnDeltas clears the per-turn life tracking fields.
func (p *Player) ResetTurnDeltas() {
	p.LifeLostThisTurn = 0
	p.LifeGainedThisTurn = 0
}

// LandsInHand counts land-typed cards in hand.
func (p *Player) LandsInHand() int {
	lands := 0
	for _, inst := range p.Hand {
		if inst.Card.IsLand() {
			lands++
		}
	}
	return lands
}

// FindInstance looks the card instance up across all zones.
func (p *Player) FindInstance(id string) *card.Instance {
	for _, zone := range [][]*card.Instance{p.Library, p.Hand, p.Graveyard, p.Battlefield} {
		for _, inst := range zone {
			if inst.ID == id {
				return inst
			}
		}
	}
	if inst, ok := p.Exile[id]; ok {
		return inst
	}
	return nil
}

func (p *Player) emitLifeChange(queue *rules.Queue, delta int) {
	event := rules.NewEvent(rules.EventLifeChange, p.ID)
	event.Amount = delta
	event.Metadata["life_total"] = strconv.Itoa(p.Life)
	queue.Enqueue(event)
}

func (p *Player) removeFromHand(inst *card.Instance) bool {
	for i, h := range p.Hand {
		if h.ID == inst.ID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) removeFromBattlefield(inst *card.Instance) bool {
	for i, b := range p.Battlefield {
		if b.ID == inst.ID {
			p.Battlefield = append(p.Battlefield[:i], p.Battlefield[i+1:]...)
			return true
		}
	}
	return false
}
