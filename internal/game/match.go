package game

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/archetype"
	"github.com/duelforge/duelforge/internal/card"
	"github.com/duelforge/duelforge/internal/decision"
	"github.com/duelforge/duelforge/internal/game/counters"
	"github.com/duelforge/duelforge/internal/game/rules"
	"github.com/duelforge/duelforge/internal/modeling"
	"github.com/duelforge/duelforge/internal/stats"
)

const (
	openingHandSize = 7
	maxMulligans    = 7
)

// State is the match state machine position. Turn play past setup is
// represented by StatePlaying; full turn resolution lives above this
// layer.
type State int

const (
	StateSetup State = iota
	StateChooseFirstPlayer
	StateDrawOpeningHands
	StateMulliganLoop
	StatePlaying
	StateMatchEnded
)

var stateNames = map[State]string{
	StateSetup:             "SETUP",
	StateChooseFirstPlayer: "CHOOSE_FIRST_PLAYER",
	StateDrawOpeningHands:  "DRAW_OPENING_HANDS",
	StateMulliganLoop:      "MULLIGAN_LOOP",
	StatePlaying:           "PLAYING",
	StateMatchEnded:        "MATCH_ENDED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// DeckLoader is the deck persistence collaborator.
type DeckLoader interface {
	LoadDeck(name, format string) ([]*card.Card, error)
}

// CatalogLoader loads the per-format archetype catalog.
type CatalogLoader interface {
	Load(format string) (*archetype.Catalog, error)
}

// PlayerSetup configures one side of the match.
type PlayerSetup struct {
	Name     string
	Kind     PlayerKind
	DeckName string
	PlayDraw decision.PlayDrawPolicy
	Mulligan decision.MulliganPolicy
}

// MatchConfig configures a match.
type MatchConfig struct {
	Format string
	// GameNumber is the 1-based game within a best-of-N match; opponent
	// archetype inference is withheld on game 1.
	GameNumber int
	// Seed drives every random choice in the match for reproducibility.
	Seed    int64
	Players [2]PlayerSetup
}

// Match composes the zone model, trigger engine, decision policies and
// modeling engine into the match state machine. All operations run on
// the caller's goroutine, strictly sequentially; the only suspension
// point is a human decision prompt.
type Match struct {
	id      string
	cfg     MatchConfig
	logger  *zap.Logger
	rng     *rand.Rand
	journal *Journal

	decks      DeckLoader
	catalogs   CatalogLoader
	statsStore stats.Store

	players  [2]*Player
	policies [2]PlayerSetup
	queue    *rules.Queue
	triggers *rules.Registry
	turns    *rules.TurnManager
	modeling *modeling.Engine

	state         State
	currentPlayer *Player // the player who goes first
	winner        *Player
	loser         *Player
	eventsHandled int
}

// NewMatch creates a match in the Setup state.
func NewMatch(cfg MatchConfig, decks DeckLoader, catalogs CatalogLoader, statsStore stats.Store, logger *zap.Logger) *Match {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GameNumber <= 0 {
		cfg.GameNumber = 1
	}
	return &Match{
		id:         uuid.NewString(),
		cfg:        cfg,
		logger:     logger,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		decks:      decks,
		catalogs:   catalogs,
		statsStore: statsStore,
		queue:      rules.NewQueue(),
		triggers:   rules.NewRegistry(logger),
		state:      StateSetup,
	}
}

// ID returns the match identifier.
func (m *Match) ID() string { return m.id }

// State returns the current state machine position.
func (m *Match) State() State { return m.state }

// AttachJournal starts recording every drained event into j.
func (m *Match) AttachJournal(j *Journal) { m.journal = j }

// Journal returns the attached journal, nil when none.
func (m *Match) Journal() *Journal { return m.journal }

// Players returns both players.
func (m *Match) Players() [2]*Player { return m.players }

// CurrentPlayer returns the player going first, nil before the
// first-player choice resolves.
func (m *Match) CurrentPlayer() *Player { return m.currentPlayer }

// Winner returns the winning player once the match has ended.
func (m *Match) Winner() *Player { return m.winner }

// Loser returns the losing player once the match has ended.
func (m *Match) Loser() *Player { return m.loser }

// Turns returns the turn manager, nil before the first-player choice.
func (m *Match) Turns() *rules.TurnManager { return m.turns }

// Modeling returns the opponent modeling engine, nil before setup.
func (m *Match) Modeling() *modeling.Engine { return m.modeling }

// EventsHandled reports how many events the drain loop has processed.
func (m *Match) EventsHandled() int { return m.eventsHandled }

// RegisterAbility adds a triggered ability to the match.
func (m *Match) RegisterAbility(ability *rules.TriggeredAbility) string {
	return m.triggers.Register(ability)
}

// Opponent returns the other player.
func (m *Match) Opponent(p *Player) *Player {
	if m.players[0] == p {
		return m.players[1]
	}
	return m.players[0]
}

// PlayerByID finds a player by ID.
func (m *Match) PlayerByID(id string) *Player {
	for _, p := range m.players {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// IsOpponent reports whether controllerID belongs to an opponent of
// the player ownerID. Used for trigger scope resolution.
func (m *Match) IsOpponent(ownerID, controllerID string) bool {
	return ownerID != controllerID
}

// Run drives the match through setup, first-player choice, opening
// hands and the mulligan loop. It returns with the match in
// StatePlaying, or in StateMatchEnded if a terminal event fired.
func (m *Match) Run(ctx context.Context) error {
	if err := m.Setup(ctx); err != nil {
		return err
	}
	if err := m.ChooseFirstPlayer(ctx); err != nil {
		return err
	}
	if err := m.DrawOpeningHands(ctx); err != nil {
		return err
	}
	if m.state == StateMatchEnded {
		return nil
	}
	return m.ResolveMulligans(ctx)
}

// Setup loads the archetype catalog and both decks, assigns archetype
// labels and shuffles libraries. Any load failure is fatal.
func (m *Match) Setup(ctx context.Context) error {
	if m.state != StateSetup {
		return fmt.Errorf("game: setup in state %s", m.state)
	}

	catalog, err := m.catalogs.Load(m.cfg.Format)
	if err != nil {
		return fmt.Errorf("%w: loading archetype catalog: %v", ErrConfiguration, err)
	}
	m.modeling = modeling.NewEngine(catalog, m.statsStore, m.cfg.Format, m.logger)

	for i, setup := range m.cfg.Players {
		cards, err := m.decks.LoadDeck(setup.DeckName, m.cfg.Format)
		if err != nil {
			return fmt.Errorf("%w: loading deck %q: %v", ErrConfiguration, setup.DeckName, err)
		}
		entry, ok := catalog.ByDeck(setup.DeckName)
		if !ok {
			return fmt.Errorf("%w: deck %q has no archetype catalog entry", ErrConfiguration, setup.DeckName)
		}

		player := NewPlayer(setup.Name, setup.Kind)
		player.Archetype = entry.Archetype
		player.LoadLibrary(cards)
		player.ShuffleLibrary(m.rng, m.queue)
		m.players[i] = player
		m.policies[i] = setup

		m.logger.Info("player ready",
			zap.String("player", player.Name),
			zap.Stringer("kind", player.Kind),
			zap.String("deck", setup.DeckName),
			zap.String("archetype", player.Archetype),
			zap.Int("library", len(player.Library)),
		)
	}

	m.drain(ctx)
	m.state = StateChooseFirstPlayer
	return nil
}

// ChooseFirstPlayer picks a decider uniformly at random and asks its
// play/draw policy. PLAY keeps the decider as current player; DRAW
// hands the first turn to the opponent.
func (m *Match) ChooseFirstPlayer(ctx context.Context) error {
	if m.state != StateChooseFirstPlayer {
		return fmt.Errorf("game: choose first player in state %s", m.state)
	}

	deciderIdx := m.rng.Intn(2)
	decider := m.players[deciderIdx]
	policy := m.policies[deciderIdx].PlayDraw

	decisionCtx := m.modeling.PlayDrawState(ctx, decider.ID, decider.Archetype, m.cfg.GameNumber)
	choice, err := policy.Decide(ctx, decider.Name, decisionCtx)
	if err != nil {
		return fmt.Errorf("game: play/draw decision: %w", err)
	}

	if choice == decision.ChoicePlay {
		m.currentPlayer = decider
	} else {
		m.currentPlayer = m.Opponent(decider)
	}
	m.turns = rules.NewTurnManager(m.currentPlayer.ID)

	m.logger.Info("first player chosen",
		zap.String("decider", decider.Name),
		zap.Stringer("choice", choice),
		zap.String("current_player", m.currentPlayer.Name),
	)

	m.state = StateDrawOpeningHands
	return nil
}

// DrawOpeningHands has both players draw their opening seven. An empty
// library during the draw ends the match immediately.
func (m *Match) DrawOpeningHands(ctx context.Context) error {
	if m.state != StateDrawOpeningHands {
		return fmt.Errorf("game: draw opening hands in state %s", m.state)
	}

	for _, player := range m.drawOrder() {
		_, ok := player.Draw(m.queue, openingHandSize)
		m.drain(ctx)
		if !ok {
			m.endMatch(ctx, player)
			return nil
		}
	}

	m.state = StateMulliganLoop
	return nil
}

// ResolveMulligans runs the London mulligan loop until every player has
// kept: a mulligan shuffles the hand away, redraws a fresh seven and
// bottoms one card per mulligan taken. The loop is bounded because a
// player at seven mulligans keeps an empty hand.
func (m *Match) ResolveMulligans(ctx context.Context) error {
	if m.state != StateMulliganLoop {
		return fmt.Errorf("game: mulligan loop in state %s", m.state)
	}

	for {
		allKept := true
		for _, player := range m.drawOrder() {
			if player.KeptHand {
				continue
			}
			allKept = false

			choice, err := m.mulliganChoice(ctx, player)
			if err != nil {
				return err
			}
			if choice == decision.Keep || player.MulliganCount >= maxMulligans {
				player.KeptHand = true
				m.queue.Enqueue(rules.NewEvent(rules.EventHandKept, player.ID))
				m.drain(ctx)
				m.logger.Info("player kept hand",
					zap.String("player", player.Name),
					zap.Int("mulligan_count", player.MulliganCount),
					zap.Int("hand_size", len(player.Hand)),
				)
				continue
			}

			if err := m.takeMulligan(ctx, player); err != nil {
				return err
			}
			if m.state == StateMatchEnded {
				return nil
			}
		}
		if allKept {
			break
		}
	}

	m.state = StatePlaying
	m.logger.Info("match setup complete",
		zap.String("current_player", m.currentPlayer.Name),
		zap.Int("turn", m.turns.TurnNumber()),
		zap.Stringer("phase", m.turns.CurrentPhase()),
		zap.Stringer("step", m.turns.CurrentStep()),
	)
	return nil
}

func (m *Match) mulliganChoice(ctx context.Context, player *Player) (decision.MullChoice, error) {
	// Find the policy slot for this player; drawOrder may have
	// reordered relative to cfg.Players.
	var policy decision.MulliganPolicy
	for i := range m.players {
		if m.players[i] == player {
			policy = m.policies[i].Mulligan
		}
	}
	hand := decision.HandState{
		Hand:          player.Hand,
		MulliganCount: player.MulliganCount,
		Lands:         player.LandsInHand(),
	}
	choice, err := policy.Decide(ctx, player.Name, hand)
	if err != nil {
		return decision.Keep, fmt.Errorf("game: mulligan decision: %w", err)
	}
	return choice, nil
}

func (m *Match) takeMulligan(ctx context.Context, player *Player) error {
	player.ShuffleHandIntoLibrary(m.rng, m.queue)
	player.MulliganCount++

	_, ok := player.Draw(m.queue, openingHandSize)
	m.drain(ctx)
	if !ok {
		m.endMatch(ctx, player)
		return nil
	}

	// London rule: one card to the bottom per mulligan taken.
	player.BottomFromHand(m.queue, player.MulliganCount)

	event := rules.NewEvent(rules.EventMulliganTaken, player.ID)
	event.Amount = player.MulliganCount
	m.queue.Enqueue(event)
	m.drain(ctx)

	m.logger.Info("player mulliganed",
		zap.String("player", player.Name),
		zap.Int("mulligan_count", player.MulliganCount),
		zap.Int("hand_size", len(player.Hand)),
	)
	return nil
}

// drawOrder returns both players with the current player first, falling
// back to configuration order before the first-player choice.
func (m *Match) drawOrder() []*Player {
	if m.currentPlayer == nil || m.currentPlayer == m.players[0] {
		return []*Player{m.players[0], m.players[1]}
	}
	return []*Player{m.players[1], m.players[0]}
}

// drain processes queued events in FIFO order. Each event is evaluated
// against every registered ability exactly once, in registration order;
// effects may enqueue further events, which are drained in turn. Reveal
// events additionally feed the opponent modeling engine.
func (m *Match) drain(ctx context.Context) {
	for {
		event, ok := m.queue.Pop()
		if !ok {
			return
		}
		m.eventsHandled++
		if m.journal != nil {
			m.journal.Record(event)
		}

		if event.Type == rules.EventPlayerLoses && m.state != StateMatchEnded {
			// Terminal events are handled by the state machine; abilities
			// still get to observe the event below.
			m.logger.Info("player loses",
				zap.String("player", m.playerName(event.PlayerID)),
				zap.String("reason", event.Metadata["reason"]),
			)
		}

		for _, ability := range m.triggers.Abilities() {
			if m.state == StateMatchEnded {
				break
			}
			if !ability.Matches(event, m.IsOpponent) {
				continue
			}
			if err := m.applyEffect(ctx, ability, event); err != nil {
				m.logger.Warn("skipping effect",
					zap.String("ability_id", ability.ID),
					zap.String("effect", rules.EffectDescription(ability.Effect)),
					zap.String("event", string(event.Type)),
					zap.Error(err),
				)
			}
		}

		m.observeReveal(event)
	}
}

// observeReveal feeds cards made public by an event into the opponent
// modeling engine: the controller's opponent is the observer.
func (m *Match) observeReveal(event rules.Event) {
	switch event.Type {
	case rules.EventCreatureETB, rules.EventCreatureDies, rules.EventCardRevealed:
	default:
		return
	}
	name := event.Metadata["card_name"]
	if name == "" || m.modeling == nil {
		return
	}
	controller := m.PlayerByID(event.Controller)
	if controller == nil {
		return
	}
	observer := m.Opponent(controller)
	m.modeling.RevealCard(name, controller.ID, observer.ID)
}

// applyEffect dispatches over the effect union. This type switch is
// the single place effect kinds are interpreted.
func (m *Match) applyEffect(ctx context.Context, ability *rules.TriggeredAbility, event rules.Event) error {
	switch effect := ability.Effect.(type) {
	case rules.AddCountersEffect:
		amount := effect.Amount
		if amount <= 0 {
			amount = 1
		}
		return m.addCounters(effect.Target, event, counters.CounterType(effect.CounterType), amount)

	case rules.DrawCardEffect:
		count := effect.Count
		if count <= 0 {
			count = 1
		}
		target, err := m.resolveTargetPlayer(effect.Target, event)
		if err != nil {
			return err
		}
		if _, ok := target.Draw(m.queue, count); !ok {
			m.endMatch(ctx, target)
		}
		return nil

	default:
		return fmt.Errorf("game: unhandled effect kind %T", effect)
	}
}

func (m *Match) addCounters(selector rules.TargetSelector, event rules.Event, ct counters.CounterType, amount int) error {
	switch selector.Kind {
	case rules.TargetController:
		player, err := m.resolveTargetPlayer(selector, event)
		if err != nil {
			return err
		}
		player.Counters.Add(ct, amount)
		m.emitCounterAdded(player.ID, player.ID, ct, amount)
		return nil

	case rules.TargetSource:
		inst := m.findInstance(event.SourceID)
		if inst == nil {
			return fmt.Errorf("%w: no source card for event %s", ErrInvalidTarget, event.ID)
		}
		inst.Counters.Add(ct, amount)
		m.emitCounterAdded(inst.ID, inst.OwnerID, ct, amount)
		return nil

	case rules.TargetExplicit:
		if player := m.PlayerByID(selector.Ref); player != nil {
			player.Counters.Add(ct, amount)
			m.emitCounterAdded(player.ID, player.ID, ct, amount)
			return nil
		}
		if inst := m.findInstance(selector.Ref); inst != nil {
			inst.Counters.Add(ct, amount)
			m.emitCounterAdded(inst.ID, inst.OwnerID, ct, amount)
			return nil
		}
		return fmt.Errorf("%w: unknown reference %q", ErrInvalidTarget, selector.Ref)

	default:
		return fmt.Errorf("%w: unknown selector kind %d", ErrInvalidTarget, selector.Kind)
	}
}

func (m *Match) emitCounterAdded(targetID, controllerID string, ct counters.CounterType, amount int) {
	event := rules.NewEvent(rules.EventCounterAdded, controllerID)
	event.TargetID = targetID
	event.Amount = amount
	event.Metadata["counter_type"] = string(ct)
	m.queue.Enqueue(event)
}

func (m *Match) resolveTargetPlayer(selector rules.TargetSelector, event rules.Event) (*Player, error) {
	switch selector.Kind {
	case rules.TargetController:
		if player := m.PlayerByID(event.Controller); player != nil {
			return player, nil
		}
		return nil, fmt.Errorf("%w: event %s has no controller", ErrInvalidTarget, event.ID)
	case rules.TargetExplicit:
		if player := m.PlayerByID(selector.Ref); player != nil {
			return player, nil
		}
		return nil, fmt.Errorf("%w: unknown player %q", ErrInvalidTarget, selector.Ref)
	default:
		return nil, fmt.Errorf("%w: selector kind %d does not name a player", ErrInvalidTarget, selector.Kind)
	}
}

func (m *Match) findInstance(id string) *card.Instance {
	if id == "" {
		return nil
	}
	for _, player := range m.players {
		if inst := player.FindInstance(id); inst != nil {
			return inst
		}
	}
	return nil
}

// Concede ends the match with the given player as the loser.
func (m *Match) Concede(ctx context.Context, player *Player) error {
	if m.state == StateMatchEnded {
		return ErrMatchEnded
	}
	if m.PlayerByID(player.ID) == nil {
		return fmt.Errorf("%w: player %q is not in this match", ErrInvalidTarget, player.Name)
	}
	player.Lost = true
	event := rules.NewEvent(rules.EventPlayerLoses, player.ID)
	event.Metadata["reason"] = "concede"
	m.queue.Enqueue(event)
	m.endMatch(ctx, player)
	return nil
}

// endMatch records the terminal result and transitions to MatchEnded.
// A stats store failure is logged, not surfaced; the match outcome
// itself stands.
func (m *Match) endMatch(ctx context.Context, loser *Player) {
	if m.state == StateMatchEnded {
		return
	}
	m.state = StateMatchEnded
	m.loser = loser
	m.winner = m.Opponent(loser)
	if m.turns != nil {
		m.turns.ClearPriority()
	}

	event := rules.NewEvent(rules.EventMatchEnded, m.winner.ID)
	event.Metadata["winner"] = m.winner.Name
	event.Metadata["loser"] = m.loser.Name
	m.queue.Enqueue(event)
	m.drain(ctx)

	m.logger.Info("match ended",
		zap.String("winner", m.winner.Name),
		zap.String("loser", m.loser.Name),
	)

	m.recordResult(ctx)
}

// recordResult folds the outcome into the historical stats store, once
// per player perspective.
func (m *Match) recordResult(ctx context.Context) {
	if m.statsStore == nil || m.winner == nil {
		return
	}
	first := m.currentPlayer
	for _, player := range m.players {
		opponent := m.Opponent(player)
		err := m.statsStore.UpdateWinRates(ctx,
			player.Archetype,
			player == first,
			player == m.winner,
			opponent.Archetype,
			m.cfg.Format,
		)
		if err != nil {
			m.logger.Warn("failed to record match result",
				zap.String("archetype", player.Archetype),
				zap.Error(err),
			)
		}
	}
}

func (m *Match) playerName(id string) string {
	if player := m.PlayerByID(id); player != nil {
		return player.Name
	}
	return id
}
