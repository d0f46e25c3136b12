package rules

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope restricts which event controllers cause an ability to fire,
// resolved relative to the ability's owning player.
type Scope int

const (
	// ScopeAnyPlayer fires regardless of who controls the event.
	ScopeAnyPlayer Scope = iota
	// ScopeOpponentControlled fires only for events controlled by the
	// owner's opponent.
	ScopeOpponentControlled
	// ScopeYouControlled fires only for events the owner controls.
	ScopeYouControlled
)

func (s Scope) String() string {
	switch s {
	case ScopeAnyPlayer:
		return "ANY_PLAYER"
	case ScopeOpponentControlled:
		return "OPPONENT_CONTROLLED"
	case ScopeYouControlled:
		return "YOU_CONTROLLED"
	default:
		return "UNKNOWN"
	}
}

// TargetKind selects how an effect resolves its target against the
// triggering event.
type TargetKind int

const (
	// TargetController resolves to the event's controller.
	TargetController TargetKind = iota
	// TargetSource resolves to the event's source.
	TargetSource
	// TargetExplicit resolves to a fixed player or card reference.
	TargetExplicit
)

// TargetSelector names the target of an effect.
type TargetSelector struct {
	Kind TargetKind
	Ref  string // explicit player or card ID, for TargetExplicit
}

// Effect is the tagged union of trigger effect payloads. New variants
// must be handled in every type switch over Effect.
type Effect interface {
	isEffect()
}

// AddCountersEffect places counters on a resolved target.
type AddCountersEffect struct {
	Target      TargetSelector
	CounterType string
	Amount      int // defaults to 1 when non-positive
}

func (AddCountersEffect) isEffect() {}

// DrawCardEffect makes the resolved target player draw cards.
type DrawCardEffect struct {
	Target TargetSelector
	Count  int // defaults to 1 when non-positive
}

func (DrawCardEffect) isEffect() {}

// TriggeredAbility reacts to a matching event by applying its effect.
type TriggeredAbility struct {
	ID        string
	OwnerID   string
	EventType EventType
	Scope     Scope
	Effect    Effect
	// Condition is evaluated against the event after type and scope
	// match. Nil means always true.
	Condition func(Event) bool
}

// Matches reports whether the ability fires for the given event.
// isOpponent reports whether the controller is an opponent of the
// ability owner; the registry has no player model of its own.
func (a *TriggeredAbility) Matches(event Event, isOpponent func(ownerID, controllerID string) bool) bool {
	if a.EventType != event.Type {
		return false
	}
	switch a.Scope {
	case ScopeAnyPlayer:
		// always passes
	case ScopeOpponentControlled:
		if !isOpponent(a.OwnerID, event.Controller) {
			return false
		}
	case ScopeYouControlled:
		if isOpponent(a.OwnerID, event.Controller) {
			return false
		}
	}
	if a.Condition != nil && !a.Condition(event) {
		return false
	}
	return true
}

// Registry stores triggered abilities in registration order. Every
// drained event is evaluated against each registered ability exactly
// once, in that order.
type Registry struct {
	logger    *zap.Logger
	abilities []*TriggeredAbility
}

// NewRegistry creates an empty trigger registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register adds an ability and returns its ID. An ability must never
// requeue an event that re-triggers itself unconditionally; that
// contract is the author's to keep, so configurations that plainly
// violate it are flagged here rather than at drain time.
func (r *Registry) Register(ability *TriggeredAbility) string {
	if ability.ID == "" {
		ability.ID = uuid.NewString()
	}
	if selfTriggering(ability) {
		r.logger.Warn("triggered ability can unconditionally re-trigger itself",
			zap.String("ability_id", ability.ID),
			zap.String("event_type", string(ability.EventType)),
		)
	}
	r.abilities = append(r.abilities, ability)
	return ability.ID
}

// Unregister removes the ability with the given ID.
func (r *Registry) Unregister(id string) {
	for i, ability := range r.abilities {
		if ability.ID == id {
			r.abilities = append(r.abilities[:i], r.abilities[i+1:]...)
			return
		}
	}
}

// Abilities returns the registered abilities in registration order.
// The returned slice is a snapshot; effects registering new abilities
// mid-drain do not affect the evaluation of the current event.
func (r *Registry) Abilities() []*TriggeredAbility {
	out := make([]*TriggeredAbility, len(r.abilities))
	copy(out, r.abilities)
	return out
}

// Len returns the number of registered abilities.
func (r *Registry) Len() int {
	return len(r.abilities)
}

// selfTriggering reports whether the ability's effect emits the very
// event type it listens for, with no condition to break the loop.
func selfTriggering(ability *TriggeredAbility) bool {
	if ability.Condition != nil {
		return false
	}
	switch ability.Effect.(type) {
	case DrawCardEffect:
		return ability.EventType == EventCardDrawn || ability.EventType == EventPlayerLoses
	case AddCountersEffect:
		return ability.EventType == EventCounterAdded
	default:
		return false
	}
}

// EffectDescription renders a short human-readable label for logging.
func EffectDescription(effect Effect) string {
	switch e := effect.(type) {
	case AddCountersEffect:
		amount := e.Amount
		if amount <= 0 {
			amount = 1
		}
		return fmt.Sprintf("add %d %s counter(s)", amount, e.CounterType)
	case DrawCardEffect:
		count := e.Count
		if count <= 0 {
			count = 1
		}
		return fmt.Sprintf("draw %d card(s)", count)
	default:
		return "unknown effect"
	}
}
