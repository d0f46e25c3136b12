package rules

import (
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a match event.
type EventType string

const (
	// Draw/library events
	EventCardDrawn       EventType = "CARD_DRAWN"
	EventShuffleLibrary  EventType = "SHUFFLE_LIBRARY"
	EventLibraryShuffled EventType = "LIBRARY_SHUFFLED"
	EventCardBottomed    EventType = "CARD_BOTTOMED"

	// Zone events
	EventCreatureDies EventType = "CREATURE_DIES"
	EventCreatureETB  EventType = "CREATURE_ETB"
	EventCardExiled   EventType = "CARD_EXILED"
	EventCardRevealed EventType = "CARD_REVEALED"

	// Life/counter events
	EventLifeChange   EventType = "LIFE_CHANGE"
	EventCounterAdded EventType = "COUNTER_ADDED"

	// Match flow events
	EventPlayerLoses    EventType = "PLAYER_LOSES"
	EventMulliganTaken  EventType = "MULLIGAN_TAKEN"
	EventHandKept       EventType = "HAND_KEPT"
	EventMatchEnded     EventType = "MATCH_ENDED"
)

// Event represents a state change that triggered abilities may react to.
type Event struct {
	Type       EventType
	ID         string
	PlayerID   string // subject player
	Controller string // player responsible for the change
	TargetID   string // card or player the event is about
	SourceID   string // card/ability that produced the event
	Amount     int
	Timestamp  time.Time
	Metadata   map[string]string
}

// NewEvent creates an event with common fields populated. The subject
// player doubles as controller unless the caller overrides it.
func NewEvent(eventType EventType, playerID string) Event {
	return Event{
		Type:       eventType,
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Controller: playerID,
		Timestamp:  time.Now(),
		Metadata:   make(map[string]string),
	}
}

// Queue is the match's FIFO event queue. Events are appended by zone
// operations and effects and drained strictly in enqueue order by the
// single match goroutine.
type Queue struct {
	events []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an event, assigning an ID and timestamp if unset.
func (q *Queue) Enqueue(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Metadata == nil {
		event.Metadata = make(map[string]string)
	}
	q.events = append(q.events, event)
}

// Pop removes and returns the oldest event. The second return value is
// false when the queue is empty.
func (q *Queue) Pop() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	event := q.events[0]
	q.events = q.events[1:]
	return event, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.events)
}
