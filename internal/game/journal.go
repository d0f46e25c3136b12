package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/game/rules"
)

// Journal records the full event sequence of a match for later
// inspection. Events are appended in drain order, so a journal replays
// exactly what the trigger engine saw.
type Journal struct {
	MatchID string

	mu     sync.RWMutex
	events []rules.Event
	cursor int
}

// NewJournal creates an empty journal for a match.
func NewJournal(matchID string) *Journal {
	return &Journal{MatchID: matchID}
}

// Record appends an event.
func (j *Journal) Record(event rules.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
}

// Len returns the number of recorded events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}

// Events returns a snapshot of the recorded events.
func (j *Journal) Events() []rules.Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]rules.Event, len(j.events))
	copy(out, j.events)
	return out
}

// Rewind resets the playback cursor to the first event.
func (j *Journal) Rewind() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cursor = 0
}

// Next returns the event at the cursor and advances it. The second
// return value is false past the end.
func (j *Journal) Next() (rules.Event, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cursor >= len(j.events) {
		return rules.Event{}, false
	}
	event := j.events[j.cursor]
	j.cursor++
	return event, true
}

// Previous steps the cursor back and returns that event.
func (j *Journal) Previous() (rules.Event, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cursor == 0 {
		return rules.Event{}, false
	}
	j.cursor--
	return j.events[j.cursor], true
}

type journalFile struct {
	MatchID string
	Events  []rules.Event
}

// Save writes the journal to dir/<matchID>.journal.gz as gzipped gob.
func (j *Journal) Save(dir string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("game: creating journal dir: %w", err)
	}

	path := journalPath(dir, j.MatchID)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("game: creating journal file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	j.mu.RLock()
	payload := journalFile{MatchID: j.MatchID, Events: j.events}
	j.mu.RUnlock()

	if err := gob.NewEncoder(zw).Encode(payload); err != nil {
		zw.Close()
		return fmt.Errorf("game: encoding journal: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("game: flushing journal: %w", err)
	}

	logger.Info("saved match journal",
		zap.String("match_id", j.MatchID),
		zap.String("path", path),
		zap.Int("events", len(payload.Events)),
	)
	return nil
}

// LoadJournal reads a journal saved by Save.
func LoadJournal(dir, matchID string) (*Journal, error) {
	path := journalPath(dir, matchID)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("game: opening journal: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("game: reading journal %s: %w", path, err)
	}
	defer zr.Close()

	var payload journalFile
	if err := gob.NewDecoder(zr).Decode(&payload); err != nil {
		return nil, fmt.Errorf("game: decoding journal %s: %w", path, err)
	}
	return &Journal{MatchID: payload.MatchID, events: payload.Events}, nil
}

func journalPath(dir, matchID string) string {
	return filepath.Join(dir, matchID+".journal.gz")
}
