package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// formatBucket is the on-disk layout of one format's stats file:
// archetype -> matchup key -> entry.
type formatBucket map[string]map[string]*WinRates

// FileStore keeps one JSON bucket per format under a data directory.
// Buckets are cached in memory after first load; Reload discards a
// cached bucket so the next access re-reads the file. The store is an
// explicit object passed to its consumers, never ambient state.
type FileStore struct {
	dir    string
	logger *zap.Logger
	cache  map[string]formatBucket
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		dir:    dir,
		logger: logger,
		cache:  make(map[string]formatBucket),
	}
}

// GetWinRates implements Store.
func (s *FileStore) GetWinRates(ctx context.Context, archetype, opponentArchetype, format string) (*WinRates, error) {
	bucket, err := s.loadBucket(format)
	if err != nil {
		return nil, err
	}
	entries, ok := bucket[archetype]
	if !ok {
		return nil, nil
	}

	if opponentArchetype != "" {
		if entry, ok := entries[MatchupKey(opponentArchetype)]; ok {
			return withConfidence(*entry), nil
		}
	}
	if entry, ok := entries[MatchupKey("")]; ok {
		return withConfidence(*entry), nil
	}
	return nil, nil
}

// UpdateWinRates implements Store. The whole format bucket is loaded,
// one entry mutated and the bucket persisted; single writer per format.
func (s *FileStore) UpdateWinRates(ctx context.Context, archetype string, playedFirst, won bool, opponentArchetype, format string) error {
	bucket, err := s.loadBucket(format)
	if err != nil {
		return err
	}

	if bucket[archetype] == nil {
		bucket[archetype] = make(map[string]*WinRates)
	}
	key := MatchupKey(opponentArchetype)
	entry, ok := bucket[archetype][key]
	if !ok {
		entry = &WinRates{PlayWinRate: 0.5, DrawWinRate: 0.5}
		bucket[archetype][key] = entry
	}

	fold(entry, playedFirst, won)

	if err := s.saveBucket(format, bucket); err != nil {
		return err
	}

	s.logger.Debug("updated win rates",
		zap.String("format", format),
		zap.String("archetype", archetype),
		zap.String("matchup", key),
		zap.Bool("played_first", playedFirst),
		zap.Bool("won", won),
		zap.Int("samples", entry.Samples),
	)
	return nil
}

// Reload discards the cached bucket for a format. An empty format
// discards every cached bucket.
func (s *FileStore) Reload(format string) {
	if format == "" {
		s.cache = make(map[string]formatBucket)
		return
	}
	delete(s.cache, format)
}

func (s *FileStore) loadBucket(format string) (formatBucket, error) {
	if bucket, ok := s.cache[format]; ok {
		return bucket, nil
	}

	bucket := make(formatBucket)
	data, err := os.ReadFile(s.bucketPath(format))
	switch {
	case os.IsNotExist(err):
		// no history yet for this format
	case err != nil:
		return nil, fmt.Errorf("stats: reading %s bucket: %w", format, err)
	default:
		if err := json.Unmarshal(data, &bucket); err != nil {
			return nil, fmt.Errorf("%w: %s bucket: %v", ErrMalformed, format, err)
		}
	}

	s.cache[format] = bucket
	return bucket, nil
}

func (s *FileStore) saveBucket(format string, bucket formatBucket) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("stats: creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(bucket, "", "  ")
	if err != nil {
		return fmt.Errorf("stats: encoding %s bucket: %w", format, err)
	}
	if err := os.WriteFile(s.bucketPath(format), data, 0o644); err != nil {
		return fmt.Errorf("stats: writing %s bucket: %w", format, err)
	}
	return nil
}

func (s *FileStore) bucketPath(format string) string {
	return filepath.Join(s.dir, format+".json")
}
