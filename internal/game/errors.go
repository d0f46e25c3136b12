package game

import "errors"

var (
	// ErrConfiguration wraps setup failures: missing or malformed
	// archetype catalogs and deck files. Fatal, never retried.
	ErrConfiguration = errors.New("game: configuration error")

	// ErrInvalidTarget marks a trigger effect whose target selector
	// could not be resolved. Only that effect application is skipped.
	ErrInvalidTarget = errors.New("game: cannot resolve effect target")

	// ErrMatchEnded is returned by operations attempted after a
	// terminal event ended the match.
	ErrMatchEnded = errors.New("game: match has ended")
)
