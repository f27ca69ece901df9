package game

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is wrapped by every move rejection a game reports:
// malformed tokens, out-of-bounds coordinates, rule violations.
var ErrInvalidMove = errors.New("invalid move")

// DecodeError reports a persisted blob that does not match the game's
// serialization format. It is an expected condition when state written
// by an incompatible engine version is loaded; callers treat the
// session as corrupted rather than retrying.
type DecodeError struct {
	Game   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s board: %s", e.Game, e.Reason)
}

// DecodeErrorf builds a DecodeError with a formatted reason.
func DecodeErrorf(game, format string, args ...any) *DecodeError {
	return &DecodeError{Game: game, Reason: fmt.Sprintf(format, args...)}
}
