package session

import "errors"

var (
	ErrNoActiveGame       = errors.New("no active game")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrIllegalMove        = errors.New("illegal move")
	ErrGameAlreadyRunning = errors.New("a game is already running")
	ErrNotAParticipant    = errors.New("not a participant")
	ErrPlayerCount        = errors.New("wrong number of players")
	ErrUnknownGame        = errors.New("unknown game")
)
