package game

// Status is the outcome of evaluating a board.
type Status int

const (
	Ongoing Status = iota
	Win
	Draw
	Loss
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	}
	return "unknown"
}

// Terminal reports whether the game is over.
func (s Status) Terminal() bool { return s != Ongoing }

// Result is the evaluated state of a board. Winner is the mark of the
// winning side and is only set for Win. Points carries per-mark scores
// for games that display a running count (reversi, chain reaction).
type Result struct {
	Status Status
	Winner string
	Points map[string]int
}

// Board is one in-progress game. Implementations are plain in-memory
// values: no I/O, no locking. The session layer serializes access.
type Board interface {
	// Move applies a player-supplied move token. Malformed or illegal
	// tokens return an error wrapping ErrInvalidMove and leave the
	// board untouched.
	Move(token string) error
	// Turn returns the mark of the side to move, or "" for
	// single-player games.
	Turn() string
	// Result evaluates the board without mutating it.
	Result() Result
	// Encode serializes the board to its persisted text blob.
	Encode() string
	// Render produces the display representation. Display-only, never
	// decoded back.
	Render() string
	// Score is the running score for single-player games, 0 otherwise.
	Score() int
}

// Game describes one game variant (chain reaction, reversi, ...).
type Game interface {
	Name() string
	// Players is the number of participants: 1 or 2.
	Players() int
	New() Board
	Decode(blob string) (Board, error)
}
