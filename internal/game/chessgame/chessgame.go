// Package chessgame wraps the corentings/chess engine behind the
// board interface. Rules, legality, and outcome detection come from
// the library; this package only maps tokens, marks, and the move-list
// blob onto it.
package chessgame

import (
	"fmt"
	"strings"

	"github.com/corentings/chess"

	"github.com/janekc/deltabot-games/internal/game"
)

const (
	MarkWhite = "w"
	MarkBlack = "b"
)

// Chess implements game.Game.
type Chess struct{}

func (Chess) Name() string { return "chess" }

func (Chess) Players() int { return 2 }

func (Chess) New() game.Board {
	return &Board{inner: chess.NewGame()}
}

// Decode replays a blob holding the accepted moves in algebraic
// notation on one line. An empty line is a fresh game.
func (g Chess) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, 1)
	if err != nil {
		return nil, err
	}
	b := &Board{inner: chess.NewGame()}
	if lines[0] == "" {
		return b, nil
	}
	moves := strings.Split(lines[0], " ")
	for k, mv := range moves {
		if err := b.inner.MoveStr(mv); err != nil {
			return nil, game.DecodeErrorf(g.Name(), "replay failed at move %d (%q): %v", k+1, mv, err)
		}
	}
	b.moves = moves
	return b, nil
}

// Board delegates the chess rules to the wrapped game and records the
// accepted moves for serialization.
type Board struct {
	inner *chess.Game
	moves []string
}

func (b *Board) Turn() string {
	if b.inner.Position().Turn() == chess.Black {
		return MarkBlack
	}
	return MarkWhite
}

func (b *Board) Score() int { return 0 }

func (b *Board) Encode() string {
	return game.JoinBlob(strings.Join(b.moves, " "))
}

// Move applies one move in standard algebraic notation, e.g. "e4" or
// "Nxf6". The library rejects everything illegal in the position.
func (b *Board) Move(token string) error {
	if token == "" || strings.ContainsAny(token, " \n") {
		return fmt.Errorf("%w: bad move %q", game.ErrInvalidMove, token)
	}
	if err := b.inner.MoveStr(token); err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidMove, err)
	}
	b.moves = append(b.moves, token)
	return nil
}

func (b *Board) Result() game.Result {
	switch b.inner.Outcome() {
	case chess.WhiteWon:
		return game.Result{Status: game.Win, Winner: MarkWhite}
	case chess.BlackWon:
		return game.Result{Status: game.Win, Winner: MarkBlack}
	case chess.Draw:
		return game.Result{Status: game.Draw}
	}
	return game.Result{Status: game.Ongoing}
}

func (b *Board) Render() string {
	return b.inner.Position().Board().Draw()
}
