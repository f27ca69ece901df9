// Package tictactoe implements 3x3 tic-tac-toe.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const size = 3

const (
	empty  = '-'
	cross  = 'x'
	circle = 'o'
)

const (
	MarkCross  = "x"
	MarkCircle = "o"
)

var marks = map[byte]string{cross: "❌", circle: "⭕", empty: "⬜"}

var winLines = [][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // cols
	{0, 4, 8}, {2, 4, 6}, // diags
}

// TicTacToe implements game.Game.
type TicTacToe struct{}

func (TicTacToe) Name() string { return "tictactoe" }

func (TicTacToe) Players() int { return 2 }

func (TicTacToe) New() game.Board {
	b := &Board{turn: cross}
	for i := range b.cells {
		b.cells[i] = empty
	}
	return b
}

func (g TicTacToe) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, 1+size)
	if err != nil {
		return nil, err
	}
	if lines[0] != MarkCross && lines[0] != MarkCircle {
		return nil, game.DecodeErrorf(g.Name(), "bad turn mark %q", lines[0])
	}
	grid, err := game.ParseGrid(g.Name(), lines[1:], size, size, "-xo")
	if err != nil {
		return nil, err
	}
	b := &Board{turn: lines[0][0]}
	for i := range grid {
		copy(b.cells[i*size:(i+1)*size], grid[i])
	}
	return b, nil
}

// Board holds the tic-tac-toe game state as a flat 9-cell array.
type Board struct {
	cells [size * size]byte
	turn  byte
}

func (b *Board) Turn() string { return string(b.turn) }

func (b *Board) Score() int { return 0 }

func (b *Board) Encode() string {
	lines := []string{string(b.turn)}
	for i := 0; i < size; i++ {
		lines = append(lines, string(b.cells[i*size:(i+1)*size]))
	}
	return game.JoinBlob(lines...)
}

// Move places the mover's mark on an empty cell.
func (b *Board) Move(token string) error {
	i, j, ok := game.ParseCoord(token, size, size)
	if !ok {
		return fmt.Errorf("%w: bad coordinate %q", game.ErrInvalidMove, token)
	}
	k := i*size + j
	if b.cells[k] != empty {
		return fmt.Errorf("%w: cell taken", game.ErrInvalidMove)
	}
	b.cells[k] = b.turn
	if !b.wins(b.turn) {
		if b.turn == cross {
			b.turn = circle
		} else {
			b.turn = cross
		}
	}
	return nil
}

func (b *Board) wins(mark byte) bool {
	for _, line := range winLines {
		if b.cells[line[0]] == mark && b.cells[line[1]] == mark && b.cells[line[2]] == mark {
			return true
		}
	}
	return false
}

func (b *Board) Result() game.Result {
	for _, mark := range []byte{cross, circle} {
		if b.wins(mark) {
			return game.Result{Status: game.Win, Winner: string(mark)}
		}
	}
	for _, c := range b.cells {
		if c == empty {
			return game.Result{Status: game.Ongoing}
		}
	}
	return game.Result{Status: game.Draw}
}

func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString("1️⃣|2️⃣|3️⃣\n")
	labels := []string{"🇦", "🇧", "🇨"}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			sb.WriteString(marks[b.cells[i*size+j]])
			sb.WriteByte('|')
		}
		sb.WriteString(labels[i])
		sb.WriteByte('\n')
	}
	return sb.String()
}
