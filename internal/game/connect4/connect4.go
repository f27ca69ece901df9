// Package connect4 implements Connect Four on the classic 6x7 grid. A
// move is a column digit; the disc falls to the lowest empty row.
package connect4

import (
	"fmt"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const (
	rows = 6
	cols = 7
)

const (
	empty = '-'
	black = 'x'
	white = 'o'
)

const (
	MarkBlack = "x"
	MarkWhite = "o"
)

var discs = map[byte]string{black: "🔴", white: "🟡", empty: "⚪"}

var colHeader = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣"}

// directions for the in-a-row scan: horizontal, vertical, both
// diagonals. Each is walked forward and backward from the anchor.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Connect4 implements game.Game.
type Connect4 struct{}

func (Connect4) Name() string { return "connect4" }

func (Connect4) Players() int { return 2 }

func (Connect4) New() game.Board {
	b := &Board{turn: black}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	return b
}

func (g Connect4) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, 1+rows)
	if err != nil {
		return nil, err
	}
	if lines[0] != MarkBlack && lines[0] != MarkWhite {
		return nil, game.DecodeErrorf(g.Name(), "bad turn mark %q", lines[0])
	}
	grid, err := game.ParseGrid(g.Name(), lines[1:], rows, cols, "-xo")
	if err != nil {
		return nil, err
	}
	b := &Board{turn: lines[0][0]}
	for i := range b.cells {
		copy(b.cells[i][:], grid[i])
	}
	return b, nil
}

// Board holds the connect four game state. Row 0 is the top.
type Board struct {
	cells [rows][cols]byte
	turn  byte
}

func (b *Board) Turn() string { return string(b.turn) }

func (b *Board) Score() int { return 0 }

func (b *Board) Encode() string {
	lines := []string{string(b.turn)}
	for i := range b.cells {
		lines = append(lines, string(b.cells[i][:]))
	}
	return game.JoinBlob(lines...)
}

// Move drops a disc into the column named by a digit 1-7.
func (b *Board) Move(token string) error {
	if len(token) != 1 || token[0] < '1' || token[0] > '0'+cols {
		return fmt.Errorf("%w: bad column %q", game.ErrInvalidMove, token)
	}
	col := int(token[0] - '1')
	row := -1
	for i := rows - 1; i >= 0; i-- {
		if b.cells[i][col] == empty {
			row = i
			break
		}
	}
	if row < 0 {
		return fmt.Errorf("%w: column %s is full", game.ErrInvalidMove, token)
	}
	b.cells[row][col] = b.turn
	// The turn only passes while the game goes on, so the winning mark
	// is still the side to move when the result is read.
	if !b.winsAt(row, col) {
		if b.turn == black {
			b.turn = white
		} else {
			b.turn = black
		}
	}
	return nil
}

// winsAt checks for four in a row through the just-placed cell; a scan
// anchored at the new disc is enough, no full-board pass needed.
func (b *Board) winsAt(row, col int) bool {
	mark := b.cells[row][col]
	for _, d := range directions {
		count := 1
		for i, j := row+d[0], col+d[1]; i >= 0 && i < rows && j >= 0 && j < cols && b.cells[i][j] == mark; i, j = i+d[0], j+d[1] {
			count++
		}
		for i, j := row-d[0], col-d[1]; i >= 0 && i < rows && j >= 0 && j < cols && b.cells[i][j] == mark; i, j = i-d[0], j-d[1] {
			count++
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

// Result scans the whole grid so that a freshly decoded board
// evaluates the same as one the engine just mutated.
func (b *Board) Result() game.Result {
	full := true
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if b.cells[i][j] == empty {
				full = false
				continue
			}
			if b.winsAt(i, j) {
				return game.Result{Status: game.Win, Winner: string(b.cells[i][j])}
			}
		}
	}
	if full {
		return game.Result{Status: game.Draw}
	}
	return game.Result{Status: game.Ongoing}
}

func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(colHeader, "|"))
	sb.WriteByte('\n')
	for i := range b.cells {
		for j := range b.cells[i] {
			sb.WriteString(discs[b.cells[i][j]])
			sb.WriteByte('|')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
