// Package reversi implements Othello: a placement is legal only if it
// brackets at least one line of opposing discs, which all flip to the
// mover's color.
package reversi

import (
	"fmt"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const size = 8

const (
	empty = '-'
	black = 'x'
	white = 'o'
)

const (
	MarkBlack = "x"
	MarkWhite = "o"
)

var directions = [8][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

var discs = map[byte]string{black: "🔴", white: "🔵", empty: "⬜"}

var (
	colHeader = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣"}
	rowLabels = "ABCDEFGH"
)

// Reversi implements game.Game.
type Reversi struct{}

func (Reversi) Name() string { return "reversi" }

func (Reversi) Players() int { return 2 }

func (Reversi) New() game.Board {
	b := &Board{turn: black}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	b.cells[3][3] = black
	b.cells[3][4] = white
	b.cells[4][3] = white
	b.cells[4][4] = black
	return b
}

func (g Reversi) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, 1+size)
	if err != nil {
		return nil, err
	}
	if lines[0] != MarkBlack && lines[0] != MarkWhite {
		return nil, game.DecodeErrorf(g.Name(), "bad turn mark %q", lines[0])
	}
	grid, err := game.ParseGrid(g.Name(), lines[1:], size, size, "-xo")
	if err != nil {
		return nil, err
	}
	b := &Board{turn: lines[0][0]}
	for i := range b.cells {
		copy(b.cells[i][:], grid[i])
	}
	return b, nil
}

// Board holds the reversi game state.
type Board struct {
	cells [size][size]byte
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

func other(mark byte) byte {
	if mark == black {
		return white
	}
	return black
}

func onBoard(i, j int) bool {
	return i >= 0 && i < size && j >= 0 && j < size
}

// flipped collects the opposing discs captured by placing mark at
// (i, j): for each of the 8 directions, a run of opponent discs closed
// off by an own disc.
func (b *Board) flipped(mark byte, i, j int) [][2]int {
	if b.cells[i][j] != empty {
		return nil
	}
	opp := other(mark)
	var flips [][2]int
	for _, d := range directions {
		ni, nj := i+d[0], j+d[1]
		for onBoard(ni, nj) && b.cells[ni][nj] == opp {
			ni += d[0]
			nj += d[1]
		}
		if !onBoard(ni, nj) || b.cells[ni][nj] != mark {
			continue
		}
		for {
			ni -= d[0]
			nj -= d[1]
			if ni == i && nj == j {
				break
			}
			flips = append(flips, [2]int{ni, nj})
		}
	}
	return flips
}

// hasMove reports whether mark has any legal placement.
func (b *Board) hasMove(mark byte) bool {
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if b.cells[i][j] == empty && len(b.flipped(mark, i, j)) > 0 {
				return true
			}
		}
	}
	return false
}

// Move places a disc. A placement that captures nothing is illegal
// even on an empty cell. If the opponent then has no reply the turn
// stays with the mover; when neither side can move the game is over
// and Result counts discs.
func (b *Board) Move(token string) error {
	i, j, ok := game.ParseCoord(token, size, size)
	if !ok {
		return fmt.Errorf("%w: bad coordinate %q", game.ErrInvalidMove, token)
	}
	flips := b.flipped(b.turn, i, j)
	if len(flips) == 0 {
		return fmt.Errorf("%w: no discs flipped", game.ErrInvalidMove)
	}
	b.cells[i][j] = b.turn
	for _, f := range flips {
		b.cells[f[0]][f[1]] = b.turn
	}
	if b.hasMove(other(b.turn)) {
		b.turn = other(b.turn)
	}
	return nil
}

func (b *Board) count() (int, int) {
	nb, nw := 0, 0
	for i := range b.cells {
		for j := range b.cells[i] {
			switch b.cells[i][j] {
			case black:
				nb++
			case white:
				nw++
			}
		}
	}
	return nb, nw
}

// Result is terminal only when neither side has a legal move, not
// merely when the board is full.
func (b *Board) Result() game.Result {
	nb, nw := b.count()
	points := map[string]int{MarkBlack: nb, MarkWhite: nw}
	if b.hasMove(black) || b.hasMove(white) {
		return game.Result{Status: game.Ongoing, Points: points}
	}
	switch {
	case nb > nw:
		return game.Result{Status: game.Win, Winner: MarkBlack, Points: points}
	case nw > nb:
		return game.Result{Status: game.Win, Winner: MarkWhite, Points: points}
	}
	return game.Result{Status: game.Draw, Points: points}
}

func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString("#|" + strings.Join(colHeader, "|") + "|#\n")
	for i := range b.cells {
		sb.WriteByte(rowLabels[i])
		sb.WriteByte('|')
		for j := range b.cells[i] {
			sb.WriteString(discs[b.cells[i][j]])
			sb.WriteByte('|')
		}
		sb.WriteByte(rowLabels[i])
		sb.WriteByte('\n')
	}
	sb.WriteString("#|" + strings.Join(colHeader, "|") + "|#")
	return sb.String()
}
