// Package sudoku implements single-player sudoku. Boards are generated
// by backtracking: fill a full valid grid, then blank cells to leave
// the puzzle's givens. Givens are immutable; every other cell can be
// written or cleared.
package sudoku

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const (
	size   = 9
	box    = 3
	givens = 40 // cells left filled by the generator
)

const blank = '0'

var cellArt = []string{"⬜", "1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

var (
	colHeader = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}
	rowLabels = []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮"}
)

// Sudoku implements game.Game.
type Sudoku struct{}

func (Sudoku) Name() string { return "sudoku" }

func (Sudoku) Players() int { return 1 }

func (Sudoku) New() game.Board {
	return newBoard(rand.New(rand.NewSource(rand.Int63())))
}

func newBoard(rng *rand.Rand) *Board {
	b := &Board{}
	fill(&b.cells, 0, rng)
	order := rng.Perm(size * size)
	for _, k := range order[:size*size-givens] {
		b.cells[k/size][k%size] = blank
	}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.base[i][j] = b.cells[i][j] != blank
		}
	}
	return b
}

// fill completes the grid from cell k onward, trying candidate digits
// in random order and backtracking on dead ends.
func fill(cells *[size][size]byte, k int, rng *rand.Rand) bool {
	if k == size*size {
		return true
	}
	i, j := k/size, k%size
	for _, d := range rng.Perm(size) {
		digit := byte('1' + d)
		if conflicts(cells, i, j, digit) {
			continue
		}
		cells[i][j] = digit
		if fill(cells, k+1, rng) {
			return true
		}
	}
	cells[i][j] = blank
	return false
}

// conflicts reports whether placing digit at (i, j) repeats it in the
// row, column, or 3x3 box. The cell itself is ignored.
func conflicts(cells *[size][size]byte, i, j int, digit byte) bool {
	for k := 0; k < size; k++ {
		if k != j && cells[i][k] == digit {
			return true
		}
		if k != i && cells[k][j] == digit {
			return true
		}
	}
	bi, bj := i/box*box, j/box*box
	for r := bi; r < bi+box; r++ {
		for c := bj; c < bj+box; c++ {
			if (r != i || c != j) && cells[r][c] == digit {
				return true
			}
		}
	}
	return false
}

// Decode parses a blob: a mask line marking the givens, then the grid.
func (g Sudoku) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, 1+size)
	if err != nil {
		return nil, err
	}
	mask := lines[0]
	if len(mask) != size*size {
		return nil, game.DecodeErrorf(g.Name(), "mask length %d, want %d", len(mask), size*size)
	}
	grid, err := game.ParseGrid(g.Name(), lines[1:], size, size, "0123456789")
	if err != nil {
		return nil, err
	}
	b := &Board{}
	for i := range b.cells {
		copy(b.cells[i][:], grid[i])
	}
	for k, c := range []byte(mask) {
		i, j := k/size, k%size
		switch c {
		case '#':
			if b.cells[i][j] == blank {
				return nil, game.DecodeErrorf(g.Name(), "given cell %d,%d is blank", i, j)
			}
			b.base[i][j] = true
		case '.':
		default:
			return nil, game.DecodeErrorf(g.Name(), "bad mask byte %q", c)
		}
	}
	return b, nil
}

// Board holds the sudoku game state. base marks the generator's givens.
type Board struct {
	cells [size][size]byte
	base  [size][size]bool
}

func (b *Board) Turn() string { return "" }

// Score counts the cells the player filled in.
func (b *Board) Score() int {
	n := 0
	for i := range b.cells {
		for j := range b.cells[i] {
			if b.cells[i][j] != blank && !b.base[i][j] {
				n++
			}
		}
	}
	return n
}

func (b *Board) Encode() string {
	mask := make([]byte, 0, size*size)
	for i := range b.base {
		for j := range b.base[i] {
			if b.base[i][j] {
				mask = append(mask, '#')
			} else {
				mask = append(mask, '.')
			}
		}
	}
	lines := []string{string(mask)}
	for i := range b.cells {
		lines = append(lines, string(b.cells[i][:]))
	}
	return game.JoinBlob(lines...)
}

// Move takes a coordinate followed by a digit, e.g. "3b5". Digit 0
// clears the cell. Givens cannot be touched, and a placed digit must
// not conflict with its row, column, or box.
func (b *Board) Move(token string) error {
	if len(token) != 3 {
		return fmt.Errorf("%w: bad token %q", game.ErrInvalidMove, token)
	}
	i, j, ok := game.ParseCoord(token[:2], size, size)
	if !ok {
		return fmt.Errorf("%w: bad coordinate %q", game.ErrInvalidMove, token[:2])
	}
	digit := token[2]
	if digit < '0' || digit > '9' {
		return fmt.Errorf("%w: bad digit %q", game.ErrInvalidMove, digit)
	}
	if b.base[i][j] {
		return fmt.Errorf("%w: cell is a given", game.ErrInvalidMove)
	}
	if digit == blank {
		b.cells[i][j] = blank
		return nil
	}
	if conflicts(&b.cells, i, j, digit) {
		return fmt.Errorf("%w: %c already in row, column, or box", game.ErrInvalidMove, digit)
	}
	b.cells[i][j] = digit
	return nil
}

// Result is Win once every cell holds a digit and the grid is
// conflict-free. Decoded boards are re-checked in full; the move
// validator alone already keeps live boards consistent.
func (b *Board) Result() game.Result {
	for i := range b.cells {
		for j := range b.cells[i] {
			d := b.cells[i][j]
			if d == blank || conflicts(&b.cells, i, j, d) {
				return game.Result{Status: game.Ongoing}
			}
		}
	}
	return game.Result{Status: game.Win}
}

func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(colHeader, "|"))
	sb.WriteByte('\n')
	for i := range b.cells {
		for j := range b.cells[i] {
			sb.WriteString(cellArt[b.cells[i][j]-blank])
			sb.WriteByte('|')
		}
		sb.WriteString(rowLabels[i])
		sb.WriteByte('\n')
	}
	return sb.String()
}
