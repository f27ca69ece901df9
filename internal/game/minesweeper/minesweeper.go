// Package minesweeper implements single-player minesweeper on a 9x9
// grid with a random 10-20 mines.
package minesweeper

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const size = 9

const (
	mine   = 'M' // hidden mine
	boom   = 'B' // the mine that ended the game
	hidden = '_'
)

const (
	mineArt = "💣"
	flagArt = "🚩"
)

var cellArt = map[byte]string{
	boom:   "💥",
	hidden: "🔲",
	'0':    "⬜",
	'1':    "1️⃣",
	'2':    "2️⃣",
	'3':    "3️⃣",
	'4':    "4️⃣",
	'5':    "5️⃣",
	'6':    "6️⃣",
	'7':    "7️⃣",
	'8':    "8️⃣",
}

var (
	colHeader = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}
	rowLabels = []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮"}
)

var neighborhood = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1},
}

// Minesweeper implements game.Game.
type Minesweeper struct{}

func (Minesweeper) Name() string { return "minesweeper" }

func (Minesweeper) Players() int { return 1 }

func (Minesweeper) New() game.Board {
	return newBoard(rand.New(rand.NewSource(rand.Int63())))
}

func newBoard(rng *rand.Rand) *Board {
	b := &Board{}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = hidden
		}
	}
	mines := 10 + rng.Intn(11)
	for placed := 0; placed < mines; {
		i, j := rng.Intn(size), rng.Intn(size)
		if b.cells[i][j] != mine {
			b.cells[i][j] = mine
			placed++
		}
	}
	return b
}

func (g Minesweeper) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, size)
	if err != nil {
		return nil, err
	}
	grid, err := game.ParseGrid(g.Name(), lines, size, size, "MB_012345678")
	if err != nil {
		return nil, err
	}
	b := &Board{}
	for i := range b.cells {
		copy(b.cells[i][:], grid[i])
	}
	return b, nil
}

// Board holds the minesweeper game state.
type Board struct {
	cells [size][size]byte
}

func (b *Board) Turn() string { return "" }

// Score counts the safely revealed cells.
func (b *Board) Score() int {
	n := 0
	for i := range b.cells {
		for j := range b.cells[i] {
			if c := b.cells[i][j]; c >= '0' && c <= '8' {
				n++
			}
		}
	}
	return n
}

func (b *Board) Encode() string {
	lines := make([]string, size)
	for i := range b.cells {
		lines[i] = string(b.cells[i][:])
	}
	return game.JoinBlob(lines...)
}

func onBoard(i, j int) bool {
	return i >= 0 && i < size && j >= 0 && j < size
}

func (b *Board) countMines(i, j int) int {
	n := 0
	for _, d := range neighborhood {
		if r, c := i+d[0], j+d[1]; onBoard(r, c) && (b.cells[r][c] == mine || b.cells[r][c] == boom) {
			n++
		}
	}
	return n
}

// Move reveals one hidden cell.
func (b *Board) Move(token string) error {
	i, j, ok := game.ParseCoord(token, size, size)
	if !ok {
		return fmt.Errorf("%w: bad coordinate %q", game.ErrInvalidMove, token)
	}
	switch b.cells[i][j] {
	case mine:
		b.cells[i][j] = boom
		return nil
	case hidden:
		b.reveal(i, j)
		return nil
	}
	return fmt.Errorf("%w: cell already revealed", game.ErrInvalidMove)
}

// reveal uncovers (i, j) and cascades through the connected
// zero-adjacency region with an iterative work list. Mines are never
// part of the cascade: a cell only enters the list while hidden.
func (b *Board) reveal(i, j int) {
	work := [][2]int{{i, j}}
	for len(work) > 0 {
		i, j = work[len(work)-1][0], work[len(work)-1][1]
		work = work[:len(work)-1]
		n := b.countMines(i, j)
		b.cells[i][j] = '0' + byte(n)
		if n != 0 {
			continue
		}
		for _, d := range neighborhood {
			if r, c := i+d[0], j+d[1]; onBoard(r, c) && b.cells[r][c] == hidden {
				work = append(work, [2]int{r, c})
			}
		}
	}
}

// Result is Loss once a mine blew up, Win when no hidden non-mine
// cells remain.
func (b *Board) Result() game.Result {
	over := true
	for i := range b.cells {
		for j := range b.cells[i] {
			switch b.cells[i][j] {
			case boom:
				return game.Result{Status: game.Loss}
			case hidden:
				over = false
			}
		}
	}
	if over {
		return game.Result{Status: game.Win}
	}
	return game.Result{Status: game.Ongoing}
}

// Render draws the grid. While the game runs, mines render as hidden
// cells; on a loss every mine is exposed, on a win they show as flags.
func (b *Board) Render() string {
	status := b.Result().Status
	var sb strings.Builder
	sb.WriteString(strings.Join(colHeader, "|"))
	sb.WriteByte('\n')
	for i := range b.cells {
		for j := range b.cells[i] {
			c := b.cells[i][j]
			switch {
			case c == mine && status == game.Loss:
				sb.WriteString(mineArt)
			case c == mine && status == game.Win:
				sb.WriteString(flagArt)
			case c == mine:
				sb.WriteString(cellArt[hidden])
			default:
				sb.WriteString(cellArt[c])
			}
			sb.WriteByte('|')
		}
		sb.WriteString(rowLabels[i])
		sb.WriteByte('\n')
	}
	return sb.String()
}
