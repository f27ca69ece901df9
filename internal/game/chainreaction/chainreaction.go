// Package chainreaction implements the chain reaction board game: two
// players place orbs on a 6x9 grid, a cell that reaches its capacity
// explodes and feeds recolored orbs to its orthogonal neighbors, and a
// player wins by eliminating every opposing orb.
package chainreaction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const (
	rows = 6
	cols = 9

	// Cell codes. 0 is empty; 1-3 are black orbs with that mass,
	// 4-6 white orbs with mass 1-3.
	empty       = '0'
	whiteOffset = 3
)

const (
	MarkBlack = "b"
	MarkWhite = "w"
)

var orbs = []string{"🔳", "🔴", "🟠", "🟡", "🟢", "🟣", "🔵"}

var (
	colHeader = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}
	rowLabels = []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫"}
)

// ChainReaction implements game.Game.
type ChainReaction struct{}

func (ChainReaction) Name() string { return "chainreaction" }

func (ChainReaction) Players() int { return 2 }

func (ChainReaction) New() game.Board {
	b := &Board{turn: MarkBlack, firstRound: 2}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	return b
}

// Decode parses a blob: firstRound line, turn line, then the cell grid.
func (g ChainReaction) Decode(blob string) (game.Board, error) {
	lines, err := game.SplitBlob(g.Name(), blob, 2+rows)
	if err != nil {
		return nil, err
	}
	fr, err := strconv.Atoi(lines[0])
	if err != nil || fr < 0 || fr > 2 {
		return nil, game.DecodeErrorf(g.Name(), "bad first-round counter %q", lines[0])
	}
	turn := lines[1]
	if turn != MarkBlack && turn != MarkWhite {
		return nil, game.DecodeErrorf(g.Name(), "bad turn mark %q", turn)
	}
	grid, err := game.ParseGrid(g.Name(), lines[2:], rows, cols, "0123456")
	if err != nil {
		return nil, err
	}
	b := &Board{turn: turn, firstRound: fr}
	for i := range b.cells {
		copy(b.cells[i][:], grid[i])
	}
	return b, nil
}

// Board holds the chain reaction game state.
type Board struct {
	cells      [rows][cols]byte
	turn       string
	firstRound int
}

func (b *Board) Turn() string { return b.turn }

func (b *Board) Score() int { return 0 }

func (b *Board) Encode() string {
	lines := []string{strconv.Itoa(b.firstRound), b.turn}
	for i := range b.cells {
		lines = append(lines, string(b.cells[i][:]))
	}
	return game.JoinBlob(lines...)
}

// mass returns the orb count of a cell regardless of owner.
func mass(c byte) int {
	m := int(c - empty)
	if m > whiteOffset {
		m -= whiteOffset
	}
	return m
}

func owned(c byte, mark string) bool {
	if c == empty {
		return false
	}
	if mark == MarkWhite {
		return c > empty+whiteOffset
	}
	return c <= empty+whiteOffset
}

// capacity is the mass at which a cell explodes: 4 interior, 3 on an
// edge, 2 in a corner.
func capacity(i, j int) int {
	c := 4
	if i == 0 || i == rows-1 {
		c--
	}
	if j == 0 || j == cols-1 {
		c--
	}
	return c
}

// Move places one orb at the given coordinate. The target must be
// empty or already owned by the mover.
func (b *Board) Move(token string) error {
	i, j, ok := game.ParseCoord(token, rows, cols)
	if !ok {
		return fmt.Errorf("%w: bad coordinate %q", game.ErrInvalidMove, token)
	}
	if c := b.cells[i][j]; c != empty && !owned(c, b.turn) {
		return fmt.Errorf("%w: cell held by opponent", game.ErrInvalidMove)
	}
	b.expand(i, j)
	if b.turn == MarkBlack {
		b.turn = MarkWhite
	} else {
		b.turn = MarkBlack
	}
	if b.firstRound > 0 {
		b.firstRound--
	}
	return nil
}

// maxCascade bounds the overflow chain. A board holding more orbs than
// its cells can stably carry never settles, so the queue needs a hard
// stop; any legitimate cascade finishes orders of magnitude sooner.
const maxCascade = rows * cols * 100

// expand adds one orb at (i, j) and runs the overflow chain with a
// FIFO work queue so stack depth stays flat on long cascades. Every
// cell touched by the chain is recolored to the mover. Each queue
// entry carries one unit of mass, applied when the entry is popped; a
// fully drained queue therefore conserves total mass plus the one
// placed orb.
func (b *Board) expand(i, j int) {
	var offset byte
	opp := MarkWhite
	if b.turn == MarkWhite {
		offset = whiteOffset
		opp = MarkBlack
	}
	oppMass := 0
	for r := range b.cells {
		for c := range b.cells[r] {
			if owned(b.cells[r][c], opp) {
				oppMass += mass(b.cells[r][c])
			}
		}
	}

	steps := 0
	queue := [][2]int{{i, j}}
	for len(queue) > 0 {
		i, j = queue[0][0], queue[0][1]
		queue = queue[1:]

		cur := b.cells[i][j]
		if owned(cur, opp) {
			oppMass -= mass(cur)
		}
		m := mass(cur) + 1
		if m < capacity(i, j) {
			b.cells[i][j] = empty + byte(m) + offset
		} else {
			b.cells[i][j] = empty
			if i > 0 {
				queue = append(queue, [2]int{i - 1, j})
			}
			if i < rows-1 {
				queue = append(queue, [2]int{i + 1, j})
			}
			if j > 0 {
				queue = append(queue, [2]int{i, j - 1})
			}
			if j < cols-1 {
				queue = append(queue, [2]int{i, j + 1})
			}
		}
		// By the time the guard trips, the cascade has recolored the
		// whole board and the defender is gone; truncating it cannot
		// change the outcome.
		if steps++; steps > maxCascade && oppMass == 0 {
			return
		}
	}
}

// Result reports a win once one side has no orbs left. During the
// first round (each player's opening move) elimination is not counted,
// otherwise the very first capture would end the game.
func (b *Board) Result() game.Result {
	black, white := 0, 0
	for i := range b.cells {
		for j := range b.cells[i] {
			c := b.cells[i][j]
			if c == empty {
				continue
			}
			if owned(c, MarkWhite) {
				white += mass(c)
			} else {
				black += mass(c)
			}
		}
	}
	points := map[string]int{MarkBlack: black, MarkWhite: white}
	if b.firstRound == 0 {
		if white == 0 {
			return game.Result{Status: game.Win, Winner: MarkBlack, Points: points}
		}
		if black == 0 {
			return game.Result{Status: game.Win, Winner: MarkWhite, Points: points}
		}
	}
	return game.Result{Status: game.Ongoing, Points: points}
}

func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(colHeader[:cols], "|"))
	sb.WriteByte('\n')
	for i := range b.cells {
		for j := range b.cells[i] {
			sb.WriteString(orbs[b.cells[i][j]-empty])
			sb.WriteByte('|')
		}
		sb.WriteString(rowLabels[i])
		sb.WriteByte('\n')
	}
	return sb.String()
}
