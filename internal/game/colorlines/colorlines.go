// Package colorlines implements the Color Lines puzzle: move one ball
// per turn along a free path, clear lines of five or more same-colored
// balls, survive the three random balls dropped after every quiet
// move.
package colorlines

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
)

const (
	size      = 9
	colors    = 7 // ball colors, cell codes '1'..'7'
	lineLen   = 5 // balls needed to clear a line
	dropCount = 3 // balls dropped after a move that clears nothing
)

const empty = '0'

var cellArt = []string{"⬜", "🔴", "🟢", "🟡", "🔵", "🟣", "🟠", "🟤"}

var (
	colHeader = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}
	rowLabels = []string{"🇦", "🇧", "🇨", "🇩", "🇪", "🇫", "🇬", "🇭", "🇮"}
)

// axes for line detection: horizontal, vertical, both diagonals.
var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// ColorLines implements game.Game.
type ColorLines struct{}

func (ColorLines) Name() string { return "colorlines" }

func (ColorLines) Players() int { return 1 }

func (ColorLines) New() game.Board {
	return newBoard(rand.New(rand.NewSource(rand.Int63())))
}

func newBoard(rng *rand.Rand) *Board {
	b := &Board{rng: rng}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	b.rollNext()
	b.drop()
	b.rollNext()
	return b
}

// Decode parses a blob: score line, high-score line, pending-ball
// line, then the cell grid.
func (g ColorLines) Decode(blob string) (game.Board, error) {
	return decode(blob, rand.New(rand.NewSource(rand.Int63())))
}

func decode(blob string, rng *rand.Rand) (*Board, error) {
	const name = "colorlines"
	lines, err := game.SplitBlob(name, blob, 3+size)
	if err != nil {
		return nil, err
	}
	score, err := strconv.Atoi(lines[0])
	if err != nil || score < 0 {
		return nil, game.DecodeErrorf(name, "bad score %q", lines[0])
	}
	high, err := strconv.Atoi(lines[1])
	if err != nil || high < 0 {
		return nil, game.DecodeErrorf(name, "bad high score %q", lines[1])
	}
	if len(lines[2]) != dropCount {
		return nil, game.DecodeErrorf(name, "expected %d pending balls, got %d", dropCount, len(lines[2]))
	}
	var next [dropCount]byte
	for i := 0; i < dropCount; i++ {
		c := lines[2][i]
		if c < '1' || c > '0'+colors {
			return nil, game.DecodeErrorf(name, "bad pending ball %q", c)
		}
		next[i] = c
	}
	grid, err := game.ParseGrid(name, lines[3:], size, size, "01234567")
	if err != nil {
		return nil, err
	}
	b := &Board{score: score, high: high, next: next, rng: rng}
	for i := range b.cells {
		copy(b.cells[i][:], grid[i])
	}
	return b, nil
}

// Board holds the color lines game state. The rng drives ball drops
// and is not part of the serialized state.
type Board struct {
	cells [size][size]byte
	next  [dropCount]byte
	score int
	high  int
	rng   *rand.Rand
}

func (b *Board) Turn() string { return "" }

func (b *Board) Score() int { return b.score }

// HighScore is the best score seen when the game started, carried for
// the end-of-game message.
func (b *Board) HighScore() int { return b.high }

func (b *Board) Encode() string {
	lines := []string{
		strconv.Itoa(b.score),
		strconv.Itoa(b.high),
		string(b.next[:]),
	}
	for i := range b.cells {
		lines = append(lines, string(b.cells[i][:]))
	}
	return game.JoinBlob(lines...)
}

func onBoard(i, j int) bool {
	return i >= 0 && i < size && j >= 0 && j < size
}

func (b *Board) freeCells() [][2]int {
	var free [][2]int
	for i := range b.cells {
		for j := range b.cells[i] {
			if b.cells[i][j] == empty {
				free = append(free, [2]int{i, j})
			}
		}
	}
	return free
}

// rollNext queues the colors of the next drop.
func (b *Board) rollNext() {
	for i := range b.next {
		b.next[i] = '1' + byte(b.rng.Intn(colors))
	}
}

// drop places the queued balls on random empty cells and clears any
// lines they complete. Returns false when the board lacks room, which
// ends the game.
func (b *Board) drop() bool {
	free := b.freeCells()
	if len(free) <= dropCount {
		return false
	}
	for _, ball := range b.next {
		k := b.rng.Intn(len(free))
		cell := free[k]
		free = append(free[:k], free[k+1:]...)
		b.cells[cell[0]][cell[1]] = ball
		b.clearLines(cell[0], cell[1])
	}
	return true
}

// pathExists runs a breadth-first search over 4-connected empty cells
// from origin to destination.
func (b *Board) pathExists(oi, oj, ei, ej int) bool {
	var visited [size][size]bool
	queue := [][2]int{{oi, oj}}
	visited[oi][oj] = true
	for len(queue) > 0 {
		i, j := queue[0][0], queue[0][1]
		queue = queue[1:]
		if i == ei && j == ej {
			return true
		}
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			r, c := i+d[0], j+d[1]
			if !onBoard(r, c) || visited[r][c] || b.cells[r][c] != empty {
				continue
			}
			visited[r][c] = true
			queue = append(queue, [2]int{r, c})
		}
	}
	return false
}

// clearLines removes every run of lineLen or more same-colored balls
// crossing (i, j) and scores the cleared balls. Returns whether
// anything was cleared.
func (b *Board) clearLines(i, j int) bool {
	color := b.cells[i][j]
	if color == empty {
		return false
	}
	clear := map[[2]int]bool{}
	for _, a := range axes {
		run := [][2]int{{i, j}}
		for r, c := i+a[0], j+a[1]; onBoard(r, c) && b.cells[r][c] == color; r, c = r+a[0], c+a[1] {
			run = append(run, [2]int{r, c})
		}
		for r, c := i-a[0], j-a[1]; onBoard(r, c) && b.cells[r][c] == color; r, c = r-a[0], c-a[1] {
			run = append(run, [2]int{r, c})
		}
		if len(run) >= lineLen {
			for _, cell := range run {
				clear[cell] = true
			}
		}
	}
	if len(clear) == 0 {
		return false
	}
	// Longer lines multiply up: 10 points per ball, doubled for each
	// ball past the minimum.
	n := len(clear)
	b.score += 10 * n * (n%lineLen + 1)
	for cell := range clear {
		b.cells[cell[0]][cell[1]] = empty
	}
	return true
}

// Move takes a four-character token naming origin and destination
// cells. The ball slides along a 4-connected path of empty cells; if
// the move completes no line, the pending balls drop.
func (b *Board) Move(token string) error {
	if len(token) != 4 {
		return fmt.Errorf("%w: bad token %q", game.ErrInvalidMove, token)
	}
	oi, oj, ok := game.ParseCoord(token[:2], size, size)
	if !ok {
		return fmt.Errorf("%w: bad origin %q", game.ErrInvalidMove, token[:2])
	}
	ei, ej, ok := game.ParseCoord(token[2:], size, size)
	if !ok {
		return fmt.Errorf("%w: bad destination %q", game.ErrInvalidMove, token[2:])
	}
	if b.cells[oi][oj] == empty {
		return fmt.Errorf("%w: no ball at origin", game.ErrInvalidMove)
	}
	if b.cells[ei][ej] != empty {
		return fmt.Errorf("%w: destination occupied", game.ErrInvalidMove)
	}
	if !b.pathExists(oi, oj, ei, ej) {
		return fmt.Errorf("%w: no free path", game.ErrInvalidMove)
	}
	b.cells[ei][ej] = b.cells[oi][oj]
	b.cells[oi][oj] = empty
	if !b.clearLines(ei, ej) {
		if b.drop() {
			b.rollNext()
		}
	}
	return nil
}

// Result is a loss once too few cells remain free for the next drop;
// there is no winning state, only a final score.
func (b *Board) Result() game.Result {
	if len(b.freeCells()) <= dropCount {
		return game.Result{Status: game.Loss}
	}
	return game.Result{Status: game.Ongoing}
}

func (b *Board) Render() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(colHeader, "|"))
	sb.WriteByte('\n')
	for i := range b.cells {
		for j := range b.cells[i] {
			sb.WriteString(cellArt[b.cells[i][j]-empty])
			sb.WriteByte('|')
		}
		sb.WriteString(rowLabels[i])
		sb.WriteByte('\n')
	}
	sb.WriteString("\nNext: ")
	for _, c := range b.next {
		sb.WriteString(cellArt[c-empty])
	}
	sb.WriteString("  Score: " + strconv.Itoa(b.score))
	return sb.String()
}
