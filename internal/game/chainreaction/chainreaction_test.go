package chainreaction

import (
	"errors"
	"testing"

	"github.com/janekc/deltabot-games/internal/game"
)

func totalMass(b *Board) int {
	total := 0
	for i := range b.cells {
		for j := range b.cells[i] {
			total += mass(b.cells[i][j])
		}
	}
	return total
}

func TestNewBoard(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	if b.Turn() != MarkBlack {
		t.Fatalf("expected black to move first, got %q", b.Turn())
	}
	if b.firstRound != 2 {
		t.Fatalf("expected first-round counter 2, got %d", b.firstRound)
	}
	if totalMass(b) != 0 {
		t.Fatal("expected empty board")
	}
}

func TestMoveAddsMassAndFlipsTurn(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	if err := b.Move("5c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := totalMass(b); got != 1 {
		t.Fatalf("expected total mass 1, got %d", got)
	}
	if b.Turn() != MarkWhite {
		t.Fatalf("expected turn to pass to white, got %q", b.Turn())
	}
	if b.firstRound != 1 {
		t.Fatalf("expected first-round counter 1, got %d", b.firstRound)
	}
}

func TestCoordinateOrderIndependent(t *testing.T) {
	a := ChainReaction{}.New().(*Board)
	b := ChainReaction{}.New().(*Board)
	if err := a.Move("3b"); err != nil {
		t.Fatalf("3b: %v", err)
	}
	if err := b.Move("b3"); err != nil {
		t.Fatalf("b3: %v", err)
	}
	if a.Encode() != b.Encode() {
		t.Fatal("3b and b3 should resolve to the same cell")
	}
}

func TestMoveOntoOpponentCellIllegal(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	if err := b.Move("5c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := b.Encode()
	err := b.Move("5c") // white onto black's orb
	if !errors.Is(err, game.ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if b.Encode() != before {
		t.Fatal("illegal move must not mutate the board")
	}
}

func TestMalformedTokens(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	for _, tok := range []string{"", "c", "c4x", "z9", "0a", "aa", "44"} {
		if err := b.Move(tok); !errors.Is(err, game.ErrInvalidMove) {
			t.Fatalf("token %q: expected ErrInvalidMove, got %v", tok, err)
		}
	}
}

func TestCornerExplosion(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	// Corner a1 has capacity 2: two black placements explode it into
	// its two neighbors.
	if err := b.Move("1a"); err != nil {
		t.Fatalf("first placement: %v", err)
	}
	b.turn = MarkBlack // place again as black
	if err := b.Move("1a"); err != nil {
		t.Fatalf("second placement: %v", err)
	}
	if b.cells[0][0] != empty {
		t.Fatalf("corner should have exploded, got %q", b.cells[0][0])
	}
	if b.cells[0][1] != empty+1 || b.cells[1][0] != empty+1 {
		t.Fatalf("neighbors should hold one black orb each, got %q and %q",
			b.cells[0][1], b.cells[1][0])
	}
	if got := totalMass(b); got != 2 {
		t.Fatalf("mass must be conserved: expected 2, got %d", got)
	}
}

func TestChainRecolorsCapturedOrbs(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	b.firstRound = 0
	// White orb next to a primed black corner gets captured when the
	// corner explodes.
	b.cells[0][0] = empty + 1               // black, mass 1
	b.cells[0][1] = empty + whiteOffset + 1 // white, mass 1
	b.turn = MarkBlack
	if err := b.Move("1a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owned(b.cells[0][1], MarkBlack) {
		t.Fatalf("captured orb should be black, got %q", b.cells[0][1])
	}
	if got := totalMass(b); got != 3 {
		t.Fatalf("expected total mass 3, got %d", got)
	}
}

func TestEliminationWinAfterFirstRound(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	b.firstRound = 0
	b.cells[2][3] = empty + 2 // black, mass 2
	b.cells[2][4] = empty + whiteOffset + 1
	b.turn = MarkBlack
	// Not terminal yet: both sides hold orbs.
	if r := b.Result(); r.Status != game.Ongoing {
		t.Fatalf("expected ongoing, got %v", r.Status)
	}
	// An interior cell needs mass 4 to explode; prime it.
	b.cells[2][3] = empty + 3
	if err := b.Move("4c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := b.Result()
	if r.Status != game.Win || r.Winner != MarkBlack {
		t.Fatalf("expected black win, got %+v", r)
	}
	if r.Points[MarkWhite] != 0 {
		t.Fatalf("expected white mass 0, got %d", r.Points[MarkWhite])
	}
}

func TestFirstRoundSuppressesWin(t *testing.T) {
	b := ChainReaction{}.New().(*Board)
	// Before anyone has placed an orb both masses are zero; the
	// first-round guard keeps that from reading as a win.
	if r := b.Result(); r.Status != game.Ongoing {
		t.Fatalf("expected ongoing on fresh board, got %v", r.Status)
	}
	if err := b.Move("1a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// White holds no orbs yet, but its opening move is still pending.
	if r := b.Result(); r.Status != game.Ongoing {
		t.Fatalf("expected ongoing during first round, got %v", r.Status)
	}
}

func TestRoundTrip(t *testing.T) {
	g := ChainReaction{}
	b := g.New().(*Board)
	moves := []string{"1a", "9f", "1a", "8f", "2a", "9f"}
	for _, mv := range moves {
		if err := b.Move(mv); err != nil {
			t.Fatalf("move %q: %v", mv, err)
		}
	}
	blob := b.Encode()
	decoded, err := g.Decode(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Encode() != blob {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", decoded.Encode(), blob)
	}
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	g := ChainReaction{}
	cases := map[string]string{
		"bad version":   "v9\n2\nb\n000000000",
		"missing rows":  "v1\n2\nb\n000000000",
		"bad cell code": "v1\n2\nb\n000000007\n000000000\n000000000\n000000000\n000000000\n000000000",
		"bad turn":      "v1\n2\nq\n000000000\n000000000\n000000000\n000000000\n000000000\n000000000",
		"bad counter":   "v1\n9\nb\n000000000\n000000000\n000000000\n000000000\n000000000\n000000000",
	}
	for name, blob := range cases {
		var de *game.DecodeError
		if _, err := g.Decode(blob); !errors.As(err, &de) {
			t.Fatalf("%s: expected DecodeError, got %v", name, err)
		}
	}
}

func TestLongCascadeConservesMass(t *testing.T) {
	// Prime the top three rows one orb below capacity and trigger a
	// multi-generation cascade. The rest of the board absorbs it, so
	// the queue drains and mass is conserved.
	b := ChainReaction{}.New().(*Board)
	b.firstRound = 0
	for i := 0; i < 3; i++ {
		for j := 0; j < cols; j++ {
			b.cells[i][j] = empty + byte(capacity(i, j)-1)
		}
	}
	b.cells[5][8] = empty + whiteOffset + 1 // keep white alive
	b.turn = MarkBlack
	before := totalMass(b)
	if err := b.Move("1a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := totalMass(b); got != before+1 {
		t.Fatalf("mass not conserved: had %d, got %d", before, got)
	}
}

func TestTotalCaptureCascadeTerminates(t *testing.T) {
	// Every cell primed at capacity minus one is unstable: without the
	// full-capture early exit the overflow would feed itself forever.
	b := ChainReaction{}.New().(*Board)
	b.firstRound = 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			b.cells[i][j] = empty + byte(capacity(i, j)-1)
		}
	}
	b.cells[3][4] = empty + whiteOffset + 3 // white orbs to capture
	b.turn = MarkBlack
	if err := b.Move("1a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := b.Result()
	if r.Status != game.Win || r.Winner != MarkBlack {
		t.Fatalf("expected black win after total capture, got %+v", r)
	}
}
