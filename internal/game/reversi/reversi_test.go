package reversi

import (
	"errors"
	"testing"

	"github.com/janekc/deltabot-games/internal/game"
)

func TestOpeningPosition(t *testing.T) {
	b := Reversi{}.New().(*Board)
	if b.Turn() != MarkBlack {
		t.Fatalf("expected black to move first, got %q", b.Turn())
	}
	nb, nw := b.count()
	if nb != 2 || nw != 2 {
		t.Fatalf("expected 2-2 start, got %d-%d", nb, nw)
	}
	if r := b.Result(); r.Status != game.Ongoing {
		t.Fatalf("expected ongoing, got %v", r.Status)
	}
}

func TestOpeningMoveFlipsOneDisc(t *testing.T) {
	b := Reversi{}.New().(*Board)
	// d6 brackets the white disc on d5 against black d4.
	if err := b.Move("6d"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nb, nw := b.count()
	if nb != 4 || nw != 1 {
		t.Fatalf("expected 4-1 after opening, got %d-%d", nb, nw)
	}
	if b.cells[3][4] != black {
		t.Fatal("bracketed disc should have flipped")
	}
	if b.Turn() != MarkWhite {
		t.Fatalf("expected white to move, got %q", b.Turn())
	}
}

func TestZeroCaptureRejected(t *testing.T) {
	b := Reversi{}.New().(*Board)
	before := b.Encode()
	// a1 is empty but captures nothing.
	err := b.Move("1a")
	if !errors.Is(err, game.ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if b.Encode() != before {
		t.Fatal("rejected move must not mutate the board")
	}
}

func TestOccupiedCellRejected(t *testing.T) {
	b := Reversi{}.New().(*Board)
	if err := b.Move("4d"); !errors.Is(err, game.ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove on occupied cell, got %v", err)
	}
}

func TestOpponentWithoutReplyIsSkipped(t *testing.T) {
	b := &Board{turn: black}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	b.cells[0][0] = black
	b.cells[0][1] = white
	b.cells[2][0] = black
	b.cells[2][1] = white
	// Capturing on row a leaves white only the disc on row c, with no
	// legal reply anywhere, so the turn stays with black.
	if err := b.Move("3a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Turn() != MarkBlack {
		t.Fatalf("expected black to keep the turn, got %q", b.Turn())
	}
	if r := b.Result(); r.Status != game.Ongoing {
		t.Fatalf("expected ongoing while black can still move, got %v", r.Status)
	}
	// Black finishes the remaining line and the game ends.
	if err := b.Move("3c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := b.Result(); r.Status != game.Win || r.Winner != MarkBlack {
		t.Fatalf("expected black win, got %+v", r)
	}
}

func TestDoubleNoMoveIsTerminal(t *testing.T) {
	b := &Board{turn: black}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	b.cells[0][0] = black
	b.cells[0][1] = white
	if err := b.Move("3a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Board is all black now; neither side has a move.
	r := b.Result()
	if r.Status != game.Win || r.Winner != MarkBlack {
		t.Fatalf("expected black win, got %+v", r)
	}
	if r.Points[MarkBlack] != 3 || r.Points[MarkWhite] != 0 {
		t.Fatalf("expected 3-0, got %+v", r.Points)
	}
}

func TestDrawOnEqualCount(t *testing.T) {
	b := &Board{turn: black}
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = empty
		}
	}
	// Two separated discs, no legal move for either side.
	b.cells[0][0] = black
	b.cells[7][7] = white
	r := b.Result()
	if r.Status != game.Draw {
		t.Fatalf("expected draw, got %+v", r)
	}
}

func TestRoundTrip(t *testing.T) {
	g := Reversi{}
	b := g.New().(*Board)
	for _, mv := range []string{"6d", "6c", "5c"} {
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
		t.Fatal("round trip mismatch")
	}
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	g := Reversi{}
	cases := []string{
		"",
		"v1\nx",
		"v1\nz\n--------\n--------\n--------\n--------\n--------\n--------\n--------\n--------",
		"v1\nx\n--------\n--------\n--------\n---q----\n--------\n--------\n--------\n--------",
		"v1\nx\n-------\n--------\n--------\n--------\n--------\n--------\n--------\n--------",
	}
	for _, blob := range cases {
		var de *game.DecodeError
		if _, err := g.Decode(blob); !errors.As(err, &de) {
			t.Fatalf("blob %q: expected DecodeError, got %v", blob, err)
		}
	}
}
