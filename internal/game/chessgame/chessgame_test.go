package chessgame

import (
	"errors"
	"testing"

	"github.com/janekc/deltabot-games/internal/game"
)

func TestWhiteMovesFirst(t *testing.T) {
	b := Chess{}.New().(*Board)
	if b.Turn() != MarkWhite {
		t.Fatalf("expected white to move, got %q", b.Turn())
	}
	if err := b.Move("e4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Turn() != MarkBlack {
		t.Fatalf("expected black to move, got %q", b.Turn())
	}
}

func TestIllegalMoveRejected(t *testing.T) {
	b := Chess{}.New().(*Board)
	before := b.Encode()
	for _, tok := range []string{"", "e5", "Ke2", "zz9", "e4 e5"} {
		if err := b.Move(tok); !errors.Is(err, game.ErrInvalidMove) {
			t.Fatalf("token %q: expected ErrInvalidMove, got %v", tok, err)
		}
	}
	if b.Encode() != before {
		t.Fatal("rejected moves must not mutate the board")
	}
}

func TestScholarsMate(t *testing.T) {
	b := Chess{}.New().(*Board)
	for _, mv := range []string{"e4", "e5", "Bc4", "Nc6", "Qh5", "Nf6"} {
		if err := b.Move(mv); err != nil {
			t.Fatalf("move %q: %v", mv, err)
		}
		if r := b.Result(); r.Status != game.Ongoing {
			t.Fatalf("game ended early after %q: %+v", mv, r)
		}
	}
	if err := b.Move("Qxf7#"); err != nil {
		t.Fatalf("mating move: %v", err)
	}
	r := b.Result()
	if r.Status != game.Win || r.Winner != MarkWhite {
		t.Fatalf("expected white win, got %+v", r)
	}
}

func TestFoolsMateBlackWins(t *testing.T) {
	b := Chess{}.New().(*Board)
	for _, mv := range []string{"f3", "e5", "g4", "Qh4#"} {
		if err := b.Move(mv); err != nil {
			t.Fatalf("move %q: %v", mv, err)
		}
	}
	r := b.Result()
	if r.Status != game.Win || r.Winner != MarkBlack {
		t.Fatalf("expected black win, got %+v", r)
	}
}

func TestRoundTrip(t *testing.T) {
	g := Chess{}
	b := g.New().(*Board)
	for _, mv := range []string{"d4", "d5", "c4", "e6", "Nc3"} {
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
	if decoded.Turn() != MarkBlack {
		t.Fatalf("expected black to move after replay, got %q", decoded.Turn())
	}
}

func TestDecodeEmptyGame(t *testing.T) {
	b, err := Chess{}.Decode("v1\n")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Turn() != MarkWhite {
		t.Fatalf("expected a fresh game, got turn %q", b.Turn())
	}
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	cases := []string{
		"",
		"v0\ne4",
		"v1\ne4 e5 zz9",
		"v1\ne5",
	}
	for _, blob := range cases {
		var de *game.DecodeError
		if _, err := (Chess{}).Decode(blob); !errors.As(err, &de) {
			t.Fatalf("blob %q: expected DecodeError, got %v", blob, err)
		}
	}
}
