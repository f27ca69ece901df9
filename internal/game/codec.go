package game

import "strings"

// BlobVersion is the first line of every persisted board blob. Decoders
// reject anything else so that a format change never silently corrupts
// an in-flight game.
const BlobVersion = "v1"

// JoinBlob assembles a blob from its lines, prepending the version
// header.
func JoinBlob(lines ...string) string {
	return BlobVersion + "\n" + strings.Join(lines, "\n")
}

// SplitBlob verifies the version header and expected line count and
// returns the remaining lines.
func SplitBlob(name, blob string, want int) ([]string, error) {
	lines := strings.Split(blob, "\n")
	if len(lines) == 0 || lines[0] != BlobVersion {
		return nil, DecodeErrorf(name, "unsupported blob version")
	}
	lines = lines[1:]
	if len(lines) != want {
		return nil, DecodeErrorf(name, "expected %d lines, got %d", want, len(lines))
	}
	return lines, nil
}

// ParseGrid decodes row lines into a cell grid, checking dimensions and
// that every character belongs to the game's cell enumeration.
func ParseGrid(name string, lines []string, rows, cols int, allowed string) ([][]byte, error) {
	if len(lines) != rows {
		return nil, DecodeErrorf(name, "expected %d rows, got %d", rows, len(lines))
	}
	grid := make([][]byte, rows)
	for i, ln := range lines {
		if len(ln) != cols {
			return nil, DecodeErrorf(name, "row %d: expected %d cells, got %d", i, cols, len(ln))
		}
		grid[i] = []byte(ln)
		for j := 0; j < cols; j++ {
			if !strings.ContainsRune(allowed, rune(ln[j])) {
				return nil, DecodeErrorf(name, "row %d: bad cell code %q", i, ln[j])
			}
		}
	}
	return grid, nil
}

// ParseCoord resolves a two-character coordinate token to (row, col)
// indices. The token is a column digit plus a row letter in either
// order ("c4" and "4c" are the same cell), matching how players type
// moves in chat. Returns ok=false for malformed or out-of-range input.
func ParseCoord(token string, rows, cols int) (int, int, bool) {
	if len(token) != 2 {
		return 0, 0, false
	}
	token = strings.ToLower(token)
	digit, letter := token[0], token[1]
	if digit >= 'a' {
		digit, letter = letter, digit
	}
	i := int(letter - 'a')
	j := int(digit - '1')
	if i < 0 || i >= rows || j < 0 || j >= cols {
		return 0, 0, false
	}
	return i, j, true
}
