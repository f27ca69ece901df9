package session

import "strings"

// Session keys identify who is playing, not where. A two-player pair
// gets the same key whichever side starts the game, so one pair holds
// at most one running game at a time.

// PairKey keys a two-player session. Order-independent.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "pair:" + a + "|" + b
}

// SoloKey keys a single-player session.
func SoloKey(addr string) string {
	return "solo:" + addr
}

// ChatKey keys a session by its chat alone, for games hosted in a
// group rather than between two fixed members.
func ChatKey(id string) string {
	return "chat:" + id
}

// ChatHosted reports whether a key names a chat-hosted session rather
// than a fixed player set.
func ChatHosted(key string) bool {
	return strings.HasPrefix(key, "chat:")
}
