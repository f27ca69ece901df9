package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/janekc/deltabot-games/internal/game"
	"github.com/janekc/deltabot-games/internal/game/connect4"
	"github.com/janekc/deltabot-games/internal/game/minesweeper"
	"github.com/janekc/deltabot-games/internal/game/reversi"
	"github.com/janekc/deltabot-games/internal/session"
	"github.com/janekc/deltabot-games/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts    *httptest.Server
	mgr   *session.Manager
	store *storage.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	reg := game.NewRegistry()
	reg.Register(connect4.Connect4{})
	reg.Register(reversi.Reversi{})
	reg.Register(minesweeper.Minesweeper{})
	mgr := session.NewManager(reg, store)

	srv := New(reg, mgr)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr, store: store}
}

// --- REST helpers ---

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeView(t *testing.T, resp *http.Response) view {
	t.Helper()
	defer resp.Body.Close()
	var v view
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

// startConnect4 starts an alice-vs-bob connect four game in the given
// chat, alice to move.
func startConnect4(t *testing.T, env *testEnv, chat string) view {
	t.Helper()
	body := `{"chatId":"` + chat + `","starter":"alice","players":["alice","bob"]}`
	resp := postJSON(t, env.ts.URL+"/api/games/connect4/sessions", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", resp.StatusCode)
	}
	return decodeView(t, resp)
}

func moveJSON(player, token string) string {
	return `{"player":"` + player + `","token":"` + token + `"}`
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, chat string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/chats/" + chat + "/ws"
}

func wsDial(t *testing.T, ts *httptest.Server, chat string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, chat), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	return conn
}

// readBoard reads one board frame from a watcher connection.
func readBoard(t *testing.T, conn *websocket.Conn) boardMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var msg boardMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal board message: %v", err)
	}
	return msg
}
