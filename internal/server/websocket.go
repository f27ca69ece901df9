package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"nhooyr.io/websocket"
)

// boardMessage is pushed to watchers after every applied operation.
type boardMessage struct {
	ChatID string `json:"chatId"`
	Board  string `json:"board"`
}

// hub fans rendered boards out to the websocket watchers of each chat.
type hub struct {
	mu       sync.Mutex
	watchers map[string]map[chan string]struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[string]map[chan string]struct{})}
}

func (h *hub) subscribe(chat string) chan string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan string, 8)
	if h.watchers[chat] == nil {
		h.watchers[chat] = make(map[chan string]struct{})
	}
	h.watchers[chat][ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(chat string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.watchers[chat]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.watchers, chat)
		}
	}
	close(ch)
}

func (h *hub) publish(chat, board string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.watchers[chat] {
		select {
		case ch <- board:
		default:
			// slow watcher, drop the frame
		}
	}
}

// handleWatch streams every rendered board for a chat to the client.
// Watching is read-only; moves go through the REST endpoints.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	chat := r.PathValue("chat")
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		log.Printf("websocket accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	ch := s.watchers.subscribe(chat)
	defer s.watchers.unsubscribe(chat, ch)

	// First frame: the current board, or an empty one when the chat has
	// no running game. Written directly so the client knows the
	// subscription is live once it arrives.
	first := boardMessage{ChatID: chat}
	if key, err := s.manager.KeyForChat(chat); err == nil {
		if v, err := s.manager.Board(key); err == nil {
			first.Board = v.Text
		}
	}
	data, _ := json.Marshal(first)
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return
	}

	// Reader goroutine: the client sends nothing meaningful, but
	// reading surfaces disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case board, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(boardMessage{ChatID: chat, Board: board})
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
