// Package server exposes the session manager over HTTP for bot hosts:
// JSON endpoints for starting games and playing moves, and a websocket
// feed of rendered boards per chat.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/janekc/deltabot-games/internal/game"
	"github.com/janekc/deltabot-games/internal/session"
)

// Server is the HTTP server.
type Server struct {
	mux      *http.ServeMux
	registry *game.Registry
	manager  *session.Manager
	watchers *hub
}

// New creates a server with all routes.
func New(registry *game.Registry, manager *session.Manager) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		registry: registry,
		manager:  manager,
		watchers: newHub(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("POST /api/games/{name}/sessions", s.handleStartGame)
	s.mux.HandleFunc("GET /api/games/{name}/scores", s.handleScores)
	s.mux.HandleFunc("POST /api/chats/{chat}/moves", s.handleMove)
	s.mux.HandleFunc("POST /api/chats/{chat}/surrender", s.handleSurrender)
	s.mux.HandleFunc("POST /api/chats/{chat}/new", s.handleNewGame)
	s.mux.HandleFunc("GET /api/chats/{chat}/board", s.handleBoard)
	s.mux.HandleFunc("GET /api/chats/{chat}/ws", s.handleWatch)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

type startRequest struct {
	ChatID  string   `json:"chatId"`
	Starter string   `json:"starter"`
	Players []string `json:"players"`
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ChatID = strings.TrimSpace(req.ChatID)
	req.Starter = strings.TrimSpace(req.Starter)
	// No players means the chat itself hosts the board.
	if req.ChatID == "" || req.Starter == "" {
		writeError(w, http.StatusBadRequest, "chatId and starter required")
		return
	}
	v, err := s.manager.Start(name, req.ChatID, req.Starter, req.Players)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.watchers.publish(v.ChatID, v.Text)
	writeJSON(w, http.StatusCreated, viewResponse(v))
}

type moveRequest struct {
	Player string `json:"player"`
	Token  string `json:"token"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	chat := r.PathValue("chat")
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Player == "" || req.Token == "" {
		writeError(w, http.StatusBadRequest, "player and token required")
		return
	}
	key, err := s.manager.KeyForChat(chat)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	v, err := s.manager.Move(key, req.Player, req.Token)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.watchers.publish(v.ChatID, v.Text)
	writeJSON(w, http.StatusOK, viewResponse(v))
}

type playerRequest struct {
	Player string `json:"player"`
}

func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	chat := r.PathValue("chat")
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Player == "" {
		writeError(w, http.StatusBadRequest, "player required")
		return
	}
	key, err := s.manager.KeyForChat(chat)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	v, err := s.manager.Surrender(key, req.Player)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.watchers.publish(v.ChatID, v.Text)
	writeJSON(w, http.StatusOK, viewResponse(v))
}

type newGameRequest struct {
	GameType string `json:"gameType"`
	Player   string `json:"player"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	chat := r.PathValue("chat")
	var req newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GameType == "" || req.Player == "" {
		writeError(w, http.StatusBadRequest, "gameType and player required")
		return
	}
	key, err := s.manager.KeyForChat(chat)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	v, err := s.manager.NewGame(key, req.GameType, req.Player)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.watchers.publish(v.ChatID, v.Text)
	writeJSON(w, http.StatusOK, viewResponse(v))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	chat := r.PathValue("chat")
	key, err := s.manager.KeyForChat(chat)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	v, err := s.manager.Board(key)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(v))
}

type scoreEntry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be 1-100")
			return
		}
		limit = n
	}
	rows, err := s.manager.HighScores(name, limit)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	entries := make([]scoreEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, scoreEntry{Player: row.Winner, Score: row.Score})
	}
	writeJSON(w, http.StatusOK, entries)
}

// view is the JSON shape of a session.View.
type view struct {
	GameType  string         `json:"gameType"`
	ChatID    string         `json:"chatId"`
	Status    string         `json:"status"`
	Board     string         `json:"board"`
	TurnOwner string         `json:"turnOwner,omitempty"`
	Score     int            `json:"score"`
	HighScore int            `json:"highScore,omitempty"`
	Points    map[string]int `json:"points,omitempty"`
	Winner    string         `json:"winner,omitempty"`
}

func viewResponse(v *session.View) view {
	return view{
		GameType:  v.GameType,
		ChatID:    v.ChatID,
		Status:    v.Status.String(),
		Board:     v.Text,
		TurnOwner: v.TurnOwner,
		Score:     v.Score,
		HighScore: v.HighScore,
		Points:    v.Points,
		Winner:    v.Winner,
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNoActiveGame),
		errors.Is(err, session.ErrUnknownGame),
		errors.Is(err, sql.ErrNoRows):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrGameAlreadyRunning):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNotYourTurn),
		errors.Is(err, session.ErrIllegalMove),
		errors.Is(err, session.ErrNotAParticipant),
		errors.Is(err, session.ErrPlayerCount):
		status = http.StatusBadRequest
	}
	var de *game.DecodeError
	if errors.As(err, &de) {
		// The manager already cleared the broken session.
		status = http.StatusGone
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
