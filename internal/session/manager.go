// Package session drives game lifecycles: it owns the mapping from
// players and chats to stored boards, checks turn ownership, applies
// moves through the game engines, and records finished games.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/janekc/deltabot-games/internal/game"
	"github.com/janekc/deltabot-games/internal/storage"
)

// View is what a caller shows to the chat after an operation.
type View struct {
	GameType  string
	ChatID    string
	Status    game.Status
	Text      string
	TurnOwner string
	Score     int
	HighScore int
	Points    map[string]int
	Winner    string
}

// Manager coordinates all sessions against the store.
type Manager struct {
	registry *game.Registry
	store    *storage.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a session manager.
func NewManager(registry *game.Registry, store *storage.Store) *Manager {
	return &Manager{
		registry: registry,
		store:    store,
		locks:    make(map[string]*sync.Mutex),
	}
}

// locker returns the mutex serializing one session key. Everything
// between loading a board and storing it back runs under this lock.
func (m *Manager) locker(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// Key derives the session key for a player set.
func Key(players []string) string {
	if len(players) == 2 {
		return PairKey(players[0], players[1])
	}
	return SoloKey(players[0])
}

// Start begins a game between the given players. The starter makes the
// first move. An empty player list hosts the game in the chat itself:
// the session is keyed by the chat and anyone there may move. If the
// session row lingers from a finished game, it is rebound; a session
// with a live board refuses to start another.
func (m *Manager) Start(gameType, chatID, starter string, players []string) (*View, error) {
	g, ok := m.registry.Get(gameType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameType)
	}
	if starter == "" {
		return nil, fmt.Errorf("%w: empty starter", ErrNotAParticipant)
	}
	var key string
	if len(players) == 0 {
		if g.Players() != 1 {
			return nil, fmt.Errorf("%w: %s cannot be chat-hosted", ErrPlayerCount, gameType)
		}
		key = ChatKey(chatID)
	} else {
		if len(players) != g.Players() {
			return nil, fmt.Errorf("%w: %s needs %d, got %d", ErrPlayerCount, gameType, g.Players(), len(players))
		}
		if len(players) == 2 && players[0] == players[1] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrPlayerCount, players[0])
		}
		if !contains(players, starter) {
			return nil, fmt.Errorf("%w: starter %s", ErrNotAParticipant, starter)
		}
		key = Key(players)
	}
	l := m.locker(key)
	l.Lock()
	defer l.Unlock()

	board := g.New()
	row, err := m.store.GetGame(key)
	switch {
	case err == nil && row.Board.Valid:
		return nil, fmt.Errorf("%w: %s", ErrGameAlreadyRunning, row.GameType)
	case err == nil:
		p2 := other(players, starter)
		if err := m.store.SetGame(key, gameType, starter, p2, board.Turn(), board.Encode()); err != nil {
			return nil, fmt.Errorf("rebind session: %w", err)
		}
		row.GameType = gameType
		row.P1, row.P2 = starter, p2
		row.FirstMark = board.Turn()
		row.Score = 0
	case errors.Is(err, sql.ErrNoRows):
		row = &storage.GameRow{
			Key:       key,
			GameType:  gameType,
			ChatID:    chatID,
			P1:        starter,
			P2:        other(players, starter),
			FirstMark: board.Turn(),
			Board:     sql.NullString{String: board.Encode(), Valid: true},
		}
		if g.Players() == 1 {
			best, err := m.store.MaxScore(gameType, key)
			if err != nil {
				return nil, fmt.Errorf("load high score: %w", err)
			}
			row.HighScore = best
		}
		if err := m.store.CreateGame(row); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	default:
		return nil, fmt.Errorf("load session: %w", err)
	}
	return buildView(row, board, board.Result()), nil
}

// Move applies one move token for a player.
func (m *Manager) Move(key, player, token string) (*View, error) {
	l := m.locker(key)
	l.Lock()
	defer l.Unlock()

	row, g, board, err := m.load(key)
	if err != nil {
		return nil, err
	}
	if !participant(row, player) {
		return nil, fmt.Errorf("%w: %q", ErrNotAParticipant, player)
	}
	if g.Players() == 2 {
		if want := owner(row, board.Turn()); want != player {
			return nil, fmt.Errorf("%w: waiting for %s", ErrNotYourTurn, want)
		}
	}
	if err := board.Move(token); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}

	res := board.Result()
	high := row.HighScore
	if board.Score() > high {
		high = board.Score()
	}
	row.HighScore = high
	if res.Status == game.Ongoing {
		blob := sql.NullString{String: board.Encode(), Valid: true}
		if err := m.store.SetBoard(key, blob, board.Score(), high); err != nil {
			return nil, fmt.Errorf("save board: %w", err)
		}
		return buildView(row, board, res), nil
	}
	if err := m.finish(row, board, res, player); err != nil {
		return nil, err
	}
	v := buildView(row, board, res)
	if res.Status == game.Win && row.P2 == "" {
		v.Winner = player
	}
	return v, nil
}

// Surrender ends the game immediately. In a two-player game the other
// side wins; a single-player game just ends with the current score.
func (m *Manager) Surrender(key, player string) (*View, error) {
	l := m.locker(key)
	l.Lock()
	defer l.Unlock()

	row, g, board, err := m.load(key)
	if err != nil {
		return nil, err
	}
	if !participant(row, player) {
		return nil, fmt.Errorf("%w: %q", ErrNotAParticipant, player)
	}
	status := game.Loss
	winner := ""
	if g.Players() == 2 {
		status = game.Win
		winner = row.P1
		if player == row.P1 {
			winner = row.P2
		}
	}
	high := row.HighScore
	if board.Score() > high {
		high = board.Score()
	}
	row.HighScore = high
	resWinner, resLoser := winner, player
	if g.Players() == 1 {
		// The sole player owns the result row either way.
		resWinner, resLoser = player, ""
	}
	if err := m.record(row, board, resWinner, resLoser, "surrender"); err != nil {
		return nil, err
	}
	if err := m.store.SetBoard(key, sql.NullString{}, 0, high); err != nil {
		return nil, fmt.Errorf("clear board: %w", err)
	}
	v := buildView(row, board, game.Result{Status: status})
	v.Winner = winner
	return v, nil
}

// Board returns the current board without touching it.
func (m *Manager) Board(key string) (*View, error) {
	l := m.locker(key)
	l.Lock()
	defer l.Unlock()

	row, _, board, err := m.load(key)
	if err != nil {
		return nil, err
	}
	return buildView(row, board, board.Result()), nil
}

// NewGame rebinds a finished session to a fresh game, keeping the
// pairing and its high score.
func (m *Manager) NewGame(key, gameType, starter string) (*View, error) {
	g, ok := m.registry.Get(gameType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameType)
	}
	l := m.locker(key)
	l.Lock()
	defer l.Unlock()

	row, err := m.store.GetGame(key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveGame
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if row.Board.Valid {
		return nil, fmt.Errorf("%w: %s", ErrGameAlreadyRunning, row.GameType)
	}
	if !participant(row, starter) {
		return nil, fmt.Errorf("%w: %q", ErrNotAParticipant, starter)
	}
	if (g.Players() == 1) != (row.P2 == "") {
		return nil, fmt.Errorf("%w: %s needs %d", ErrPlayerCount, gameType, g.Players())
	}
	board := g.New()
	p2 := row.P2
	if starter == row.P2 {
		p2 = row.P1
	}
	if err := m.store.SetGame(key, gameType, starter, p2, board.Turn(), board.Encode()); err != nil {
		return nil, fmt.Errorf("rebind session: %w", err)
	}
	row.GameType = gameType
	row.P1, row.P2 = starter, p2
	row.FirstMark = board.Turn()
	row.Score = 0
	return buildView(row, board, board.Result()), nil
}

// Evict drops a session when one of its members leaves. Unknown keys
// are fine; eviction is cleanup, not an operation on a running game.
func (m *Manager) Evict(key, player string) error {
	l := m.locker(key)
	l.Lock()
	defer l.Unlock()

	row, err := m.store.GetGame(key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !participant(row, player) {
		return fmt.Errorf("%w: %q", ErrNotAParticipant, player)
	}
	return m.store.DeleteGame(key)
}

// HighScores lists the best finished scores for a game type.
func (m *Manager) HighScores(gameType string, limit int) ([]storage.ResultRow, error) {
	if _, ok := m.registry.Get(gameType); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameType)
	}
	return m.store.TopScores(gameType, limit)
}

// KeyForChat resolves a chat to the session most recently played in
// it.
func (m *Manager) KeyForChat(chatID string) (string, error) {
	key, err := m.store.GetKeyByChat(chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoActiveGame
	}
	return key, err
}

// load fetches and decodes the live board of a session. A blob that no
// longer decodes is logged and the session cleared rather than left
// wedging every later command.
func (m *Manager) load(key string) (*storage.GameRow, game.Game, game.Board, error) {
	row, err := m.store.GetGame(key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil, ErrNoActiveGame
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load session: %w", err)
	}
	if !row.Board.Valid {
		return nil, nil, nil, ErrNoActiveGame
	}
	g, ok := m.registry.Get(row.GameType)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownGame, row.GameType)
	}
	board, err := g.Decode(row.Board.String)
	if err != nil {
		var de *game.DecodeError
		if errors.As(err, &de) {
			log.Printf("session %s: corrupt %s board, clearing: %v", key, row.GameType, err)
			if derr := m.store.DeleteGame(key); derr != nil {
				log.Printf("session %s: delete failed: %v", key, derr)
			}
		}
		return nil, nil, nil, fmt.Errorf("decode board: %w", err)
	}
	return row, g, board, nil
}

// finish closes out a game that reached a terminal state. mover is the
// player whose move ended it.
func (m *Manager) finish(row *storage.GameRow, board game.Board, res game.Result, mover string) error {
	outcome := "draw"
	winner, loser := "", ""
	switch res.Status {
	case game.Win:
		outcome = "win"
		winner = owner(row, res.Winner)
		if winner == row.P1 {
			loser = row.P2
		} else {
			loser = row.P1
		}
	case game.Loss:
		outcome = "loss"
		loser = row.P1
	}
	if row.P2 == "" {
		// Single-player results carry the player in the winner column
		// whatever the outcome, so the leaderboard can name them.
		winner, loser = mover, ""
	}
	if err := m.record(row, board, winner, loser, outcome); err != nil {
		return err
	}
	if err := m.store.SetBoard(row.Key, sql.NullString{}, 0, row.HighScore); err != nil {
		return fmt.Errorf("clear board: %w", err)
	}
	return nil
}

func (m *Manager) record(row *storage.GameRow, board game.Board, winner, loser, outcome string) error {
	err := m.store.AddResult(&storage.ResultRow{
		GameType: row.GameType,
		Key:      row.Key,
		Winner:   winner,
		Loser:    loser,
		Outcome:  outcome,
		Score:    board.Score(),
	})
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// owner maps a game mark to the player holding it. The starter owns
// the mark a fresh board opens with.
func owner(row *storage.GameRow, mark string) string {
	switch mark {
	case "":
		return ""
	case row.FirstMark:
		return row.P1
	default:
		return row.P2
	}
}

// participant reports whether a player may act on a session. A
// chat-hosted board is open to anyone; the transport only delivers
// messages from chat members.
func participant(row *storage.GameRow, player string) bool {
	if player == "" {
		return false
	}
	if ChatHosted(row.Key) {
		return true
	}
	return player == row.P1 || player == row.P2
}

func contains(players []string, who string) bool {
	for _, p := range players {
		if p == who {
			return true
		}
	}
	return false
}

func other(players []string, who string) string {
	for _, p := range players {
		if p != who {
			return p
		}
	}
	return ""
}

func buildView(row *storage.GameRow, board game.Board, res game.Result) *View {
	v := &View{
		GameType:  row.GameType,
		ChatID:    row.ChatID,
		Status:    res.Status,
		Text:      board.Render(),
		Score:     board.Score(),
		HighScore: row.HighScore,
		Winner:    owner(row, res.Winner),
	}
	if res.Status == game.Ongoing {
		v.TurnOwner = owner(row, board.Turn())
	}
	if len(res.Points) > 0 {
		v.Points = make(map[string]int, len(res.Points))
		for mark, pts := range res.Points {
			name := owner(row, mark)
			if name == "" {
				name = mark
			}
			v.Points[name] = pts
		}
	}
	return v
}
