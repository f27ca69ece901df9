// Package storage persists game sessions and finished-game results in
// SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// GameRow is one session keyed by its participant set. board is NULL
// between games: the row then remembers the pairing and its high score
// until a new game starts or the session is evicted.
type GameRow struct {
	Key       string
	GameType  string
	ChatID    string
	P1        string // the player who started the game; owns FirstMark
	P2        string // empty for single-player games
	FirstMark string
	Board     sql.NullString
	Score     int
	HighScore int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResultRow is one finished game. For single-player games Winner holds
// the sole player regardless of outcome and Loser stays empty.
type ResultRow struct {
	ID         string
	GameType   string
	Key        string
	Winner     string
	Loser      string
	Outcome    string // "win", "draw", "loss", "surrender"
	Score      int
	FinishedAt time.Time
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			key        TEXT PRIMARY KEY,
			game_type  TEXT NOT NULL,
			chat_id    TEXT NOT NULL,
			p1         TEXT NOT NULL,
			p2         TEXT NOT NULL DEFAULT '',
			first_mark TEXT NOT NULL,
			board      TEXT,
			score      INTEGER NOT NULL DEFAULT 0,
			high_score INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS results (
			id          TEXT PRIMARY KEY,
			game_type   TEXT NOT NULL,
			key         TEXT NOT NULL,
			winner      TEXT NOT NULL DEFAULT '',
			loser       TEXT NOT NULL DEFAULT '',
			outcome     TEXT NOT NULL,
			score       INTEGER NOT NULL DEFAULT 0,
			finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS results_scores ON results (game_type, score DESC);
	`)
	return err
}

// CreateGame inserts a new session row.
func (s *Store) CreateGame(row *GameRow) error {
	_, err := s.db.Exec(`
		INSERT INTO games (key, game_type, chat_id, p1, p2, first_mark, board, score, high_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Key, row.GameType, row.ChatID, row.P1, row.P2,
		row.FirstMark, row.Board, row.Score, row.HighScore,
	)
	return err
}

// GetGame retrieves a session row by key. Callers see sql.ErrNoRows
// when the key is unknown.
func (s *Store) GetGame(key string) (*GameRow, error) {
	row := s.db.QueryRow(`
		SELECT key, game_type, chat_id, p1, p2, first_mark, board, score, high_score, created_at, updated_at
		FROM games WHERE key = ?`, key)
	var gr GameRow
	if err := row.Scan(&gr.Key, &gr.GameType, &gr.ChatID, &gr.P1, &gr.P2,
		&gr.FirstMark, &gr.Board, &gr.Score, &gr.HighScore, &gr.CreatedAt, &gr.UpdatedAt); err != nil {
		return nil, err
	}
	return &gr, nil
}

// SetBoard saves the current board blob and score. A NULL board marks
// the game finished while keeping the session row.
func (s *Store) SetBoard(key string, board sql.NullString, score, highScore int) error {
	_, err := s.db.Exec(`
		UPDATE games SET board = ?, score = ?, high_score = ?, updated_at = CURRENT_TIMESTAMP
		WHERE key = ?`, board, score, highScore, key)
	return err
}

// SetGame rebinds a session row to a fresh game, replacing the game
// type, player order, and board in place.
func (s *Store) SetGame(key, gameType, p1, p2, firstMark, board string) error {
	_, err := s.db.Exec(`
		UPDATE games SET game_type = ?, p1 = ?, p2 = ?, first_mark = ?, board = ?, score = 0,
			updated_at = CURRENT_TIMESTAMP
		WHERE key = ?`, gameType, p1, p2, firstMark, board, key)
	return err
}

// GetKeyByChat resolves a chat to its most recently touched session
// key.
func (s *Store) GetKeyByChat(chatID string) (string, error) {
	var key string
	err := s.db.QueryRow(
		"SELECT key FROM games WHERE chat_id = ? ORDER BY updated_at DESC LIMIT 1",
		chatID,
	).Scan(&key)
	return key, err
}

// DeleteGame removes a session row.
func (s *Store) DeleteGame(key string) error {
	_, err := s.db.Exec("DELETE FROM games WHERE key = ?", key)
	return err
}

// AddResult records a finished game.
func (s *Store) AddResult(row *ResultRow) error {
	id := row.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO results (id, game_type, key, winner, loser, outcome, score)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, row.GameType, row.Key, row.Winner, row.Loser, row.Outcome, row.Score,
	)
	return err
}

// TopScores returns the best finished-game scores for a game type,
// highest first.
func (s *Store) TopScores(gameType string, limit int) ([]ResultRow, error) {
	rows, err := s.db.Query(`
		SELECT id, game_type, key, winner, loser, outcome, score, finished_at
		FROM results WHERE game_type = ? AND score > 0
		ORDER BY score DESC, finished_at ASC LIMIT ?`, gameType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []ResultRow
	for rows.Next() {
		var rr ResultRow
		if err := rows.Scan(&rr.ID, &rr.GameType, &rr.Key, &rr.Winner, &rr.Loser,
			&rr.Outcome, &rr.Score, &rr.FinishedAt); err != nil {
			return nil, err
		}
		result = append(result, rr)
	}
	return result, rows.Err()
}

// MaxScore returns the best score a session key has reached for a game
// type, 0 when it never finished a game.
func (s *Store) MaxScore(gameType, key string) (int, error) {
	var best sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM results WHERE game_type = ? AND key = ?",
		gameType, key,
	).Scan(&best)
	if err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
