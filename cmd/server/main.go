package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/janekc/deltabot-games/internal/game"
	"github.com/janekc/deltabot-games/internal/game/chainreaction"
	"github.com/janekc/deltabot-games/internal/game/chessgame"
	"github.com/janekc/deltabot-games/internal/game/colorlines"
	"github.com/janekc/deltabot-games/internal/game/connect4"
	"github.com/janekc/deltabot-games/internal/game/minesweeper"
	"github.com/janekc/deltabot-games/internal/game/reversi"
	"github.com/janekc/deltabot-games/internal/game/sudoku"
	"github.com/janekc/deltabot-games/internal/game/tictactoe"
	"github.com/janekc/deltabot-games/internal/server"
	"github.com/janekc/deltabot-games/internal/session"
	"github.com/janekc/deltabot-games/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: load .env: %v", err)
	}

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	dbPath := "games.db"
	if p := os.Getenv("DB_PATH"); p != "" {
		dbPath = p
	}

	store, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()

	registry := game.NewRegistry()
	registry.Register(chainreaction.ChainReaction{})
	registry.Register(chessgame.Chess{})
	registry.Register(colorlines.ColorLines{})
	registry.Register(connect4.Connect4{})
	registry.Register(minesweeper.Minesweeper{})
	registry.Register(reversi.Reversi{})
	registry.Register(sudoku.Sudoku{})
	registry.Register(tictactoe.TicTacToe{})

	mgr := session.NewManager(registry, store)
	srv := server.New(registry, mgr)

	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("server: %v", err)
	}
}
