package main

import (
	"math/rand/v2"
	"testing"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/protocol"
)

func TestChooseOnlyOnOwnTurn(t *testing.T) {
	p := newPlayer(config.BotConfig{})
	p.userID = "u-1"
	p.rnd = rand.New(rand.NewPCG(1, 2))

	board := []string{"x", "o", "x", "", "o", "", "x", "o", "x"}
	g := protocol.Game{Status: statusActive, CurrentPlayer: "u-1", Board: board}
	for i := 0; i < 20; i++ {
		pos, ok := p.choose(g)
		if !ok {
			t.Fatal("no move chosen on own turn")
		}
		if pos != 3 && pos != 5 {
			t.Fatalf("chose occupied cell %d", pos)
		}
	}

	g.CurrentPlayer = "bot"
	if _, ok := p.choose(g); ok {
		t.Fatal("moved on opponent's turn")
	}
	g.CurrentPlayer = "u-1"
	g.Status = statusCompleted
	if _, ok := p.choose(g); ok {
		t.Fatal("moved in a finished game")
	}
	g.Status = statusActive
	g.Board = []string{"x", "o", "x", "x", "o", "o", "o", "x", "x"}
	if _, ok := p.choose(g); ok {
		t.Fatal("moved on a full board")
	}
}
