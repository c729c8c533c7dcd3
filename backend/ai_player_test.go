package main

import (
	"sync"
	"testing"
	"time"
)

func TestChooseMoveFindsCapture(t *testing.T) {
	g := newBareGame(ModeFreeForAll)
	addPiece(g, King, 0, 7, 0)
	addPiece(g, Rook, 0, 4, 4)
	addPiece(g, King, 1, 0, 7)
	addPiece(g, Queen, 1, 4, 6)
	addPiece(g, King, 2, 0, 0)
	addPiece(g, King, 3, 7, 7)
	g.state.Current = 0
	g.state.Settings.AiDepth = 1

	ai := NewAIPlayer()
	move := ai.ChooseMove(g.state, g.rules)
	want := Move{From: Cell{Row: 4, Col: 4}, To: Cell{Row: 4, Col: 6}}
	if !move.Equals(want) {
		t.Fatalf("expected %v, got %v", want, move)
	}
}

func TestChooseMoveReturnsZeroMoveWhenBoxed(t *testing.T) {
	g := newBareGame(ModeFreeForAll)
	addPiece(g, King, 0, 0, 0)
	addPiece(g, Pawn, 0, 0, 1)
	addPiece(g, Pawn, 0, 1, 0)
	addPiece(g, Pawn, 0, 1, 1)
	addPiece(g, King, 1, 7, 7)
	g.state.Current = 0
	g.state.Settings.AiDepth = 1

	ai := NewAIPlayer()
	if move := ai.ChooseMove(g.state, g.rules); move != (Move{}) {
		t.Fatalf("expected zero move for a boxed-in seat, got %v", move)
	}
}

func TestStartThinkingDeliversFinalMove(t *testing.T) {
	g := newBareGame(ModeFreeForAll)
	addPiece(g, King, 0, 7, 0)
	addPiece(g, Rook, 0, 4, 4)
	addPiece(g, King, 1, 0, 7)
	addPiece(g, Queen, 1, 4, 6)
	addPiece(g, King, 2, 0, 0)
	addPiece(g, King, 3, 7, 7)
	g.state.Current = 0
	g.state.Settings.AiDepth = 1

	var mu sync.Mutex
	var updates []ThinkingUpdate
	ai := NewAIPlayer()
	ai.StartThinking(g.state, g.rules, func(u ThinkingUpdate) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	deadline := time.Now().Add(3 * time.Second)
	for !ai.HasMoveReady() {
		if time.Now().After(deadline) {
			t.Fatalf("expected the worker to finish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	move, ok := ai.TakeMove()
	if !ok {
		t.Fatalf("expected a ready move")
	}
	want := Move{From: Cell{Row: 4, Col: 4}, To: Cell{Row: 4, Col: 6}}
	if !move.Equals(want) {
		t.Fatalf("expected %v, got %v", want, move)
	}
	if ai.HasMoveReady() {
		t.Fatalf("expected TakeMove to consume the ready flag")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) == 0 {
		t.Fatalf("expected thinking updates")
	}
	last := updates[len(updates)-1]
	if !last.Final {
		t.Fatalf("expected the last update to be final, got %+v", last)
	}
	if last.From != want.From || last.To != want.To {
		t.Fatalf("expected final update to carry %v, got %+v", want, last)
	}
	for _, u := range updates {
		if u.Seat != 0 {
			t.Fatalf("expected all updates for seat 0, got %+v", u)
		}
	}
}

func TestStartThinkingReportsPassWhenBoxed(t *testing.T) {
	g := newBareGame(ModeFreeForAll)
	addPiece(g, King, 0, 0, 0)
	addPiece(g, Pawn, 0, 0, 1)
	addPiece(g, Pawn, 0, 1, 0)
	addPiece(g, Pawn, 0, 1, 1)
	addPiece(g, King, 1, 7, 7)
	g.state.Current = 0
	g.state.Settings.AiDepth = 2

	ai := NewAIPlayer()
	ai.StartThinking(g.state, g.rules, nil)

	deadline := time.Now().Add(3 * time.Second)
	for !ai.HasMoveReady() {
		if time.Now().After(deadline) {
			t.Fatalf("expected the worker to finish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	move, ok := ai.TakeMove()
	if ok {
		t.Fatalf("expected a pass for a boxed-in seat, got %v", move)
	}
	if move != (Move{}) {
		t.Fatalf("expected zero move on pass, got %v", move)
	}
}

func TestStopDiscardsSearchResult(t *testing.T) {
	settings := DefaultGameSettings()
	settings.AiDepth = 4
	g := NewGame(settings)

	ai := NewAIPlayer()
	ai.StartThinking(g.state, g.rules, nil)
	ai.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for ai.IsThinking() {
		if time.Now().After(deadline) {
			t.Fatalf("expected the stopped search to exit")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if ai.HasMoveReady() {
		t.Fatalf("expected the stopped search result to be discarded")
	}
}
