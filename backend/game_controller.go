package main

import (
	"fmt"
	"sync"
	"time"
)

// GameController is the concurrency boundary around Game. HTTP handlers,
// websocket readers, and the tick loop all come through here.
type GameController struct {
	mu       sync.Mutex
	game     *Game
	settings GameSettings
	running  bool

	thinkingEnabled   func() bool
	thinkingPublisher func(ThinkingUpdate)
}

func NewGameController(settings GameSettings) *GameController {
	settings = settings.Normalized()
	return &GameController{game: NewGame(settings), settings: settings}
}

// SetThinkingPublisher wires the live-search feed. enabled is consulted per
// tick so an empty hub costs nothing.
func (gc *GameController) SetThinkingPublisher(enabled func() bool, publisher func(ThinkingUpdate)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.thinkingEnabled = enabled
	gc.thinkingPublisher = publisher
}

func (gc *GameController) SetAnalysisSink(sink func(GameState)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.SetAnalysisSink(sink)
}

// Start resets to the configured settings and begins play. Starting over a
// running game restarts it.
func (gc *GameController) Start() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(gc.settings)
	gc.running = true
	return gc.game.State()
}

func (gc *GameController) Stop() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.running = false
	gc.game.stopSearches()
}

func (gc *GameController) Running() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.running
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.settings
}

// UpdateSettings stores a new configuration. It takes effect on the next
// start unless restart is set, which resets the game immediately.
func (gc *GameController) UpdateSettings(settings GameSettings, restart bool) GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.settings = settings.Normalized()
	if restart {
		gc.game.Reset(gc.settings)
		gc.running = true
	}
	return gc.settings
}

// Tick advances the game by elapsed wall time and returns a snapshot for
// broadcasting. The bool is false while no game is running.
func (gc *GameController) Tick(elapsed time.Duration) (GameState, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.running {
		return GameState{}, false
	}
	enabled := false
	if gc.thinkingEnabled != nil {
		enabled = gc.thinkingEnabled()
	}
	gc.game.Tick(elapsed, enabled, gc.thinkingPublisher)
	return gc.game.State(), true
}

func (gc *GameController) SelectPiece(seat int, at Cell) ([]Cell, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.running {
		return nil, fmt.Errorf("%w: game not running", ErrActionWhileLocked)
	}
	return gc.game.SelectPiece(seat, at)
}

func (gc *GameController) LegalMoves(at Cell) ([]Cell, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.LegalMovesAt(at)
}

func (gc *GameController) ApplyMove(seat int, from, to Cell) (MoveResult, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.running {
		return MoveResult{}, fmt.Errorf("%w: game not running", ErrActionWhileLocked)
	}
	return gc.game.TryApplyMove(seat, from, to)
}

// StepAITurn advances the current AI seat synchronously, skipping the
// cosmetic move delay. The arena uses it to fast-forward unattended games.
func (gc *GameController) StepAITurn() (MoveResult, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.running {
		return MoveResult{}, fmt.Errorf("%w: game not running", ErrActionWhileLocked)
	}
	return gc.game.PlayAITurn()
}

func (gc *GameController) ResolveConversion(seat int, at Cell) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.running {
		return fmt.Errorf("%w: game not running", ErrActionWhileLocked)
	}
	return gc.game.ResolveConversion(seat, at)
}

func (gc *GameController) History() []HistoryEntry {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}
