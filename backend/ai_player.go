package main

import (
	"sync"
	"sync/atomic"
	"time"
)

// ThinkingUpdate is one deliberation snapshot streamed while a search runs.
// Mode is "turn" for the acting AI and "hint" for the suggestion search on
// human turns.
type ThinkingUpdate struct {
	Mode  string  `json:"mode"`
	Seat  int     `json:"seat"`
	From  Cell    `json:"from"`
	To    Cell    `json:"to"`
	Depth int     `json:"depth"`
	Score float64 `json:"score"`
	Final bool    `json:"final"`
}

// AIPlayer chooses moves with the fixed-adversary search. StartThinking
// runs the search on a worker goroutine against a clone of the state and
// posts readiness through atomics; the game commits the move on a later
// tick.
type AIPlayer struct {
	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  Move
	hasMove    bool
}

func NewAIPlayer() *AIPlayer {
	return &AIPlayer{}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

// ChooseMove is the synchronous path. It returns the zero Move when the
// seat has nothing to play.
func (a *AIPlayer) ChooseMove(state GameState, rules Rules) Move {
	config := GetConfig()
	stats := &SearchStats{Start: time.Now()}
	settings := SearchSettings{
		Depth: state.Settings.AiDepth,
		Seat:  state.Current,
		Stats: stats,
	}
	move, _, ok := chooseMove(state, rules, settings)
	if config.LogSearchStats {
		logSearchStats("choose", settings.Seat, settings.Depth, stats)
	}
	if !ok {
		return Move{}
	}
	return move
}

// StartThinking kicks off the worker. sink receives throttled progress
// updates plus one final update; pass nil to skip the stream.
func (a *AIPlayer) StartThinking(state GameState, rules Rules, sink func(ThinkingUpdate)) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)
	a.stopSignal.Store(false)

	stateCopy := state.Clone()
	rulesCopy := rules
	done := make(chan struct{})
	a.workerDone = done
	config := GetConfig()
	go func() {
		defer close(done)
		stats := &SearchStats{Start: time.Now()}
		settings := SearchSettings{
			Depth:      stateCopy.Settings.AiDepth,
			Seat:       stateCopy.Current,
			ShouldStop: func() bool { return a.stopSignal.Load() },
			Stats:      stats,
		}
		if sink != nil {
			throttle := time.Duration(config.ThinkingThrottleMs) * time.Millisecond
			var lastPublish time.Time
			settings.OnProgress = func(move Move, depth int, score float64) {
				if a.stopSignal.Load() {
					return
				}
				if throttle > 0 {
					now := time.Now()
					if !lastPublish.IsZero() && now.Sub(lastPublish) < throttle {
						return
					}
					lastPublish = now
				}
				sink(ThinkingUpdate{Seat: settings.Seat, From: move.From, To: move.To, Depth: depth, Score: score})
			}
		}
		move, score, ok := chooseMove(stateCopy, rulesCopy, settings)
		if a.stopSignal.Load() {
			a.moveReady.Store(false)
			a.thinking.Store(false)
			return
		}
		if config.LogSearchStats {
			logSearchStats("think", settings.Seat, settings.Depth, stats)
		}
		if sink != nil && ok {
			sink(ThinkingUpdate{Seat: settings.Seat, From: move.From, To: move.To, Depth: settings.Depth, Score: score, Final: true})
		}
		a.moveMutex.Lock()
		a.readyMove = move
		a.hasMove = ok
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
	}()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

// TakeMove consumes the ready move. ok is false when the seat had no legal
// move and must pass.
func (a *AIPlayer) TakeMove() (Move, bool) {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove, a.hasMove
}

// Stop aborts an in-flight search. The result is discarded and no further
// updates reach the sink.
func (a *AIPlayer) Stop() {
	a.stopSignal.Store(true)
}
