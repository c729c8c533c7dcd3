package main

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// AnalysisReport scores a committed position from every seat's point of
// view. Leader is the best-scoring seat still in the game, -1 before any
// seat can be ranked.
type AnalysisReport struct {
	Turn      int                 `json:"turn"`
	Hash      string              `json:"hash"`
	Scores    [NumPlayers]float64 `json:"scores"`
	Leader    int                 `json:"leader"`
	UpdatedAt int64               `json:"updated_at_ms"`
}

// Analyzer consumes committed positions off the game loop and publishes
// per-seat evaluations. The queue is bounded; the oldest position drops
// first so a slow consumer only costs stale reports, never memory.
type Analyzer struct {
	mu      sync.Mutex
	queue   []GameState
	limit   int
	latest  *AnalysisReport
	notify  chan struct{}
	publish func(AnalysisReport)
}

func NewAnalyzer(limit int, publish func(AnalysisReport)) *Analyzer {
	if limit <= 0 {
		limit = 16
	}
	return &Analyzer{
		limit:   limit,
		notify:  make(chan struct{}, 1),
		publish: publish,
	}
}

// Enqueue hands a position to the worker. Safe to call from the tick loop;
// never blocks.
func (a *Analyzer) Enqueue(state GameState) {
	a.mu.Lock()
	if len(a.queue) >= a.limit {
		a.queue = a.queue[1:]
	}
	a.queue = append(a.queue, state)
	a.mu.Unlock()
	select {
	case a.notify <- struct{}{}:
	default:
	}
}

// Latest returns the most recent report, if any position has been scored.
func (a *Analyzer) Latest() (AnalysisReport, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		return AnalysisReport{}, false
	}
	return *a.latest, true
}

func (a *Analyzer) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-a.notify:
			for {
				a.mu.Lock()
				if len(a.queue) == 0 {
					a.mu.Unlock()
					break
				}
				state := a.queue[0]
				a.queue = a.queue[1:]
				a.mu.Unlock()

				report := a.compute(state)
				a.mu.Lock()
				a.latest = &report
				a.mu.Unlock()
				if a.publish != nil {
					a.publish(report)
				}
			}
		}
	}
}

func (a *Analyzer) compute(state GameState) AnalysisReport {
	report := AnalysisReport{
		Turn:      state.TurnCount,
		Hash:      fmt.Sprintf("%016x", positionHash(state)),
		Leader:    -1,
		UpdatedAt: time.Now().UnixMilli(),
	}
	best := math.Inf(-1)
	for seat := 0; seat < NumPlayers; seat++ {
		score := evaluateBoard(state.Board, seat)
		report.Scores[seat] = score
		if state.Players[seat] != nil && state.Players[seat].Eliminated {
			continue
		}
		if score > best {
			best = score
			report.Leader = seat
		}
	}
	return report
}
