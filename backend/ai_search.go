package main

import (
	"log"
	"math"
	"time"
)

// SearchStats accumulates counters for one search.
type SearchStats struct {
	Start   time.Time
	Nodes   int64
	Cutoffs int64
	Elapsed time.Duration
}

// SearchSettings configures one chooseMove call.
type SearchSettings struct {
	Depth      int
	Seat       int
	ShouldStop func() bool
	OnProgress func(move Move, depth int, score float64)
	Stats      *SearchStats
}

type searchMove struct {
	piece *Piece
	to    Cell
}

// collectMoves lists the seat's legal moves in canonical order: pieces in
// row-major board order, each piece's moves in direction-list order. The
// search breaks score ties by first-seen, so this order decides them.
func collectMoves(b *Board, rules Rules, seat int) []searchMove {
	var moves []searchMove
	for _, p := range b.PiecesOf(seat) {
		for _, to := range rules.LegalMoves(b, p) {
			moves = append(moves, searchMove{piece: p, to: to})
		}
	}
	return moves
}

// chooseMove runs the root of the fixed-adversary minimax over a clone of
// the position and returns the best move for the seat. ok is false when the
// seat has no legal move; the caller passes. The live state is never
// mutated.
//
// All opponents fold into one minimizing adversary: the next non-eliminated
// seat after ours, fixed here at the root. Plies alternate max/min from
// there no matter how many seats are actually alive. Alpha carries across
// root siblings; beta stays +Inf at the root. Ties keep the first-seen
// candidate.
func chooseMove(state GameState, rules Rules, cfg SearchSettings) (Move, float64, bool) {
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	clone := state.Clone()
	board := &clone.Board
	adversary := clone.NextActiveSeat(cfg.Seat)

	roots := collectMoves(board, rules, cfg.Seat)
	if len(roots) == 0 {
		return Move{}, 0, false
	}

	best := Move{}
	bestScore := math.Inf(-1)
	alpha, beta := math.Inf(-1), math.Inf(1)
	for _, cand := range roots {
		if cfg.ShouldStop != nil && cfg.ShouldStop() {
			break
		}
		from := cand.piece.Pos
		_, undo := board.MovePiece(from, cand.to)
		score := minimax(board, rules, cfg.Depth-1, false, cfg.Seat, adversary, alpha, beta, cfg.Stats)
		board.Undo(undo)
		if score > bestScore {
			bestScore = score
			best = Move{From: from, To: cand.to}
			if cfg.OnProgress != nil {
				cfg.OnProgress(best, cfg.Depth, bestScore)
			}
		}
		if score > alpha {
			alpha = score
		}
	}
	if cfg.Stats != nil {
		cfg.Stats.Elapsed = time.Since(cfg.Stats.Start)
	}
	return best, bestScore, true
}

// minimax trials moves with MovePiece/Undo on the cloned board; the Moved
// flag burns in, which is fine because the clone is thrown away. Depth 0 or
// a moveless side returns the static evaluation, always from the root
// seat's perspective.
func minimax(b *Board, rules Rules, depth int, maximizing bool, rootSeat, adversary int, alpha, beta float64, stats *SearchStats) float64 {
	if stats != nil {
		stats.Nodes++
	}
	if depth == 0 {
		return evaluateBoard(*b, rootSeat)
	}
	mover := rootSeat
	if !maximizing {
		mover = adversary
	}
	moves := collectMoves(b, rules, mover)
	if len(moves) == 0 {
		return evaluateBoard(*b, rootSeat)
	}
	if maximizing {
		value := math.Inf(-1)
		for _, cand := range moves {
			_, undo := b.MovePiece(cand.piece.Pos, cand.to)
			score := minimax(b, rules, depth-1, false, rootSeat, adversary, alpha, beta, stats)
			b.Undo(undo)
			if score > value {
				value = score
			}
			if score > alpha {
				alpha = score
			}
			if beta <= alpha {
				if stats != nil {
					stats.Cutoffs++
				}
				break
			}
		}
		return value
	}
	value := math.Inf(1)
	for _, cand := range moves {
		_, undo := b.MovePiece(cand.piece.Pos, cand.to)
		score := minimax(b, rules, depth-1, true, rootSeat, adversary, alpha, beta, stats)
		b.Undo(undo)
		if score < value {
			value = score
		}
		if score < beta {
			beta = score
		}
		if beta <= alpha {
			if stats != nil {
				stats.Cutoffs++
			}
			break
		}
	}
	return value
}

func logSearchStats(tag string, seat, depth int, stats *SearchStats) {
	if stats == nil {
		return
	}
	log.Printf("[backend] search %s seat=%d depth=%d nodes=%d cutoffs=%d elapsed=%s",
		tag, seat, depth, stats.Nodes, stats.Cutoffs, stats.Elapsed.Round(time.Millisecond))
}
