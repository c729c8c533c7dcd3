package main

import "math"

// evaluateBoard scores the position from the seat's perspective: material
// plus a small centrality bonus, positive for the seat's pieces and
// negative for everyone else's. Pieces of eliminated seats still count;
// they stay on the board as obstacles worth capturing.
func evaluateBoard(b Board, seat int) float64 {
	score := 0.0
	for _, p := range b.Pieces() {
		value := p.Type.Value() + 0.1*(4-math.Abs(float64(p.Pos.Row)-3.5)-math.Abs(float64(p.Pos.Col)-3.5))
		if p.Owner == seat {
			score += value
		} else {
			score -= value
		}
	}
	return score
}
