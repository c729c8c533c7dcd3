package main

import "math/rand"

// Zobrist tables for position hashing. The seed is fixed so hashes are
// stable across runs; the thinking and analysis feeds use them to spot
// stale positions.
var (
	zobristPieces   [boardCells][numPieceTypes][NumPlayers]uint64
	zobristRotation [4]uint64
	zobristSeat     [NumPlayers]uint64
)

func init() {
	rng := rand.New(rand.NewSource(0x4a5c3d2e1f0b9a87))
	for cell := range zobristPieces {
		for kind := range zobristPieces[cell] {
			for owner := range zobristPieces[cell][kind] {
				zobristPieces[cell][kind][owner] = rng.Uint64()
			}
		}
	}
	for i := range zobristRotation {
		zobristRotation[i] = rng.Uint64()
	}
	for i := range zobristSeat {
		zobristSeat[i] = rng.Uint64()
	}
}

// positionHash folds the board, rotation, and seat to move into one key.
// Any committed action changes at least one of those.
func positionHash(state GameState) uint64 {
	h := zobristRotation[state.Board.Rotation()] ^ zobristSeat[state.Current]
	for _, p := range state.Board.Pieces() {
		h ^= zobristPieces[state.Board.index(p.Pos)][p.Type][p.Owner]
	}
	return h
}
