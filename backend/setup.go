package main

type placement struct {
	kind PieceType
	at   Cell
}

// seatLayouts places eight pieces per seat along its home edge: two pawns,
// one rook, two knights, one bishop, queen, and king.
var seatLayouts = [NumPlayers][]placement{
	{ // seat 0, bottom edge
		{Pawn, Cell{Row: 6, Col: 3}},
		{Pawn, Cell{Row: 6, Col: 4}},
		{Rook, Cell{Row: 7, Col: 0}},
		{Knight, Cell{Row: 7, Col: 1}},
		{Knight, Cell{Row: 7, Col: 2}},
		{Queen, Cell{Row: 7, Col: 3}},
		{King, Cell{Row: 7, Col: 4}},
		{Bishop, Cell{Row: 7, Col: 5}},
	},
	{ // seat 1, right edge
		{Pawn, Cell{Row: 3, Col: 6}},
		{Pawn, Cell{Row: 4, Col: 6}},
		{Bishop, Cell{Row: 2, Col: 7}},
		{Queen, Cell{Row: 3, Col: 7}},
		{King, Cell{Row: 4, Col: 7}},
		{Knight, Cell{Row: 5, Col: 7}},
		{Knight, Cell{Row: 6, Col: 7}},
		{Rook, Cell{Row: 7, Col: 7}},
	},
	{ // seat 2, top edge
		{Pawn, Cell{Row: 1, Col: 3}},
		{Pawn, Cell{Row: 1, Col: 4}},
		{Bishop, Cell{Row: 0, Col: 2}},
		{Queen, Cell{Row: 0, Col: 3}},
		{King, Cell{Row: 0, Col: 4}},
		{Knight, Cell{Row: 0, Col: 5}},
		{Knight, Cell{Row: 0, Col: 6}},
		{Rook, Cell{Row: 0, Col: 7}},
	},
	{ // seat 3, left edge
		{Pawn, Cell{Row: 3, Col: 1}},
		{Pawn, Cell{Row: 4, Col: 1}},
		{Rook, Cell{Row: 0, Col: 0}},
		{Knight, Cell{Row: 1, Col: 0}},
		{Knight, Cell{Row: 2, Col: 0}},
		{Queen, Cell{Row: 3, Col: 0}},
		{King, Cell{Row: 4, Col: 0}},
		{Bishop, Cell{Row: 5, Col: 0}},
	},
}

// Reset rebuilds the initial position under the given settings.
func (s *GameState) Reset(settings GameSettings) {
	settings = settings.Normalized()
	s.Settings = settings
	s.Board = NewBoard()
	for seat := range s.Players {
		s.Players[seat] = &PlayerState{
			Seat: seat,
			Team: settings.TeamOf(seat),
			IsAI: settings.SeatTypes[seat] == PlayerAI,
		}
	}
	for seat, layout := range seatLayouts {
		for _, pl := range layout {
			piece := &Piece{Type: pl.kind, Owner: seat}
			s.Board.Place(piece, pl.at)
			s.Players[seat].Pieces = append(s.Players[seat].Pieces, piece)
		}
	}
	s.Current = 0
	s.TurnCount = 0
	s.Phase = PhaseAwaitingSelection
	s.Selected = nil
	s.Conversion = nil
	s.WinnerSeat = -1
	s.WinnerTeam = -1
	s.RotationProgress = 0
	s.Message = ""
	s.ensureNoInitialChecks()
}

// ensureNoInitialChecks nudges pawns until no seat starts in check. The
// raw layout leaves a king on an open queen diagonal; a relocated pawn
// blocks the ray.
func (s *GameState) ensureNoInitialChecks() {
	rules := NewRules()
	for seat := range s.Players {
		if rules.IsInCheck(s.Board, seat) {
			s.adjustPawnsToPreventCheck(rules, seat)
		}
	}
}

// adjustPawnsToPreventCheck relocates at most one pawn of the seat to a
// nearby empty cell that clears the check. Pawns are tried in placement
// order; candidates stay inside rows [max(1, r-2), min(6, r+2)) and the
// matching column window.
func (s *GameState) adjustPawnsToPreventCheck(rules Rules, seat int) {
	for _, pawn := range s.Players[seat].Pieces {
		if pawn.Type != Pawn {
			continue
		}
		old := pawn.Pos
		for nr := max(1, old.Row-2); nr < min(6, old.Row+2); nr++ {
			for nc := max(1, old.Col-2); nc < min(6, old.Col+2); nc++ {
				target := Cell{Row: nr, Col: nc}
				if target == old || s.Board.At(target) != nil {
					continue
				}
				s.Board.setCell(old, nil)
				s.Board.Place(pawn, target)
				if !rules.IsInCheck(s.Board, seat) {
					return
				}
				s.Board.setCell(target, nil)
				s.Board.Place(pawn, old)
			}
		}
	}
}
