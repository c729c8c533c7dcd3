package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPawnDirectionFollowsRotation(t *testing.T) {
	rules := NewRules()
	cases := []struct {
		owner, rotation int
		d0, d1          int
	}{
		{0, 0, -1, 0},
		{1, 0, 0, -1},
		{2, 0, 1, 0},
		{3, 0, 0, 1},
		{0, 1, 0, 1},
		{1, 1, -1, 0},
		{2, 3, 0, 1},
		{3, 2, 0, -1},
	}
	for _, tc := range cases {
		d0, d1 := rules.pawnDirection(tc.owner, tc.rotation)
		if d0 != tc.d0 || d1 != tc.d1 {
			t.Fatalf("expected direction (%d,%d) for owner %d rotation %d, got (%d,%d)",
				tc.d0, tc.d1, tc.owner, tc.rotation, d0, d1)
		}
	}
}

func TestPawnForwardMoves(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	pawn := &Piece{Type: Pawn, Owner: 0}
	b.Place(pawn, Cell{Row: 6, Col: 3})

	got := rules.PseudoMoves(b, pawn)
	want := []Cell{{Row: 5, Col: 3}, {Row: 4, Col: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected single and double step for an unmoved pawn (-want +got):\n%s", diff)
	}

	pawn.Moved = true
	got = rules.PseudoMoves(b, pawn)
	want = []Cell{{Row: 5, Col: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected single step only once moved (-want +got):\n%s", diff)
	}
	pawn.Moved = false

	// A blocked single step also rules the double step out.
	blocker := &Piece{Type: Pawn, Owner: 1}
	b.Place(blocker, Cell{Row: 5, Col: 3})
	if got := rules.PseudoMoves(b, pawn); len(got) != 0 {
		t.Fatalf("expected no forward moves through a blocker, got %+v", got)
	}

	b.Remove(blocker)
	b.Place(blocker, Cell{Row: 4, Col: 3})
	got = rules.PseudoMoves(b, pawn)
	want = []Cell{{Row: 5, Col: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected single step when only the double cell is blocked (-want +got):\n%s", diff)
	}
}

func TestPawnCaptureDiagonalsRowMover(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	pawn := &Piece{Type: Pawn, Owner: 0}
	b.Place(pawn, Cell{Row: 6, Col: 3})
	b.Place(&Piece{Type: Pawn, Owner: 2}, Cell{Row: 5, Col: 2})
	b.Place(&Piece{Type: Pawn, Owner: 1}, Cell{Row: 5, Col: 4})

	// For forward (-1,0) both rotate-90 combinations collapse to (-1,-1),
	// so an up-moving pawn captures on one diagonal only. The piece on the
	// other diagonal is out of reach; team membership is no protection.
	got := rules.PseudoMoves(b, pawn)
	want := []Cell{{Row: 5, Col: 3}, {Row: 4, Col: 3}, {Row: 5, Col: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected a single capture diagonal for a row-mover (-want +got):\n%s", diff)
	}
}

func TestPawnCaptureDiagonalsColMover(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	pawn := &Piece{Type: Pawn, Owner: 1}
	b.Place(pawn, Cell{Row: 3, Col: 6})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 2, Col: 7})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 4, Col: 5})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 2, Col: 5})

	// Forward (0,-1) yields diagonals (-1,+1) and (+1,-1). The cell at
	// (2,5) sits on neither and stays safe.
	got := rules.PseudoMoves(b, pawn)
	want := []Cell{{Row: 3, Col: 5}, {Row: 3, Col: 4}, {Row: 2, Col: 7}, {Row: 4, Col: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected the rotate-90 capture diagonals for a col-mover (-want +got):\n%s", diff)
	}
}

func TestKnightMoves(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	knight := &Piece{Type: Knight, Owner: 0}
	b.Place(knight, Cell{Row: 4, Col: 4})

	got := rules.PseudoMoves(b, knight)
	want := []Cell{
		{Row: 6, Col: 5}, {Row: 6, Col: 3}, {Row: 2, Col: 5}, {Row: 2, Col: 3},
		{Row: 5, Col: 6}, {Row: 5, Col: 2}, {Row: 3, Col: 6}, {Row: 3, Col: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected all eight knight targets from the center (-want +got):\n%s", diff)
	}
}

func TestKnightMovesFromCorner(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	knight := &Piece{Type: Knight, Owner: 0}
	b.Place(knight, Cell{Row: 0, Col: 0})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 2, Col: 1})
	b.Place(&Piece{Type: Pawn, Owner: 1}, Cell{Row: 1, Col: 2})

	got := rules.PseudoMoves(b, knight)
	want := []Cell{{Row: 1, Col: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected corner knight to skip its own pawn and keep the capture (-want +got):\n%s", diff)
	}
}

func TestRookMovesStopAtBlockers(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	rook := &Piece{Type: Rook, Owner: 0}
	b.Place(rook, Cell{Row: 4, Col: 4})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 4, Col: 6})
	b.Place(&Piece{Type: Pawn, Owner: 1}, Cell{Row: 6, Col: 4})

	got := rules.PseudoMoves(b, rook)
	want := []Cell{
		{Row: 5, Col: 4}, {Row: 6, Col: 4},
		{Row: 3, Col: 4}, {Row: 2, Col: 4}, {Row: 1, Col: 4}, {Row: 0, Col: 4},
		{Row: 4, Col: 5},
		{Row: 4, Col: 3}, {Row: 4, Col: 2}, {Row: 4, Col: 1}, {Row: 4, Col: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected rook rays to include the enemy blocker and stop before its own (-want +got):\n%s", diff)
	}
}

func TestBishopMovesFromCorner(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	bishop := &Piece{Type: Bishop, Owner: 2}
	b.Place(bishop, Cell{Row: 0, Col: 0})

	got := rules.PseudoMoves(b, bishop)
	want := []Cell{
		{Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 3, Col: 3}, {Row: 4, Col: 4},
		{Row: 5, Col: 5}, {Row: 6, Col: 6}, {Row: 7, Col: 7},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected the full main diagonal from the corner (-want +got):\n%s", diff)
	}
}

func TestKingMoves(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	king := &Piece{Type: King, Owner: 2}
	b.Place(king, Cell{Row: 0, Col: 4})
	b.Place(&Piece{Type: Queen, Owner: 2}, Cell{Row: 1, Col: 4})

	got := rules.PseudoMoves(b, king)
	want := []Cell{
		{Row: 0, Col: 3}, {Row: 0, Col: 5},
		{Row: 1, Col: 3}, {Row: 1, Col: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected king steps minus the own-queen cell (-want +got):\n%s", diff)
	}
}

func TestAttackCellsIncludeProtectedPieces(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	rook := &Piece{Type: Rook, Owner: 0}
	b.Place(rook, Cell{Row: 4, Col: 4})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 4, Col: 6})

	cells := rules.AttackCells(b, rook)
	if !containsCell(cells, Cell{Row: 4, Col: 6}) {
		t.Fatalf("expected the rook to attack the own pawn's cell, got %+v", cells)
	}
	if containsCell(cells, Cell{Row: 4, Col: 7}) {
		t.Fatalf("expected the ray to stop at the first occupied cell, got %+v", cells)
	}
}

func TestPawnAttacksIgnoreOccupancy(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	pawn := &Piece{Type: Pawn, Owner: 1}
	b.Place(pawn, Cell{Row: 3, Col: 6})

	got := rules.AttackCells(b, pawn)
	want := []Cell{{Row: 2, Col: 7}, {Row: 4, Col: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected pawn attack diagonals on an empty board (-want +got):\n%s", diff)
	}
}

func TestIsInCheckAlongRookLine(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: King, Owner: 1}, Cell{Row: 0, Col: 0})
	b.Place(&Piece{Type: Rook, Owner: 0}, Cell{Row: 0, Col: 5})

	if !rules.IsInCheck(b, 1) {
		t.Fatalf("expected check along the open rook line")
	}

	b.Place(&Piece{Type: Pawn, Owner: 2}, Cell{Row: 0, Col: 3})
	if rules.IsInCheck(b, 1) {
		t.Fatalf("expected the interposed piece to block the check")
	}
}

func TestIsInCheckWithoutKing(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: Queen, Owner: 0}, Cell{Row: 3, Col: 3})

	if rules.IsInCheck(b, 1) {
		t.Fatalf("expected a seat without a king to never be in check")
	}
}

func TestTeammateAttackCountsAsCheck(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: King, Owner: 0}, Cell{Row: 0, Col: 0})
	b.Place(&Piece{Type: Rook, Owner: 2}, Cell{Row: 0, Col: 5})

	// Seats 0 and 2 share a team in teams mode, but check detection only
	// compares owners.
	if !rules.IsInCheck(b, 0) {
		t.Fatalf("expected a teammate's attack to count as check")
	}
}

func TestLegalMovesKeepPinnedPieceOnLine(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: King, Owner: 0}, Cell{Row: 7, Col: 4})
	rook := &Piece{Type: Rook, Owner: 0}
	b.Place(rook, Cell{Row: 5, Col: 4})
	b.Place(&Piece{Type: Rook, Owner: 1}, Cell{Row: 0, Col: 4})

	got := rules.LegalMoves(&b, rook)
	want := []Cell{
		{Row: 6, Col: 4}, {Row: 4, Col: 4}, {Row: 3, Col: 4},
		{Row: 2, Col: 4}, {Row: 1, Col: 4}, {Row: 0, Col: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected the pinned rook to stay on the king's file (-want +got):\n%s", diff)
	}
}

func TestLegalMovesLeaveBoardUntouched(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: King, Owner: 0}, Cell{Row: 7, Col: 4})
	rook := &Piece{Type: Rook, Owner: 0}
	b.Place(rook, Cell{Row: 5, Col: 4})
	b.Place(&Piece{Type: Rook, Owner: 1}, Cell{Row: 0, Col: 4})

	before := boardSnapshot(b)
	rules.LegalMoves(&b, rook)

	if diff := cmp.Diff(before, boardSnapshot(b)); diff != "" {
		t.Fatalf("expected trial moves to restore the board (-before +after):\n%s", diff)
	}
	if rook.Moved {
		t.Fatalf("expected trial moves to never burn the Moved flag")
	}
}

func TestCheckmateInCorner(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: King, Owner: 1}, Cell{Row: 0, Col: 0})
	b.Place(&Piece{Type: Queen, Owner: 0}, Cell{Row: 1, Col: 1})
	b.Place(&Piece{Type: King, Owner: 0}, Cell{Row: 2, Col: 2})

	if !rules.IsCheckmate(&b, 1) {
		t.Fatalf("expected the protected queen on the adjacent diagonal to mate")
	}
	if rules.IsStalemate(&b, 1) {
		t.Fatalf("expected checkmate, not stalemate")
	}
}

func TestStalemateInCorner(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: King, Owner: 1}, Cell{Row: 0, Col: 0})
	b.Place(&Piece{Type: Rook, Owner: 0}, Cell{Row: 1, Col: 5})
	b.Place(&Piece{Type: Rook, Owner: 0}, Cell{Row: 3, Col: 1})

	if !rules.IsStalemate(&b, 1) {
		t.Fatalf("expected the cornered king with no safe step to be stalemated")
	}
	if rules.IsCheckmate(&b, 1) {
		t.Fatalf("expected stalemate, not checkmate")
	}
}

func TestCheckSelectionReasons(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	pawn := &Piece{Type: Pawn, Owner: 0}
	b.Place(pawn, Cell{Row: 6, Col: 3})
	b.Place(&Piece{Type: Pawn, Owner: 0}, Cell{Row: 5, Col: 3})
	b.Place(&Piece{Type: Rook, Owner: 1}, Cell{Row: 0, Col: 0})

	cases := []struct {
		at     Cell
		ok     bool
		reason string
	}{
		{Cell{Row: -1, Col: 0}, false, "out of bounds"},
		{Cell{Row: 3, Col: 3}, false, "empty cell"},
		{Cell{Row: 0, Col: 0}, false, "not your piece"},
		{Cell{Row: 6, Col: 3}, false, "piece has no moves"},
		{Cell{Row: 5, Col: 3}, true, ""},
	}
	for _, tc := range cases {
		ok, reason := rules.CheckSelection(&b, 0, tc.at)
		if ok != tc.ok || reason != tc.reason {
			t.Fatalf("expected (%v, %q) for selection at %+v, got (%v, %q)", tc.ok, tc.reason, tc.at, ok, reason)
		}
	}
}

func TestCheckDestinationReasons(t *testing.T) {
	rules := NewRules()
	b := NewBoard()
	b.Place(&Piece{Type: Rook, Owner: 0}, Cell{Row: 4, Col: 4})
	b.Place(&Piece{Type: Pawn, Owner: 1}, Cell{Row: 4, Col: 6})

	if ok, reason := rules.CheckDestination(&b, 0, Cell{Row: 4, Col: 4}, Cell{Row: 4, Col: 6}); !ok {
		t.Fatalf("expected the rook capture to validate, got reason %q", reason)
	}
	if ok, reason := rules.CheckDestination(&b, 0, Cell{Row: 4, Col: 4}, Cell{Row: 5, Col: 5}); ok || reason != "destination not allowed" {
		t.Fatalf("expected a diagonal rook move to be rejected, got (%v, %q)", ok, reason)
	}
	if ok, reason := rules.CheckDestination(&b, 0, Cell{Row: 4, Col: 4}, Cell{Row: 8, Col: 4}); ok || reason != "out of bounds" {
		t.Fatalf("expected an off-board destination to be rejected, got (%v, %q)", ok, reason)
	}
	if ok, reason := rules.CheckDestination(&b, 0, Cell{Row: 3, Col: 3}, Cell{Row: 4, Col: 4}); ok || reason != "empty cell" {
		t.Fatalf("expected the selection reason to propagate, got (%v, %q)", ok, reason)
	}
}

func containsCell(cells []Cell, c Cell) bool {
	for _, cell := range cells {
		if cell == c {
			return true
		}
	}
	return false
}
