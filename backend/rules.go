package main

// Direction tables. Enumeration order is load-bearing: the search breaks
// score ties by first-seen, so these lists fix which move wins.
var (
	// pawnBaseDirs is indexed by (owner - rotation) mod 4.
	pawnBaseDirs = [4][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}}

	knightOffsets = [8][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}

	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	kingDirs   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
)

// Rules implements piece movement, check detection, and legality filtering.
// It is stateless; the board carries everything the rules need.
type Rules struct{}

func NewRules() Rules {
	return Rules{}
}

// pawnDirection returns the forward direction for a seat's pawns under the
// current rotation.
func (r Rules) pawnDirection(owner, rotation int) (int, int) {
	idx := ((owner-rotation)%4 + 4) % 4
	d := pawnBaseDirs[idx]
	return d[0], d[1]
}

// pawnCaptureDirs derives the capture diagonals from the forward direction
// (d0, d1). For axis-aligned directions the two formulas coincide; the
// duplicate is dropped so each capture cell is produced once.
func (r Rules) pawnCaptureDirs(d0, d1 int) [][2]int {
	first := [2]int{d0 + d1, d0 - d1}
	second := [2]int{d0 - d1, d0 + d1}
	if first == second {
		return [][2]int{first}
	}
	return [][2]int{first, second}
}

// PseudoMoves lists the piece's moves before check filtering. "Different
// owner" means different seat id: team membership does not protect a piece
// from capture.
func (r Rules) PseudoMoves(b Board, p *Piece) []Cell {
	var moves []Cell
	switch p.Type {
	case Pawn:
		d0, d1 := r.pawnDirection(p.Owner, b.Rotation())
		one := Cell{Row: p.Pos.Row + d0, Col: p.Pos.Col + d1}
		if b.InBounds(one) && b.At(one) == nil {
			moves = append(moves, one)
			// The double-step is only considered when the single step
			// is open.
			if !p.Moved {
				two := Cell{Row: p.Pos.Row + 2*d0, Col: p.Pos.Col + 2*d1}
				if b.InBounds(two) && b.At(two) == nil {
					moves = append(moves, two)
				}
			}
		}
		for _, d := range r.pawnCaptureDirs(d0, d1) {
			target := Cell{Row: p.Pos.Row + d[0], Col: p.Pos.Col + d[1]}
			if !b.InBounds(target) {
				continue
			}
			if other := b.At(target); other != nil && other.Owner != p.Owner {
				moves = append(moves, target)
			}
		}
	case Knight:
		for _, d := range knightOffsets {
			target := Cell{Row: p.Pos.Row + d[0], Col: p.Pos.Col + d[1]}
			if !b.InBounds(target) {
				continue
			}
			if other := b.At(target); other == nil || other.Owner != p.Owner {
				moves = append(moves, target)
			}
		}
	case Bishop:
		moves = r.slideMoves(b, p, bishopDirs[:])
	case Rook:
		moves = r.slideMoves(b, p, rookDirs[:])
	case Queen:
		moves = r.slideMoves(b, p, queenDirs[:])
	case King:
		for _, d := range kingDirs {
			target := Cell{Row: p.Pos.Row + d[0], Col: p.Pos.Col + d[1]}
			if !b.InBounds(target) {
				continue
			}
			if other := b.At(target); other == nil || other.Owner != p.Owner {
				moves = append(moves, target)
			}
		}
	}
	return moves
}

func (r Rules) slideMoves(b Board, p *Piece, dirs [][2]int) []Cell {
	var moves []Cell
	for _, d := range dirs {
		for i := 1; i < BoardSize; i++ {
			target := Cell{Row: p.Pos.Row + i*d[0], Col: p.Pos.Col + i*d[1]}
			if !b.InBounds(target) {
				break
			}
			other := b.At(target)
			if other == nil {
				moves = append(moves, target)
				continue
			}
			if other.Owner != p.Owner {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

// AttackCells lists the cells the piece attacks, for check tests. Pawns
// attack their capture diagonals only, occupancy ignored; sliders include
// the first occupied cell in each ray regardless of its owner.
func (r Rules) AttackCells(b Board, p *Piece) []Cell {
	var cells []Cell
	switch p.Type {
	case Pawn:
		d0, d1 := r.pawnDirection(p.Owner, b.Rotation())
		for _, d := range r.pawnCaptureDirs(d0, d1) {
			target := Cell{Row: p.Pos.Row + d[0], Col: p.Pos.Col + d[1]}
			if b.InBounds(target) {
				cells = append(cells, target)
			}
		}
	case Knight:
		for _, d := range knightOffsets {
			target := Cell{Row: p.Pos.Row + d[0], Col: p.Pos.Col + d[1]}
			if b.InBounds(target) {
				cells = append(cells, target)
			}
		}
	case Bishop:
		cells = r.slideAttacks(b, p, bishopDirs[:])
	case Rook:
		cells = r.slideAttacks(b, p, rookDirs[:])
	case Queen:
		cells = r.slideAttacks(b, p, queenDirs[:])
	case King:
		for _, d := range kingDirs {
			target := Cell{Row: p.Pos.Row + d[0], Col: p.Pos.Col + d[1]}
			if b.InBounds(target) {
				cells = append(cells, target)
			}
		}
	}
	return cells
}

func (r Rules) slideAttacks(b Board, p *Piece, dirs [][2]int) []Cell {
	var cells []Cell
	for _, d := range dirs {
		for i := 1; i < BoardSize; i++ {
			target := Cell{Row: p.Pos.Row + i*d[0], Col: p.Pos.Col + i*d[1]}
			if !b.InBounds(target) {
				break
			}
			cells = append(cells, target)
			if b.At(target) != nil {
				break
			}
		}
	}
	return cells
}

// IsInCheck reports whether the seat's king is attacked. A missing king
// (already captured) is never in check. Every piece with a different owner
// counts as an attacker, teammates and eliminated seats included.
func (r Rules) IsInCheck(b Board, seat int) bool {
	king := b.KingOf(seat)
	if king == nil {
		return false
	}
	for _, p := range b.Pieces() {
		if p.Owner == seat {
			continue
		}
		for _, c := range r.AttackCells(b, p) {
			if c == king.Pos {
				return true
			}
		}
	}
	return false
}

// wouldLeaveInCheck trials the move with a bare cell swap and restores the
// cells and Pos exactly. The trial never touches the Moved flag; only
// committed moves burn it.
func (r Rules) wouldLeaveInCheck(b *Board, p *Piece, to Cell) bool {
	from := p.Pos
	captured := b.At(to)
	b.setCell(from, nil)
	b.setCell(to, p)
	p.Pos = to
	inCheck := r.IsInCheck(*b, p.Owner)
	b.setCell(to, captured)
	b.setCell(from, p)
	p.Pos = from
	return inCheck
}

// LegalMoves filters PseudoMoves down to moves that leave the mover's own
// king safe.
func (r Rules) LegalMoves(b *Board, p *Piece) []Cell {
	var legal []Cell
	for _, to := range r.PseudoMoves(*b, p) {
		if !r.wouldLeaveInCheck(b, p, to) {
			legal = append(legal, to)
		}
	}
	return legal
}

// HasAnyLegalMove short-circuits on the seat's first legal move.
func (r Rules) HasAnyLegalMove(b *Board, seat int) bool {
	for _, p := range b.PiecesOf(seat) {
		for _, to := range r.PseudoMoves(*b, p) {
			if !r.wouldLeaveInCheck(b, p, to) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate reports no legal move while in check.
func (r Rules) IsCheckmate(b *Board, seat int) bool {
	return r.IsInCheck(*b, seat) && !r.HasAnyLegalMove(b, seat)
}

// IsStalemate reports no legal move while not in check.
func (r Rules) IsStalemate(b *Board, seat int) bool {
	return !r.IsInCheck(*b, seat) && !r.HasAnyLegalMove(b, seat)
}

// CheckSelection validates that the seat may pick up the piece at c.
func (r Rules) CheckSelection(b *Board, seat int, at Cell) (bool, string) {
	if !b.InBounds(at) {
		return false, "out of bounds"
	}
	p := b.At(at)
	if p == nil {
		return false, "empty cell"
	}
	if p.Owner != seat {
		return false, "not your piece"
	}
	if len(r.LegalMoves(b, p)) == 0 {
		return false, "piece has no moves"
	}
	return true, ""
}

// CheckDestination validates from and to as a complete move for the seat.
func (r Rules) CheckDestination(b *Board, seat int, from, to Cell) (bool, string) {
	if ok, reason := r.CheckSelection(b, seat, from); !ok {
		return false, reason
	}
	if !b.InBounds(to) {
		return false, "out of bounds"
	}
	for _, c := range r.LegalMoves(b, b.At(from)) {
		if c == to {
			return true, ""
		}
	}
	return false, "destination not allowed"
}
