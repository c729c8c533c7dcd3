package main

const (
	// BoardSize is the board edge length. The rules assume 8.
	BoardSize  = 8
	boardCells = BoardSize * BoardSize
)

// Board is an 8x8 grid of piece references plus the rotation count. A cell
// is nil or holds exactly one piece, and every piece's Pos agrees with the
// cell that holds it. Copies share the backing slice; use Clone for an
// independent position.
type Board struct {
	cells    []*Piece
	rotation int
}

func NewBoard() Board {
	return Board{cells: make([]*Piece, boardCells)}
}

func (b Board) index(c Cell) int {
	return c.Row*BoardSize + c.Col
}

func (b Board) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// At returns the piece at c, or nil.
func (b Board) At(c Cell) *Piece {
	return b.cells[b.index(c)]
}

func (b *Board) setCell(c Cell, p *Piece) {
	b.cells[b.index(c)] = p
}

// Rotation returns how many 90° clockwise turns the board has taken, 0..3.
func (b Board) Rotation() int {
	return b.rotation
}

// Place puts a piece on a cell during setup and fixes its Pos.
func (b *Board) Place(p *Piece, c Cell) {
	p.Pos = c
	b.setCell(c, p)
}

// MoveUndo captures what MovePiece changed so the move can be rolled back.
type MoveUndo struct {
	Piece    *Piece
	Captured *Piece
	From     Cell
	To       Cell
}

// MovePiece commits a move: the source cell empties, whatever occupied the
// destination is captured, and the piece's Moved flag is set. The returned
// undo token restores cells and Pos but not Moved, so it is only safe on
// search clones; the live board never rolls back a committed move.
func (b *Board) MovePiece(from, to Cell) (*Piece, MoveUndo) {
	piece := b.At(from)
	captured := b.At(to)
	b.setCell(from, nil)
	b.setCell(to, piece)
	piece.Pos = to
	piece.Moved = true
	return captured, MoveUndo{Piece: piece, Captured: captured, From: from, To: to}
}

// Undo rolls back a MovePiece. The Moved flag stays burned.
func (b *Board) Undo(u MoveUndo) {
	b.setCell(u.From, u.Piece)
	b.setCell(u.To, u.Captured)
	u.Piece.Pos = u.From
}

// Remove clears the piece's cell if the cell still holds it.
func (b *Board) Remove(p *Piece) {
	if b.At(p.Pos) == p {
		b.setCell(p.Pos, nil)
	}
}

// Rotate transplants every piece (row, col) -> (col, 7-row), a 90° clockwise
// turn, and bumps the rotation count. Four calls restore the original
// position exactly.
func (b *Board) Rotate() {
	next := make([]*Piece, boardCells)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			p := b.cells[r*BoardSize+c]
			if p == nil {
				continue
			}
			dest := Cell{Row: c, Col: BoardSize - 1 - r}
			p.Pos = dest
			next[b.index(dest)] = p
		}
	}
	b.cells = next
	b.rotation = (b.rotation + 1) % 4
}

// Clone returns a deep copy with freshly allocated pieces.
func (b Board) Clone() Board {
	clone, _ := b.cloneWithMap()
	return clone
}

// cloneWithMap is Clone plus the old-piece to new-piece mapping, for callers
// that hold piece references outside the cells.
func (b Board) cloneWithMap() (Board, map[*Piece]*Piece) {
	remap := make(map[*Piece]*Piece, len(b.cells))
	cells := make([]*Piece, boardCells)
	for i, p := range b.cells {
		if p == nil {
			continue
		}
		cp := *p
		cells[i] = &cp
		remap[p] = &cp
	}
	return Board{cells: cells, rotation: b.rotation}, remap
}

// KingOf returns the seat's king, or nil once it has been captured.
func (b Board) KingOf(seat int) *Piece {
	for _, p := range b.cells {
		if p != nil && p.Type == King && p.Owner == seat {
			return p
		}
	}
	return nil
}

// PiecesOf returns the seat's pieces in row-major board order.
func (b Board) PiecesOf(seat int) []*Piece {
	var pieces []*Piece
	for _, p := range b.cells {
		if p != nil && p.Owner == seat {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Pieces returns every piece on the board in row-major order.
func (b Board) Pieces() []*Piece {
	var pieces []*Piece
	for _, p := range b.cells {
		if p != nil {
			pieces = append(pieces, p)
		}
	}
	return pieces
}
