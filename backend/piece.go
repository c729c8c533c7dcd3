package main

// PieceType identifies one of the six chess piece kinds.
type PieceType int

const (
	Pawn PieceType = iota
	Rook
	Knight
	Bishop
	Queen
	King
)

const numPieceTypes = 6

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "unknown"
	}
}

// Glyph returns the single-letter notation used in history entries.
func (t PieceType) Glyph() string {
	switch t {
	case Pawn:
		return "P"
	case Rook:
		return "R"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return "?"
	}
}

// Value returns the material value used by the evaluation function.
func (t PieceType) Value() float64 {
	switch t {
	case King:
		return 1000
	case Queen:
		return 9
	case Rook:
		return 5
	case Bishop:
		return 3
	case Knight:
		return 3
	case Pawn:
		return 1
	default:
		return 0
	}
}

// Cell is a board coordinate. Row 0 is the top edge, Col 0 the left edge.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Piece is one piece on the board. Owner is a seat id, never a pointer to
// the owning player. Moved only matters for the pawn double-step.
type Piece struct {
	Type  PieceType
	Owner int
	Pos   Cell
	Moved bool
}
