package main

// NumPlayers is the seat count. Seats are ids 0..3 around the board.
const NumPlayers = 4

type GamePhase int

const (
	PhaseAwaitingSelection GamePhase = iota
	PhaseAwaitingDestination
	PhaseRotating
	PhaseConversionPending
	PhaseGameOver
)

func (p GamePhase) String() string {
	switch p {
	case PhaseAwaitingSelection:
		return "awaiting_selection"
	case PhaseAwaitingDestination:
		return "awaiting_destination"
	case PhaseRotating:
		return "rotating"
	case PhaseConversionPending:
		return "conversion_pending"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// PlayerState is one seat's record. Pieces lists the seat's on-board pieces
// and is maintained on committed paths only; search clones may let it drift
// because nothing in the search reads it.
type PlayerState struct {
	Seat       int
	Team       int
	Eliminated bool
	IsAI       bool
	Pieces     []*Piece
}

// PendingConversion records an open conversion decision. Targets is the
// convertible set frozen at checkmate time: the defeated seat's non-king
// pieces still on the board.
type PendingConversion struct {
	Victor   int
	Defeated int
	Targets  []Cell
}

// GameState is the complete game position. WinnerSeat and WinnerTeam stay
// -1 until the game ends.
type GameState struct {
	Board            Board
	Players          [NumPlayers]*PlayerState
	Current          int
	TurnCount        int
	Phase            GamePhase
	Selected         *Cell
	Conversion       *PendingConversion
	WinnerSeat       int
	WinnerTeam       int
	RotationProgress float64
	Message          string
	Settings         GameSettings
}

func DefaultGameState(settings GameSettings) GameState {
	state := GameState{}
	state.Reset(settings)
	return state
}

// Clone returns a deep copy with independent pieces; mutating the clone
// never touches the original.
func (s GameState) Clone() GameState {
	clone := s
	board, remap := s.Board.cloneWithMap()
	clone.Board = board
	for i, p := range s.Players {
		cp := *p
		cp.Pieces = make([]*Piece, 0, len(p.Pieces))
		for _, piece := range p.Pieces {
			if np, ok := remap[piece]; ok {
				cp.Pieces = append(cp.Pieces, np)
			}
		}
		clone.Players[i] = &cp
	}
	if s.Selected != nil {
		sel := *s.Selected
		clone.Selected = &sel
	}
	if s.Conversion != nil {
		conv := *s.Conversion
		conv.Targets = append([]Cell(nil), s.Conversion.Targets...)
		clone.Conversion = &conv
	}
	return clone
}

func (s GameState) EliminatedCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Eliminated {
			count++
		}
	}
	return count
}

// NextActiveSeat returns the next non-eliminated seat after from. At least
// one seat must be alive.
func (s GameState) NextActiveSeat(from int) int {
	idx := (from + 1) % NumPlayers
	for s.Players[idx].Eliminated {
		idx = (idx + 1) % NumPlayers
	}
	return idx
}

// RotationCadence is how many committed turns pass between rotations:
// max(1, 4 - eliminated).
func (s GameState) RotationCadence() int {
	cadence := NumPlayers - s.EliminatedCount()
	if cadence < 1 {
		cadence = 1
	}
	return cadence
}
