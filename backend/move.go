package main

// Move is a source and destination pair on the board.
type Move struct {
	From Cell `json:"from"`
	To   Cell `json:"to"`
}

func (m Move) Equals(other Move) bool {
	return m.From == other.From && m.To == other.To
}

// MoveResult reports what committing a move did to the game.
type MoveResult struct {
	Applied           bool   `json:"applied"`
	Captured          string `json:"captured,omitempty"`
	Check             bool   `json:"check,omitempty"`
	Checkmate         bool   `json:"checkmate,omitempty"`
	Stalemate         bool   `json:"stalemate,omitempty"`
	ConversionPending bool   `json:"conversion_pending,omitempty"`
	GameOver          bool   `json:"game_over,omitempty"`
	WinnerSeat        *int   `json:"winner,omitempty"`
	WinnerTeam        *int   `json:"winner_team,omitempty"`
}
