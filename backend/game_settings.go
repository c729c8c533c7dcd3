package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameMode int

const (
	ModeFreeForAll GameMode = iota
	ModeTeams
)

// GameSettings configures one game. SeatTypes and Mode travel as strings on
// the wire; the DTO layer maps them.
type GameSettings struct {
	SeatTypes          [NumPlayers]PlayerType `json:"-"`
	Mode               GameMode               `json:"-"`
	AiDepth            int                    `json:"ai_depth"`
	AiMoveDelayMs      int                    `json:"ai_move_delay_ms"`
	RotationDurationMs int                    `json:"rotation_duration_ms"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		SeatTypes:          [NumPlayers]PlayerType{PlayerHuman, PlayerAI, PlayerAI, PlayerAI},
		Mode:               ModeFreeForAll,
		AiDepth:            2,
		AiMoveDelayMs:      1000,
		RotationDurationMs: 1000,
	}
}

// Normalized clamps out-of-range values to playable ones.
func (s GameSettings) Normalized() GameSettings {
	out := s
	for i, t := range out.SeatTypes {
		if t != PlayerHuman && t != PlayerAI {
			out.SeatTypes[i] = PlayerAI
		}
	}
	if out.Mode != ModeFreeForAll && out.Mode != ModeTeams {
		out.Mode = ModeFreeForAll
	}
	if out.AiDepth < 1 {
		out.AiDepth = 1
	}
	if out.AiDepth > 4 {
		out.AiDepth = 4
	}
	if out.AiMoveDelayMs < 0 {
		out.AiMoveDelayMs = 0
	}
	if out.RotationDurationMs <= 0 {
		out.RotationDurationMs = 1000
	}
	return out
}

// TeamOf returns the seat's team, or -1 in free-for-all. Teams pair
// opposite edges: seats {0, 2} versus {1, 3}.
func (s GameSettings) TeamOf(seat int) int {
	if s.Mode != ModeTeams {
		return -1
	}
	return seat % 2
}
