package main

// HumanPlayer marks a seat driven from outside. The game validates and
// commits human moves synchronously, so ChooseMove returns the zero Move.
type HumanPlayer struct{}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) ChooseMove(GameState, Rules) Move {
	return Move{}
}
