package main

// IPlayer is a seat controller. Human seats act through the API, so their
// ChooseMove is never consulted; AI seats use it as the synchronous path.
type IPlayer interface {
	IsHuman() bool
	ChooseMove(state GameState, rules Rules) Move
}
