package main

import (
	"fmt"
	"log"
	"time"
)

// Game owns the live state machine: turn order, eliminations, conversions,
// rotation, and the AI lifecycle. It is not safe for concurrent use;
// GameController serializes access.
type Game struct {
	state   GameState
	rules   Rules
	players [NumPlayers]IPlayer
	history MoveHistory

	aiDelayLeftMs float64
	hintAI        *AIPlayer
	hintHash      uint64
	analysisSink  func(GameState)
}

func NewGame(settings GameSettings) *Game {
	g := &Game{rules: NewRules(), hintAI: NewAIPlayer()}
	g.Reset(settings)
	return g
}

// Reset rebuilds the initial position and recreates the seat controllers.
func (g *Game) Reset(settings GameSettings) {
	g.stopSearches()
	g.state.Reset(settings)
	g.players = createPlayers(g.state.Settings)
	g.history.Clear()
	g.hintHash = 0
	g.beginTurn()
	g.publishAnalysis()
}

func createPlayers(settings GameSettings) [NumPlayers]IPlayer {
	var players [NumPlayers]IPlayer
	for seat, kind := range settings.SeatTypes {
		if kind == PlayerAI {
			players[seat] = NewAIPlayer()
		} else {
			players[seat] = NewHumanPlayer()
		}
	}
	return players
}

func (g *Game) stopSearches() {
	if g.hintAI != nil {
		g.hintAI.Stop()
	}
	for _, p := range g.players {
		if ai, ok := p.(*AIPlayer); ok {
			ai.Stop()
		}
	}
}

// State returns a deep copy of the current position.
func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) Settings() GameSettings {
	return g.state.Settings
}

func (g *Game) History() []HistoryEntry {
	return g.history.All()
}

func (g *Game) SetAnalysisSink(sink func(GameState)) {
	g.analysisSink = sink
}

func (g *Game) publishAnalysis() {
	if g.analysisSink != nil {
		g.analysisSink(g.state.Clone())
	}
}

// actionLockReason returns why the seat cannot act right now, or "".
func (g *Game) actionLockReason(seat int) string {
	switch g.state.Phase {
	case PhaseRotating:
		return "board is rotating"
	case PhaseConversionPending:
		return "conversion pending"
	case PhaseGameOver:
		return "game over"
	}
	if seat != g.state.Current {
		return "not your turn"
	}
	return ""
}

// LegalMovesAt lists legal destinations for the piece at the cell,
// whichever seat owns it.
func (g *Game) LegalMovesAt(at Cell) ([]Cell, error) {
	if !g.state.Board.InBounds(at) {
		return nil, fmt.Errorf("%w: out of bounds", ErrInvalidSelection)
	}
	p := g.state.Board.At(at)
	if p == nil {
		return nil, fmt.Errorf("%w: empty cell", ErrInvalidSelection)
	}
	return g.rules.LegalMoves(&g.state.Board, p), nil
}

// SelectPiece validates ownership and mobility, records the selection, and
// returns the legal destinations.
func (g *Game) SelectPiece(seat int, at Cell) ([]Cell, error) {
	if reason := g.actionLockReason(seat); reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrActionWhileLocked, reason)
	}
	if !g.players[seat].IsHuman() {
		return nil, fmt.Errorf("%w: seat is ai-controlled", ErrActionWhileLocked)
	}
	if ok, reason := g.rules.CheckSelection(&g.state.Board, seat, at); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, reason)
	}
	sel := at
	g.state.Selected = &sel
	g.state.Phase = PhaseAwaitingDestination
	return g.rules.LegalMoves(&g.state.Board, g.state.Board.At(at)), nil
}

// TryApplyMove validates and commits a move for a human seat. A prior
// SelectPiece is optional; a full from/to pair stands alone.
func (g *Game) TryApplyMove(seat int, from, to Cell) (MoveResult, error) {
	if reason := g.actionLockReason(seat); reason != "" {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrActionWhileLocked, reason)
	}
	if !g.players[seat].IsHuman() {
		return MoveResult{}, fmt.Errorf("%w: seat is ai-controlled", ErrActionWhileLocked)
	}
	if ok, reason := g.rules.CheckSelection(&g.state.Board, seat, from); !ok {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrInvalidSelection, reason)
	}
	if ok, reason := g.rules.CheckDestination(&g.state.Board, seat, from, to); !ok {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrIllegalDestination, reason)
	}
	return g.commitMove(seat, from, to), nil
}

// commitMove applies a validated move, then runs elimination, win,
// checkmate, and conversion checks in that order. Only the NEXT seat in
// turn order is evaluated for checkmate or stalemate.
func (g *Game) commitMove(seat int, from, to Cell) MoveResult {
	g.stopHint()
	piece := g.state.Board.At(from)
	captured, _ := g.state.Board.MovePiece(from, to)
	g.state.Selected = nil
	g.state.Message = ""

	result := MoveResult{Applied: true}
	entry := HistoryEntry{
		Turn:   g.state.TurnCount,
		Seat:   seat,
		Action: ActionMove,
		From:   &from,
		To:     &to,
		Piece:  piece.Type.Glyph(),
	}
	if captured != nil {
		result.Captured = captured.Type.Glyph()
		entry.Captured = captured.Type.Glyph()
		g.removeFromOwnerList(captured)
		if captured.Type == King {
			// A direct king capture eliminates without conversion.
			g.eliminate(captured.Owner)
			if g.checkWin() {
				g.fillWinner(&result)
				g.history.Push(entry)
				g.publishAnalysis()
				return result
			}
		}
	}

	next := g.state.NextActiveSeat(seat)
	inCheck := g.rules.IsInCheck(g.state.Board, next)
	hasMoves := g.rules.HasAnyLegalMove(&g.state.Board, next)
	switch {
	case !hasMoves && inCheck:
		result.Checkmate = true
		entry.Note = "checkmate"
		g.state.Message = fmt.Sprintf("seat %d is checkmated", next)
		log.Printf("[backend] seat %d checkmated seat %d", seat, next)
		g.eliminate(next)
		if g.checkWin() {
			g.fillWinner(&result)
			g.history.Push(entry)
			g.publishAnalysis()
			return result
		}
		if targets := g.convertibleCells(next); len(targets) > 0 {
			g.state.Phase = PhaseConversionPending
			g.state.Conversion = &PendingConversion{Victor: seat, Defeated: next, Targets: targets}
			result.ConversionPending = true
			g.history.Push(entry)
			g.publishAnalysis()
			return result
		}
	case !hasMoves:
		result.Stalemate = true
		entry.Note = "stalemate"
		g.state.Message = fmt.Sprintf("seat %d is stalemated and will pass", next)
	case inCheck:
		result.Check = true
		entry.Note = "check"
		g.state.Message = fmt.Sprintf("seat %d is in check", next)
	}

	g.history.Push(entry)
	g.advanceTurn()
	g.publishAnalysis()
	return result
}

func (g *Game) fillWinner(result *MoveResult) {
	result.GameOver = true
	if g.state.WinnerSeat >= 0 {
		w := g.state.WinnerSeat
		result.WinnerSeat = &w
	}
	if g.state.WinnerTeam >= 0 {
		t := g.state.WinnerTeam
		result.WinnerTeam = &t
	}
}

// eliminate is idempotent: capturing a husk king never double-counts.
func (g *Game) eliminate(seat int) {
	p := g.state.Players[seat]
	if p.Eliminated {
		return
	}
	p.Eliminated = true
	log.Printf("[backend] seat %d eliminated", seat)
}

// checkWin ends the game when one seat, or one team, stands alone. The
// winner seat in team mode is a surviving member.
func (g *Game) checkWin() bool {
	if g.state.Settings.Mode == ModeTeams {
		for team := 0; team < 2; team++ {
			allOut := true
			for _, p := range g.state.Players {
				if p.Team == team && !p.Eliminated {
					allOut = false
					break
				}
			}
			if !allOut {
				continue
			}
			winner := 1 - team
			g.state.WinnerTeam = winner
			for _, p := range g.state.Players {
				if p.Team == winner && !p.Eliminated {
					g.state.WinnerSeat = p.Seat
					break
				}
			}
			g.state.Phase = PhaseGameOver
			g.state.Message = fmt.Sprintf("team %d wins", winner)
			log.Printf("[backend] game over: team %d wins", winner)
			return true
		}
		return false
	}
	alive := -1
	count := 0
	for _, p := range g.state.Players {
		if !p.Eliminated {
			alive = p.Seat
			count++
		}
	}
	if count == 1 {
		g.state.WinnerSeat = alive
		g.state.Phase = PhaseGameOver
		g.state.Message = fmt.Sprintf("seat %d wins", alive)
		log.Printf("[backend] game over: seat %d wins", alive)
		return true
	}
	return false
}

// convertibleCells lists the defeated seat's non-king pieces still on the
// board, row-major.
func (g *Game) convertibleCells(seat int) []Cell {
	var cells []Cell
	for _, p := range g.state.Board.PiecesOf(seat) {
		if p.Type != King {
			cells = append(cells, p.Pos)
		}
	}
	return cells
}

func (g *Game) removeFromOwnerList(piece *Piece) {
	owner := g.state.Players[piece.Owner]
	for i, p := range owner.Pieces {
		if p == piece {
			owner.Pieces = append(owner.Pieces[:i], owner.Pieces[i+1:]...)
			return
		}
	}
}

// ResolveConversion applies the victor's choice: the chosen piece changes
// owner, every other convertible piece leaves the board, and the turn
// advances. The defeated king stays behind as an inert husk.
func (g *Game) ResolveConversion(seat int, at Cell) error {
	if g.state.Phase != PhaseConversionPending || g.state.Conversion == nil {
		return fmt.Errorf("%w: no conversion pending", ErrActionWhileLocked)
	}
	conv := g.state.Conversion
	if seat != conv.Victor {
		return fmt.Errorf("%w: not the victor", ErrActionWhileLocked)
	}
	found := false
	for _, c := range conv.Targets {
		if c == at {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: cell is not convertible", ErrInvalidConversionTarget)
	}
	chosen := g.state.Board.At(at)
	g.removeFromOwnerList(chosen)
	chosen.Owner = conv.Victor
	victor := g.state.Players[conv.Victor]
	victor.Pieces = append(victor.Pieces, chosen)
	for _, c := range conv.Targets {
		if c == at {
			continue
		}
		p := g.state.Board.At(c)
		if p == nil || p.Owner != conv.Defeated {
			continue
		}
		g.state.Board.Remove(p)
		g.removeFromOwnerList(p)
	}
	log.Printf("[backend] seat %d converted a %s from seat %d", conv.Victor, chosen.Type, conv.Defeated)
	g.history.Push(HistoryEntry{
		Turn:   g.state.TurnCount,
		Seat:   conv.Victor,
		Action: ActionConvert,
		To:     &at,
		Piece:  chosen.Type.Glyph(),
		Note:   fmt.Sprintf("from seat %d", conv.Defeated),
	})
	g.state.Conversion = nil
	g.advanceTurn()
	g.publishAnalysis()
	return nil
}

// autoResolveConversion picks the highest-value convertible piece for an AI
// victor; ties keep the first in row-major order.
func (g *Game) autoResolveConversion() {
	conv := g.state.Conversion
	best := Cell{}
	bestValue := -1.0
	for _, c := range conv.Targets {
		p := g.state.Board.At(c)
		if p == nil {
			continue
		}
		if v := p.Type.Value(); v > bestValue {
			bestValue = v
			best = c
		}
	}
	if bestValue < 0 {
		g.state.Conversion = nil
		g.advanceTurn()
		g.publishAnalysis()
		return
	}
	if err := g.ResolveConversion(conv.Victor, best); err != nil {
		log.Printf("[backend] auto conversion failed: %v", err)
		g.state.Conversion = nil
		g.advanceTurn()
	}
}

// pass consumes the seat's turn without a move. Passes count toward the
// rotation cadence like any committed turn.
func (g *Game) pass(seat int, note string) {
	g.stopHint()
	log.Printf("[backend] seat %d passes: %s", seat, note)
	g.history.Push(HistoryEntry{
		Turn:   g.state.TurnCount,
		Seat:   seat,
		Action: ActionPass,
		Note:   note,
	})
	g.state.Message = fmt.Sprintf("seat %d passes", seat)
	g.advanceTurn()
	g.publishAnalysis()
}

// advanceTurn moves to the next non-eliminated seat, counts the turn, and
// starts a rotation when the cadence divides the count. The new seat's
// bookkeeping waits until the rotation completes because rotating changes
// pawn directions.
func (g *Game) advanceTurn() {
	g.state.Selected = nil
	g.state.Current = g.state.NextActiveSeat(g.state.Current)
	g.state.TurnCount++
	if g.state.TurnCount%g.state.RotationCadence() == 0 {
		g.state.Phase = PhaseRotating
		g.state.RotationProgress = 0
		g.state.Message = "the board is rotating"
		log.Printf("[backend] rotation started after turn %d", g.state.TurnCount)
		return
	}
	g.beginTurn()
}

// beginTurn resets per-turn bookkeeping for the current seat.
func (g *Game) beginTurn() {
	g.state.Phase = PhaseAwaitingSelection
	g.aiDelayLeftMs = float64(g.state.Settings.AiMoveDelayMs)
}

// Tick advances time-driven work: rotation progress, pending AI
// conversions, the AI think lifecycle, and auto-passes for moveless seats.
// Nothing else runs while the board rotates.
func (g *Game) Tick(elapsed time.Duration, thinkingEnabled bool, thinkingSink func(ThinkingUpdate)) {
	switch g.state.Phase {
	case PhaseGameOver:
		return
	case PhaseRotating:
		degreesPerMs := 90.0 / float64(g.state.Settings.RotationDurationMs)
		g.state.RotationProgress += degreesPerMs * float64(elapsed.Milliseconds())
		if g.state.RotationProgress < 90 {
			return
		}
		g.state.Board.Rotate()
		g.state.RotationProgress = 0
		g.state.Message = ""
		log.Printf("[backend] rotation complete, now facing %d", g.state.Board.Rotation())
		g.beginTurn()
		g.publishAnalysis()
		return
	case PhaseConversionPending:
		if g.state.Conversion != nil && g.state.Players[g.state.Conversion.Victor].IsAI {
			g.autoResolveConversion()
		}
		return
	}

	current := g.state.Current
	if ai, isAI := g.players[current].(*AIPlayer); isAI {
		g.stopHint()
		g.aiDelayLeftMs -= float64(elapsed.Milliseconds())
		if !ai.IsThinking() && !ai.HasMoveReady() {
			var sink func(ThinkingUpdate)
			if thinkingEnabled && thinkingSink != nil {
				sink = func(u ThinkingUpdate) {
					u.Mode = "turn"
					thinkingSink(u)
				}
			}
			ai.StartThinking(g.state.Clone(), g.rules, sink)
			return
		}
		if ai.HasMoveReady() && g.aiDelayLeftMs <= 0 {
			move, ok := ai.TakeMove()
			if !ok {
				g.pass(current, "no legal moves")
				return
			}
			log.Printf("[backend] ai seat %d plays (%d,%d)->(%d,%d)",
				current, move.From.Row, move.From.Col, move.To.Row, move.To.Col)
			g.commitMove(current, move.From, move.To)
		}
		return
	}

	// Human seat: auto-pass when nothing is playable so the game cannot
	// wedge on a stalemated seat.
	if !g.rules.HasAnyLegalMove(&g.state.Board, current) {
		g.pass(current, "no legal moves")
		return
	}
	g.maybeStartHint(thinkingEnabled, thinkingSink)
}

// PlayAITurn drives the current AI seat one step, bypassing the cosmetic
// delay: a ready move commits, an idle seat computes and commits
// synchronously, and a moveless seat passes (Applied stays false). A think
// already in flight reports ErrActionWhileLocked; the caller retries.
func (g *Game) PlayAITurn() (MoveResult, error) {
	current := g.state.Current
	if reason := g.actionLockReason(current); reason != "" {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrActionWhileLocked, reason)
	}
	player := g.players[current]
	if player.IsHuman() {
		return MoveResult{}, fmt.Errorf("%w: seat is human-controlled", ErrActionWhileLocked)
	}
	if ai, ok := player.(*AIPlayer); ok {
		if ai.HasMoveReady() {
			move, ok := ai.TakeMove()
			if !ok {
				g.pass(current, "no legal moves")
				return MoveResult{}, nil
			}
			return g.commitMove(current, move.From, move.To), nil
		}
		if ai.IsThinking() {
			return MoveResult{}, fmt.Errorf("%w: seat is thinking", ErrActionWhileLocked)
		}
	}
	move := player.ChooseMove(g.state.Clone(), g.rules)
	if move == (Move{}) {
		g.pass(current, "no legal moves")
		return MoveResult{}, nil
	}
	log.Printf("[backend] ai seat %d plays (%d,%d)->(%d,%d)",
		current, move.From.Row, move.From.Col, move.To.Row, move.To.Col)
	return g.commitMove(current, move.From, move.To), nil
}

// maybeStartHint runs the suggestion search once per position on human
// turns. Turning the feed off stops a search already in flight.
func (g *Game) maybeStartHint(enabled bool, sink func(ThinkingUpdate)) {
	if !enabled || sink == nil {
		g.stopHint()
		return
	}
	if g.hintAI.IsThinking() {
		return
	}
	hash := positionHash(g.state)
	if hash == g.hintHash {
		return
	}
	g.hintHash = hash
	g.hintAI.StartThinking(g.state.Clone(), g.rules, func(u ThinkingUpdate) {
		u.Mode = "hint"
		sink(u)
	})
}

// stopHint aborts the suggestion search and re-arms its hash guard. Every
// turn transition stops it: a hint must never outlive the position it was
// reading.
func (g *Game) stopHint() {
	g.hintHash = 0
	g.hintAI.Stop()
}
