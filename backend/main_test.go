package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettingsFromDTOOverlaysBase(t *testing.T) {
	base := DefaultGameSettings()
	depth := 3
	dto := settingsDTO{
		Seats:   [NumPlayers]string{"ai", "human", "robot", ""},
		Mode:    "teams",
		AiDepth: &depth,
	}

	got := settingsFromDTO(dto, base)
	want := base
	want.SeatTypes[0] = PlayerAI
	want.SeatTypes[1] = PlayerHuman
	want.Mode = ModeTeams
	want.AiDepth = 3
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected settings (-want +got):\n%s", diff)
	}
}

func TestSettingsFromDTOUnknownStringsKeepBase(t *testing.T) {
	base := DefaultGameSettings()
	dto := settingsDTO{Mode: "blitz"}

	got := settingsFromDTO(dto, base)
	if diff := cmp.Diff(base, got); diff != "" {
		t.Fatalf("expected base settings to survive unknown strings (-want +got):\n%s", diff)
	}
}

func TestSettingsFromDTOClampsValues(t *testing.T) {
	base := DefaultGameSettings()
	depth := 99
	delay := -5
	rotation := 0
	dto := settingsDTO{
		AiDepth:            &depth,
		AiMoveDelayMs:      &delay,
		RotationDurationMs: &rotation,
	}

	got := settingsFromDTO(dto, base)
	if got.AiDepth != 4 {
		t.Fatalf("expected depth clamped to 4, got %d", got.AiDepth)
	}
	if got.AiMoveDelayMs != 0 {
		t.Fatalf("expected delay clamped to 0, got %d", got.AiMoveDelayMs)
	}
	if got.RotationDurationMs != 1000 {
		t.Fatalf("expected rotation duration clamped to 1000, got %d", got.RotationDurationMs)
	}
}

func TestSettingsDTORoundTrip(t *testing.T) {
	settings := DefaultGameSettings()
	dto := settingsToDTO(settings)

	if want := [NumPlayers]string{"human", "ai", "ai", "ai"}; dto.Seats != want {
		t.Fatalf("expected seats %v, got %v", want, dto.Seats)
	}
	if dto.Mode != "ffa" {
		t.Fatalf("expected mode ffa, got %q", dto.Mode)
	}

	back := settingsFromDTO(dto, GameSettings{}.Normalized())
	if diff := cmp.Diff(settings, back); diff != "" {
		t.Fatalf("expected round trip to restore settings (-want +got):\n%s", diff)
	}
}

func TestCellFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/legal-moves?row=3&col=4", nil)
	cell, err := cellFromQuery(r)
	if err != nil {
		t.Fatalf("expected cell, got error %v", err)
	}
	if cell != (Cell{Row: 3, Col: 4}) {
		t.Fatalf("expected cell (3,4), got %v", cell)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/legal-moves?col=4", nil)
	if _, err := cellFromQuery(r); err == nil || err.Error() != "missing or invalid row" {
		t.Fatalf("expected missing row error, got %v", err)
	}
	r = httptest.NewRequest(http.MethodGet, "/api/legal-moves?row=3&col=abc", nil)
	if _, err := cellFromQuery(r); err == nil || err.Error() != "missing or invalid col" {
		t.Fatalf("expected invalid col error, got %v", err)
	}
}

func TestHTTPStatusForGameErrors(t *testing.T) {
	if got := httpStatusFor(ErrInvalidSelection); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid selection, got %d", got)
	}
	if got := httpStatusFor(ErrIllegalDestination); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for illegal destination, got %d", got)
	}
	if got := httpStatusFor(ErrInvalidConversionTarget); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid conversion target, got %d", got)
	}
	if got := httpStatusFor(ErrActionWhileLocked); got != http.StatusConflict {
		t.Fatalf("expected 409 for locked actions, got %d", got)
	}
	if got := httpStatusFor(http.ErrBodyNotAllowed); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown errors, got %d", got)
	}
}

func TestStatusFromStateMapsPlayersAndBoard(t *testing.T) {
	g := newBareGame(ModeFreeForAll)
	addPiece(g, King, 0, 7, 4)
	addPiece(g, Rook, 1, 0, 4)
	addPiece(g, King, 1, 0, 0)
	g.state.Players[2].Eliminated = true
	g.state.Message = "seat 0 is in check"

	status := statusFromState(g.state, true)
	if !status.Running {
		t.Fatalf("expected running status")
	}
	if status.Phase != g.state.Phase.String() {
		t.Fatalf("expected phase %q, got %q", g.state.Phase.String(), status.Phase)
	}
	if status.Board.Size != BoardSize || status.Board.Rotation != 0 {
		t.Fatalf("expected an 8x8 unrotated board, got %+v", status.Board)
	}
	if len(status.Board.Pieces) != 3 {
		t.Fatalf("expected 3 pieces, got %d", len(status.Board.Pieces))
	}
	if !status.Players[0].InCheck {
		t.Fatalf("expected seat 0 in check from the rook")
	}
	if status.Players[0].PieceCount != 1 || status.Players[1].PieceCount != 2 {
		t.Fatalf("expected piece counts 1 and 2, got %+v", status.Players)
	}
	if !status.Players[2].Eliminated || status.Players[2].InCheck {
		t.Fatalf("expected seat 2 eliminated and never in check, got %+v", status.Players[2])
	}
	if status.Settings.Mode != "ffa" {
		t.Fatalf("expected mode ffa, got %q", status.Settings.Mode)
	}
	if status.Message != "seat 0 is in check" {
		t.Fatalf("expected the check message, got %q", status.Message)
	}
	if status.Conversion != nil {
		t.Fatalf("expected no conversion in a fresh state")
	}
}

func TestResolveSeatDefaultsToCurrent(t *testing.T) {
	controller := NewGameController(DefaultGameSettings())
	if got := resolveSeat(controller, nil); got != 0 {
		t.Fatalf("expected default seat 0, got %d", got)
	}
	seat := 2
	if got := resolveSeat(controller, &seat); got != 2 {
		t.Fatalf("expected explicit seat 2, got %d", got)
	}
}
