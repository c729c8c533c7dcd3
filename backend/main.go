package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type pieceDTO struct {
	Type  string `json:"type"`
	Owner int    `json:"owner"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Moved bool   `json:"moved"`
}

type boardDTO struct {
	Size             int        `json:"size"`
	Rotation         int        `json:"rotation"`
	RotationProgress float64    `json:"rotation_progress"`
	Pieces           []pieceDTO `json:"pieces"`
}

type playerDTO struct {
	Seat       int  `json:"seat"`
	Team       int  `json:"team"`
	Eliminated bool `json:"eliminated"`
	IsAI       bool `json:"is_ai"`
	InCheck    bool `json:"in_check"`
	PieceCount int  `json:"piece_count"`
}

type conversionDTO struct {
	Victor   int    `json:"victor"`
	Defeated int    `json:"defeated"`
	Targets  []Cell `json:"targets"`
}

type settingsDTO struct {
	Seats              [NumPlayers]string `json:"seats"`
	Mode               string             `json:"mode"`
	AiDepth            *int               `json:"ai_depth,omitempty"`
	AiMoveDelayMs      *int               `json:"ai_move_delay_ms,omitempty"`
	RotationDurationMs *int               `json:"rotation_duration_ms,omitempty"`
}

type historyEntryDTO struct {
	Turn     int    `json:"turn"`
	Seat     int    `json:"seat"`
	Action   string `json:"action"`
	From     *Cell  `json:"from,omitempty"`
	To       *Cell  `json:"to,omitempty"`
	Piece    string `json:"piece,omitempty"`
	Captured string `json:"captured,omitempty"`
	Note     string `json:"note,omitempty"`
}

type statusDTO struct {
	Running         bool                  `json:"running"`
	Phase           string                `json:"phase"`
	Current         int                   `json:"current"`
	TurnCount       int                   `json:"turn_count"`
	RotationCadence int                   `json:"rotation_cadence"`
	Winner          int                   `json:"winner"`
	WinnerTeam      int                   `json:"winner_team"`
	Conversion      *conversionDTO        `json:"conversion,omitempty"`
	Board           boardDTO              `json:"board"`
	Players         [NumPlayers]playerDTO `json:"players"`
	Selected        *Cell                 `json:"selected,omitempty"`
	Message         string                `json:"message,omitempty"`
	Settings        settingsDTO           `json:"settings"`
}

// apiAction is the shared request shape for select, move, and convert.
// Seat defaults to the seat to move, which keeps single-human clients
// simple.
type apiAction struct {
	Seat *int  `json:"seat,omitempty"`
	At   *Cell `json:"at,omitempty"`
	From *Cell `json:"from,omitempty"`
	To   *Cell `json:"to,omitempty"`
}

func main() {
	controller := NewGameController(DefaultGameSettings())
	hub := NewHub()
	thinkingHub := NewThinkingHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var analysisHub *AnalysisHub
	analyzer := NewAnalyzer(GetConfig().AnalysisQueueLimit, func(report AnalysisReport) {
		if analysisHub != nil {
			analysisHub.Publish(report)
		}
	})
	analysisHub = NewAnalysisHub(analyzer.Latest)

	controller.SetThinkingPublisher(
		func() bool { return thinkingHub.HasClients() && GetConfig().ThinkingEnabled },
		func(update ThinkingUpdate) { thinkingHub.Publish(update) },
	)
	controller.SetAnalysisSink(func(state GameState) {
		if GetConfig().AnalysisEnabled {
			analyzer.Enqueue(state)
		}
	})

	go hub.Run(ctx.Done())
	go thinkingHub.Run(ctx.Done())
	go analysisHub.Run(ctx.Done())
	go analyzer.Run(ctx.Done())

	go func() {
		interval := time.Duration(GetConfig().TickIntervalMs) * time.Millisecond
		if interval <= 0 {
			interval = 50 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				elapsed := now.Sub(last)
				last = now
				state, running := controller.Tick(elapsed)
				if !running || !hub.HasClients() {
					continue
				}
				select {
				case hub.broadcastStatus <- statusFromState(state, true):
				default:
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *settingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Settings != nil {
			controller.UpdateSettings(settingsFromDTO(*payload.Settings, controller.Settings()), false)
		}
		state := controller.Start()
		status := statusFromState(state, true)
		hub.BroadcastEvent("started", status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		controller.Stop()
		status := controllerStatus(controller)
		hub.BroadcastEvent("stopped", status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *settingsDTO `json:"settings"`
			Restart  bool         `json:"restart"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Settings != nil {
			controller.UpdateSettings(settingsFromDTO(*payload.Settings, controller.Settings()), payload.Restart)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"settings": settingsToDTO(controller.Settings()),
		})
	})

	r.Post("/api/select", func(w http.ResponseWriter, r *http.Request) {
		var payload apiAction
		if err := readJSON(r, &payload); err != nil || payload.At == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		seat := resolveSeat(controller, payload.Seat)
		moves, err := controller.SelectPiece(seat, *payload.At)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"at": payload.At, "moves": moves})
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiAction
		if err := readJSON(r, &payload); err != nil || payload.From == nil || payload.To == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		seat := resolveSeat(controller, payload.Seat)
		result, err := controller.ApplyMove(seat, *payload.From, *payload.To)
		if err != nil {
			httpError(w, err)
			return
		}
		hub.BroadcastEvent("move_result", result)
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/api/step", func(w http.ResponseWriter, r *http.Request) {
		result, err := controller.StepAITurn()
		if err != nil {
			httpError(w, err)
			return
		}
		hub.BroadcastEvent("move_result", result)
		writeJSON(w, http.StatusOK, result)
	})

	r.Post("/api/convert", func(w http.ResponseWriter, r *http.Request) {
		var payload apiAction
		if err := readJSON(r, &payload); err != nil || payload.At == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		seat := resolveSeat(controller, payload.Seat)
		if err := controller.ResolveConversion(seat, *payload.At); err != nil {
			httpError(w, err)
			return
		}
		status := controllerStatus(controller)
		hub.BroadcastEvent("converted", status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/api/legal-moves", func(w http.ResponseWriter, r *http.Request) {
		at, err := cellFromQuery(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		moves, err := controller.LegalMoves(at)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"at": at, "moves": moves})
	})

	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"history": historyToDTO(controller.History()),
		})
	})

	r.Get("/api/analysis", func(w http.ResponseWriter, r *http.Request) {
		report, ok := analyzer.Latest()
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"available": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"available": true, "report": report})
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		cfg := GetConfig()
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		configStore.Update(cfg)
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})
	r.Get("/ws/thinking", func(w http.ResponseWriter, r *http.Request) {
		serveThinkingWS(thinkingHub, w, r)
	})
	r.Get("/ws/analysis", func(w http.ResponseWriter, r *http.Request) {
		serveAnalysisWS(analysisHub, w, r)
	})

	addr := GetConfig().Addr
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("[backend] listening on %s", addr)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[backend] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}

	cancel()
	controller.Stop()
	if runErr != nil {
		log.Printf("[backend] exiting after server error: %v", runErr)
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})

	go func() {
		defer conn.Close()
		runWritePump("status", conn, client.send)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		case "select":
			var payload apiAction
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.At == nil {
				client.sendJSON(errorMessage("invalid select payload"))
				continue
			}
			seat := resolveSeat(controller, payload.Seat)
			moves, err := controller.SelectPiece(seat, *payload.At)
			if err != nil {
				client.sendJSON(errorMessage(err.Error()))
				continue
			}
			client.sendJSON(wsMessage{Type: "legal_moves", Payload: mustMarshal(map[string]any{
				"at":    payload.At,
				"moves": moves,
			})})
		case "move":
			var payload apiAction
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.From == nil || payload.To == nil {
				client.sendJSON(errorMessage("invalid move payload"))
				continue
			}
			seat := resolveSeat(controller, payload.Seat)
			result, err := controller.ApplyMove(seat, *payload.From, *payload.To)
			if err != nil {
				client.sendJSON(errorMessage(err.Error()))
				continue
			}
			hub.BroadcastEvent("move_result", result)
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		case "convert":
			var payload apiAction
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.At == nil {
				client.sendJSON(errorMessage("invalid convert payload"))
				continue
			}
			seat := resolveSeat(controller, payload.Seat)
			if err := controller.ResolveConversion(seat, *payload.At); err != nil {
				client.sendJSON(errorMessage(err.Error()))
				continue
			}
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		}
	}
}

func errorMessage(text string) wsMessage {
	return wsMessage{Type: "error", Payload: mustMarshal(map[string]string{"error": text})}
}

func resolveSeat(controller *GameController, seat *int) int {
	if seat != nil {
		return *seat
	}
	return controller.State().Current
}

func controllerStatus(controller *GameController) statusDTO {
	return statusFromState(controller.State(), controller.Running())
}

func statusFromState(state GameState, running bool) statusDTO {
	rules := NewRules()
	status := statusDTO{
		Running:         running,
		Phase:           state.Phase.String(),
		Current:         state.Current,
		TurnCount:       state.TurnCount,
		RotationCadence: state.RotationCadence(),
		Winner:          state.WinnerSeat,
		WinnerTeam:      state.WinnerTeam,
		Board:           boardToDTO(state.Board, state.RotationProgress),
		Selected:        state.Selected,
		Message:         state.Message,
		Settings:        settingsToDTO(state.Settings),
	}
	if state.Conversion != nil {
		status.Conversion = &conversionDTO{
			Victor:   state.Conversion.Victor,
			Defeated: state.Conversion.Defeated,
			Targets:  append([]Cell(nil), state.Conversion.Targets...),
		}
	}
	for seat, p := range state.Players {
		dto := playerDTO{
			Seat:       p.Seat,
			Team:       p.Team,
			Eliminated: p.Eliminated,
			IsAI:       p.IsAI,
			PieceCount: len(state.Board.PiecesOf(seat)),
		}
		if !p.Eliminated {
			dto.InCheck = rules.IsInCheck(state.Board, seat)
		}
		status.Players[seat] = dto
	}
	return status
}

func boardToDTO(board Board, progress float64) boardDTO {
	pieces := []pieceDTO{}
	for _, p := range board.Pieces() {
		pieces = append(pieces, pieceDTO{
			Type:  p.Type.String(),
			Owner: p.Owner,
			Row:   p.Pos.Row,
			Col:   p.Pos.Col,
			Moved: p.Moved,
		})
	}
	return boardDTO{
		Size:             BoardSize,
		Rotation:         board.Rotation(),
		RotationProgress: progress,
		Pieces:           pieces,
	}
}

func settingsToDTO(settings GameSettings) settingsDTO {
	dto := settingsDTO{
		Mode:               modeToString(settings.Mode),
		AiDepth:            intPtr(settings.AiDepth),
		AiMoveDelayMs:      intPtr(settings.AiMoveDelayMs),
		RotationDurationMs: intPtr(settings.RotationDurationMs),
	}
	for seat, kind := range settings.SeatTypes {
		dto.Seats[seat] = playerTypeToString(kind)
	}
	return dto
}

// settingsFromDTO overlays the request onto base: empty strings and nil
// numbers keep the existing value.
func settingsFromDTO(dto settingsDTO, base GameSettings) GameSettings {
	settings := base
	for seat, raw := range dto.Seats {
		switch raw {
		case "human":
			settings.SeatTypes[seat] = PlayerHuman
		case "ai":
			settings.SeatTypes[seat] = PlayerAI
		}
	}
	switch dto.Mode {
	case "ffa":
		settings.Mode = ModeFreeForAll
	case "teams":
		settings.Mode = ModeTeams
	}
	if dto.AiDepth != nil {
		settings.AiDepth = *dto.AiDepth
	}
	if dto.AiMoveDelayMs != nil {
		settings.AiMoveDelayMs = *dto.AiMoveDelayMs
	}
	if dto.RotationDurationMs != nil {
		settings.RotationDurationMs = *dto.RotationDurationMs
	}
	return settings.Normalized()
}

func playerTypeToString(kind PlayerType) string {
	if kind == PlayerHuman {
		return "human"
	}
	return "ai"
}

func modeToString(mode GameMode) string {
	if mode == ModeTeams {
		return "teams"
	}
	return "ffa"
}

func intPtr(v int) *int {
	return &v
}

func historyToDTO(entries []HistoryEntry) []historyEntryDTO {
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryDTO{
			Turn:     entry.Turn,
			Seat:     entry.Seat,
			Action:   entry.Action,
			From:     entry.From,
			To:       entry.To,
			Piece:    entry.Piece,
			Captured: entry.Captured,
			Note:     entry.Note,
		})
	}
	return result
}

func cellFromQuery(r *http.Request) (Cell, error) {
	row, err := strconv.Atoi(r.URL.Query().Get("row"))
	if err != nil {
		return Cell{}, errors.New("missing or invalid row")
	}
	col, err := strconv.Atoi(r.URL.Query().Get("col"))
	if err != nil {
		return Cell{}, errors.New("missing or invalid col")
	}
	return Cell{Row: row, Col: col}, nil
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func httpError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatusFor(err), map[string]string{"error": err.Error()})
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
