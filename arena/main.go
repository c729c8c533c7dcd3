package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// arena drives unattended all-AI matches against the backend HTTP API and
// tallies seat and team results. It runs as its own service next to the
// backend container.
type arena struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	logger       *log.Logger
	apiAddr      string
	logsDir      string

	mode          string
	gamesTarget   int
	maxTurns      int
	gameTimeout   time.Duration
	aiDepth       int
	aiMoveDelayMs int
	rotationMs    int

	statusMu  sync.RWMutex
	status    arenaStatus
	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

// backendStatus is the slice of /api/status the arena cares about.
type backendStatus struct {
	Running    bool   `json:"running"`
	Phase      string `json:"phase"`
	Winner     int    `json:"winner"`
	WinnerTeam int    `json:"winner_team"`
	TurnCount  int    `json:"turn_count"`
}

type arenaStatus struct {
	Running     bool    `json:"running"`
	Mode        string  `json:"mode"`
	Phase       string  `json:"phase"`
	Message     string  `json:"message"`
	StartedAt   string  `json:"started_at"`
	UpdatedAt   string  `json:"updated_at"`
	GamesPlayed int     `json:"games_played"`
	GamesTarget int     `json:"games_target"`
	SeatWins    [4]int  `json:"seat_wins"`
	TeamWins    [2]int  `json:"team_wins"`
	Aborted     int     `json:"aborted"`
	LastWinner  int     `json:"last_winner"`
	AvgTurns    float64 `json:"avg_turns"`
}

type gameResult struct {
	Index      int    `json:"index"`
	Winner     int    `json:"winner"`
	WinnerTeam int    `json:"winner_team"`
	Turns      int    `json:"turns"`
	Elapsed    string `json:"elapsed"`
}

type arenaReport struct {
	UpdatedAt   string       `json:"updated_at"`
	Mode        string       `json:"mode"`
	GamesPlayed int          `json:"games_played"`
	SeatWins    [4]int       `json:"seat_wins"`
	TeamWins    [2]int       `json:"team_wins"`
	Aborted     int          `json:"aborted"`
	Results     []gameResult `json:"results"`
}

func main() {
	logsDir := getenv("ARENA_LOGS_DIR", "/logs")
	logger, closeLog, err := buildLogger(filepath.Join(logsDir, "arena.log"))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLog()

	a := &arena{
		client:        &http.Client{Timeout: 10 * time.Second},
		baseURL:       getenv("BACKEND_URL", "http://backend:8080"),
		pollInterval:  time.Duration(getenvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
		logger:        logger,
		apiAddr:       getenv("ARENA_API_ADDR", ":8090"),
		logsDir:       logsDir,
		mode:          getenv("ARENA_MODE", "ffa"),
		gamesTarget:   getenvInt("ARENA_GAMES", 20),
		maxTurns:      getenvInt("ARENA_MAX_TURNS", 600),
		gameTimeout:   time.Duration(getenvInt("ARENA_GAME_TIMEOUT_SEC", 600)) * time.Second,
		aiDepth:       getenvInt("ARENA_AI_DEPTH", 2),
		aiMoveDelayMs: getenvInt("ARENA_AI_MOVE_DELAY_MS", 0),
		rotationMs:    getenvInt("ARENA_ROTATION_MS", 1),
	}
	a.status = arenaStatus{
		Mode:       a.mode,
		Phase:      "idle",
		Message:    "service ready",
		LastWinner: -1,
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	a.logf("arena service started. backend=%s mode=%s poll_interval=%s", a.baseURL, a.mode, a.pollInterval)
	a.startStatusAPI()

	if autostart := getenv("ARENA_AUTOSTART", ""); autostart == "1" || autostart == "true" || autostart == "yes" {
		if err := a.startMatches(a.gamesTarget, a.mode); err != nil {
			a.logf("autostart failed: %v", err)
		}
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	<-sigCtx.Done()
	_ = a.stopMatches("shutdown")
	a.logf("arena service stopping")
}

func (a *arena) startStatusAPI() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/arena/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": a.getStatus().Running})
	})
	mux.HandleFunc("/api/arena/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.getStatus())
	})
	mux.HandleFunc("/api/arena/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		var payload struct {
			Games int    `json:"games"`
			Mode  string `json:"mode"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		games := payload.Games
		if games <= 0 {
			games = a.gamesTarget
		}
		mode := payload.Mode
		if mode == "" {
			mode = a.mode
		}
		if err := a.startMatches(games, mode); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, a.getStatus())
	})
	mux.HandleFunc("/api/arena/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := a.stopMatches("requested via api"); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, a.getStatus())
	})
	server := &http.Server{Addr: a.apiAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logf("arena api server error: %v", err)
		}
	}()
}

func (a *arena) getStatus() arenaStatus {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

func (a *arena) updateStatus(mutator func(*arenaStatus)) {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	mutator(&a.status)
	a.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (a *arena) startMatches(games int, mode string) error {
	a.jobMu.Lock()
	defer a.jobMu.Unlock()
	if a.jobCancel != nil {
		return fmt.Errorf("matches already running")
	}
	switch mode {
	case "ffa", "teams":
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	games = normalizeGames(games)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.jobCancel = cancel
	a.jobDone = done
	a.updateStatus(func(s *arenaStatus) {
		s.Running = true
		s.Mode = mode
		s.Phase = "starting"
		s.Message = "matches starting"
		s.GamesPlayed = 0
		s.GamesTarget = games
		s.SeatWins = [4]int{}
		s.TeamWins = [2]int{}
		s.Aborted = 0
		s.LastWinner = -1
		s.AvgTurns = 0
	})
	go func() {
		defer close(done)
		if err := a.waitBackendReady(ctx); err != nil {
			a.updateStatus(func(s *arenaStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		} else if err := a.runMatches(ctx, games, mode); err != nil && err != context.Canceled {
			a.updateStatus(func(s *arenaStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		}
		a.updateStatus(func(s *arenaStatus) {
			s.Running = false
			if s.Phase != "error" {
				s.Phase = "idle"
				s.Message = "service ready"
			}
		})
		a.jobMu.Lock()
		a.jobCancel = nil
		a.jobDone = nil
		a.jobMu.Unlock()
	}()
	return nil
}

// normalizeGames floors the requested game count at one. ARENA_GAMES=0 and
// an empty start payload both fall through here, so a run is always finite.
func normalizeGames(games int) int {
	if games < 1 {
		return 1
	}
	return games
}

func (a *arena) stopMatches(reason string) error {
	a.jobMu.Lock()
	cancel := a.jobCancel
	done := a.jobDone
	a.jobMu.Unlock()
	if cancel == nil {
		return fmt.Errorf("no running match job")
	}
	a.logf("stopping matches: %s", reason)
	cancel()
	if done != nil {
		<-done
	}
	a.updateStatus(func(s *arenaStatus) {
		s.Running = false
		s.Phase = "idle"
		s.Message = "service ready"
	})
	return nil
}

func (a *arena) runMatches(ctx context.Context, games int, mode string) error {
	a.updateStatus(func(s *arenaStatus) {
		s.Phase = "running"
		s.Message = "matches running"
	})
	results := make([]gameResult, 0, games)
	totalTurns := 0
	for i := 0; i < games; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result, err := a.runGame(ctx, i, mode)
		if err != nil {
			return err
		}
		results = append(results, result)
		totalTurns += result.Turns
		a.updateStatus(func(s *arenaStatus) {
			s.GamesPlayed = len(results)
			s.LastWinner = result.Winner
			if result.Winner >= 0 && result.Winner < 4 {
				s.SeatWins[result.Winner]++
			}
			if result.WinnerTeam == 0 || result.WinnerTeam == 1 {
				s.TeamWins[result.WinnerTeam]++
			}
			if result.Winner < 0 {
				s.Aborted++
			}
			s.AvgTurns = float64(totalTurns) / float64(len(results))
		})
		if err := a.writeReport(mode, results); err != nil {
			a.logf("failed to write report: %v", err)
		}
		a.logf("game %d finished: winner=%d team=%d turns=%d elapsed=%s",
			i, result.Winner, result.WinnerTeam, result.Turns, result.Elapsed)
	}
	a.logf("all %d games finished", len(results))
	return nil
}

// runGame starts one all-AI game and drives it to completion, stepping the
// backend whenever a seat is ready to act. Games that pass maxTurns or the
// wall timeout are stopped and recorded with winner -1.
func (a *arena) runGame(ctx context.Context, index int, mode string) (gameResult, error) {
	start := time.Now()
	if err := a.startAIGame(mode); err != nil {
		return gameResult{}, err
	}
	deadline := start.Add(a.gameTimeout)
	for {
		if ctx.Err() != nil {
			return gameResult{}, ctx.Err()
		}
		status, err := a.fetchStatus()
		if err != nil {
			return gameResult{}, err
		}
		if status.Phase == "game_over" {
			return gameResult{
				Index:      index,
				Winner:     status.Winner,
				WinnerTeam: status.WinnerTeam,
				Turns:      status.TurnCount,
				Elapsed:    time.Since(start).Round(time.Millisecond).String(),
			}, nil
		}
		if status.TurnCount >= a.maxTurns || (a.gameTimeout > 0 && time.Now().After(deadline)) {
			_ = a.stopGame()
			a.logf("game %d aborted at turn %d", index, status.TurnCount)
			return gameResult{
				Index:      index,
				Winner:     -1,
				WinnerTeam: -1,
				Turns:      status.TurnCount,
				Elapsed:    time.Since(start).Round(time.Millisecond).String(),
			}, nil
		}
		if status.Phase == "awaiting_selection" {
			stepped, err := a.stepGame()
			if err != nil {
				return gameResult{}, err
			}
			if stepped {
				continue
			}
		}
		if !sleepWithContext(ctx, a.pollInterval) {
			return gameResult{}, ctx.Err()
		}
	}
}

func (a *arena) startAIGame(mode string) error {
	return a.postJSON("/api/start", map[string]any{
		"settings": map[string]any{
			"seats":                [4]string{"ai", "ai", "ai", "ai"},
			"mode":                 mode,
			"ai_depth":             a.aiDepth,
			"ai_move_delay_ms":     a.aiMoveDelayMs,
			"rotation_duration_ms": a.rotationMs,
		},
	}, nil)
}

func (a *arena) stopGame() error {
	return a.postJSON("/api/stop", map[string]any{}, nil)
}

// stepGame asks the backend to commit the next AI move synchronously. A
// conflict means the seat is mid-think or the board is rotating; the caller
// falls back to the poll interval.
func (a *arena) stepGame() (bool, error) {
	req, err := http.NewRequest(http.MethodPost, a.baseURL+"/api/step", bytes.NewReader([]byte("{}")))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusConflict:
		return false, nil
	default:
		return false, fmt.Errorf("POST /api/step -> %d: %s", resp.StatusCode, string(body))
	}
}

func (a *arena) fetchStatus() (backendStatus, error) {
	var status backendStatus
	if err := a.getJSON("/api/status", &status); err != nil {
		return backendStatus{}, err
	}
	return status, nil
}

func (a *arena) writeReport(mode string, results []gameResult) error {
	report := arenaReport{
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
		Mode:        mode,
		GamesPlayed: len(results),
		Results:     results,
	}
	for _, r := range results {
		if r.Winner >= 0 && r.Winner < 4 {
			report.SeatWins[r.Winner]++
		}
		if r.WinnerTeam == 0 || r.WinnerTeam == 1 {
			report.TeamWins[r.WinnerTeam]++
		}
		if r.Winner < 0 {
			report.Aborted++
		}
	}
	if err := os.MkdirAll(a.logsDir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	path := filepath.Join(a.logsDir, "arena_report.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (a *arena) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := a.ping(); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, 1*time.Second) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("timeout after 60s")
}

func (a *arena) ping() error {
	req, err := http.NewRequest(http.MethodGet, a.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping status %d", resp.StatusCode)
	}
	return nil
}

func (a *arena) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *arena) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *arena) logf(format string, args ...any) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	a.logger.Printf("[%s] %s", ts, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func buildLogger(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(io.MultiWriter(os.Stdout, f), "", 0)
	return logger, func() { _ = f.Close() }, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
