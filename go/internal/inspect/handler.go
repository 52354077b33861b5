// Package inspect exposes the viewer's playback state over HTTP so a session
// can be inspected and driven without the window.
package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/archive"
	"github.com/mcdev12/simviewer/go/internal/models"
	"github.com/mcdev12/simviewer/go/internal/overlay"
	"github.com/mcdev12/simviewer/go/internal/playback"
)

const defaultTrailLength = 20

// Playback is the controller surface the handler drives.
// *playback.Controller satisfies it.
type Playback interface {
	View() playback.View
	Snapshot(tick int) (models.SimSnapshot, bool)
	Ticks() []int
	Trail(tick, n int) []models.SimSnapshot

	Start()
	Pause()
	Resume()
	Step()
	Reset()
	GoLive()
	TogglePlayPause()
	JumpToTick(tick int)
}

// PlayLister lists archived plays
type PlayLister interface {
	ListPlays(ctx context.Context, limit int) ([]archive.Play, error)
}

// CommandRequest is the body of POST /api/playback/commands
type CommandRequest struct {
	Type string `json:"type"`
}

// JumpRequest is the body of POST /api/playback/jump
type JumpRequest struct {
	Tick *int `json:"tick"`
}

// OverlaysResponse is the body of GET /api/playback/overlays
type OverlaysResponse struct {
	Mode     playback.Mode             `json:"mode"`
	Overlays overlay.Overlays          `json:"overlays"`
	Trails   map[string][]models.Point `json:"trails"`
}

// Handler handles HTTP requests for playback state
type Handler struct {
	playback Playback
	plays    PlayLister
}

// NewHandler creates a new handler. plays may be nil when no archive is configured.
func NewHandler(pb Playback, plays PlayLister) *Handler {
	return &Handler{playback: pb, plays: plays}
}

// RegisterRoutes registers the playback routes on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/api/playback/state", h.HandleGetState)
	mux.HandleFunc("/api/playback/overlays", h.HandleGetOverlays)
	mux.HandleFunc("/api/playback/ticks", h.HandleListTicks)
	mux.HandleFunc("/api/playback/ticks/", h.HandleGetTick)
	mux.HandleFunc("/api/playback/commands", h.HandlePostCommand)
	mux.HandleFunc("/api/playback/jump", h.HandlePostJump)
	mux.HandleFunc("/api/plays", h.HandleListPlays)
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}

// HandleGetState handles GET /api/playback/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.playback.View())
}

// HandleGetOverlays handles GET /api/playback/overlays?trail=N
func (h *Handler) HandleGetOverlays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trailLength := defaultTrailLength
	if raw := r.URL.Query().Get("trail"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid trail length", http.StatusBadRequest)
			return
		}
		trailLength = n
	}

	view := h.playback.View()
	if !view.HasDisplay {
		http.Error(w, "No snapshot received yet", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, OverlaysResponse{
		Mode:     view.Mode,
		Overlays: overlay.Compute(view.Display),
		Trails:   overlay.Trails(h.playback.Trail(view.Display.Tick, trailLength)),
	})
}

// HandleListTicks handles GET /api/playback/ticks
func (h *Handler) HandleListTicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"ticks": h.playback.Ticks()})
}

// HandleGetTick handles GET /api/playback/ticks/{tick}
func (h *Handler) HandleGetTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tick, ok := extractTickFromPath(r.URL.Path)
	if !ok {
		http.Error(w, "Invalid tick", http.StatusBadRequest)
		return
	}
	snapshot, ok := h.playback.Snapshot(tick)
	if !ok {
		http.Error(w, "Tick not buffered", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// HandlePostCommand handles POST /api/playback/commands
func (h *Handler) HandlePostCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	commands := map[string]func(){
		string(models.CommandStart):  h.playback.Start,
		string(models.CommandPause):  h.playback.Pause,
		string(models.CommandResume): h.playback.Resume,
		string(models.CommandStep):   h.playback.Step,
		string(models.CommandReset):  h.playback.Reset,
		"live":                       h.playback.GoLive,
		"toggle":                     h.playback.TogglePlayPause,
	}
	run, ok := commands[strings.ToLower(req.Type)]
	if !ok {
		http.Error(w, "Unknown command type", http.StatusBadRequest)
		return
	}

	log.Info().Str("command", req.Type).Str("remote", r.RemoteAddr).Msg("playback command via inspect api")
	run()
	writeJSON(w, http.StatusOK, h.playback.View())
}

// HandlePostJump handles POST /api/playback/jump
func (h *Handler) HandlePostJump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tick == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.playback.JumpToTick(*req.Tick)
	view := h.playback.View()
	if view.ViewingTick == nil || *view.ViewingTick != *req.Tick {
		// Unbuffered ticks leave playback untouched.
		writeJSON(w, http.StatusNotFound, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleListPlays handles GET /api/plays?limit=N
func (h *Handler) HandleListPlays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.plays == nil {
		http.Error(w, "Archive not configured", http.StatusNotFound)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	plays, err := h.plays.ListPlays(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list plays")
		http.Error(w, "Failed to list plays", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plays)
}

// extractTickFromPath extracts the tick from a path like /api/playback/ticks/{tick}
func extractTickFromPath(path string) (int, bool) {
	const prefix = "/api/playback/ticks/"
	if !strings.HasPrefix(path, prefix) {
		return 0, false
	}
	tick, err := strconv.Atoi(strings.TrimSuffix(path[len(prefix):], "/"))
	if err != nil || tick < 0 {
		return 0, false
	}
	return tick, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
