// Package api exposes the scorer's control surface over HTTP. Every mutation
// is a POST carrying a small JSON body; reads return the full snapshot or an
// export document.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrishnan/kabaddi-live/internal/export"
	"github.com/mkrishnan/kabaddi-live/internal/foulplay"
	"github.com/mkrishnan/kabaddi-live/internal/match"
	"github.com/mkrishnan/kabaddi-live/internal/session"
	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

const maxBodyBytes = 1 << 16

// Handler translates scorer HTTP requests into session operations.
//
// Routes:
//
//	POST /match/score         -> apply a scoring event
//	POST /match/empty-raid    -> record an empty raid
//	POST /match/substitute    -> swap a bench/court pair
//	POST /match/timeout       -> take a team timeout
//	POST /match/clock/toggle  -> start/pause/resume the clock
//	POST /match/reset         -> discard the match
//	POST /match/analyze-foul  -> check a play description for foul play
//	POST /match/half-duration -> set half length (pristine match only)
//	POST /match/team/rename   -> rename a team field (name, coach, city)
//	POST /match/player/rename -> rename a squad member
//	GET  /match/state         -> full snapshot
//	GET  /export/stats.csv    -> player statistics workbook
//	GET  /export/commentary.txt -> commentary log document
//	GET  /health              -> 200 OK
type Handler struct {
	session  *session.Session
	exporter *export.Exporter
	analyzer *foulplay.Analyzer // nil when no generator is configured
}

func NewHandler(sess *session.Session, exporter *export.Exporter, analyzer *foulplay.Analyzer) *Handler {
	return &Handler{session: sess, exporter: exporter, analyzer: analyzer}
}

// RegisterRoutes wires HTTP routes onto the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /match/score", h.score)
	mux.HandleFunc("POST /match/empty-raid", h.emptyRaid)
	mux.HandleFunc("POST /match/substitute", h.substitute)
	mux.HandleFunc("POST /match/timeout", h.timeout)
	mux.HandleFunc("POST /match/clock/toggle", h.toggleClock)
	mux.HandleFunc("POST /match/reset", h.reset)
	mux.HandleFunc("POST /match/analyze-foul", h.analyzeFoul)
	mux.HandleFunc("POST /match/half-duration", h.halfDuration)
	mux.HandleFunc("POST /match/team/rename", h.renameTeam)
	mux.HandleFunc("POST /match/player/rename", h.renamePlayer)
	mux.HandleFunc("GET /match/state", h.state)
	mux.HandleFunc("GET /export/stats.csv", h.statsCSV)
	mux.HandleFunc("GET /export/commentary.txt", h.commentaryText)
	mux.HandleFunc("GET /health", h.health)
}

type scoreRequest struct {
	TeamID    int    `json:"teamId"`
	PlayerID  int    `json:"playerId"`
	RaiderID  int    `json:"raiderId,omitempty"`
	PointType string `json:"pointType"`
	Points    int    `json:"points"`
}

func (h *Handler) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decode(w, r, &req) {
		return
	}
	side, ok := match.SideOfTeamID(req.TeamID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team id %d", req.TeamID))
		return
	}
	if req.Points < 1 || req.Points > 10 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("points must be 1..10, got %d", req.Points))
		return
	}

	sum, err := h.session.ApplyScore(match.ScoreEvent{
		Team:      side,
		PlayerID:  req.PlayerID,
		RaiderID:  req.RaiderID,
		Type:      match.PointType(req.PointType),
		RawPoints: req.Points,
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse(sum))
}

type emptyRaidRequest struct {
	TeamID   int `json:"teamId"`
	RaiderID int `json:"raiderId"`
}

func (h *Handler) emptyRaid(w http.ResponseWriter, r *http.Request) {
	var req emptyRaidRequest
	if !decode(w, r, &req) {
		return
	}
	side, ok := match.SideOfTeamID(req.TeamID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team id %d", req.TeamID))
		return
	}

	sum, err := h.session.EmptyRaid(side, req.RaiderID)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse(sum))
}

type substituteRequest struct {
	TeamID      int `json:"teamId"`
	PlayerInID  int `json:"playerInId"`
	PlayerOutID int `json:"playerOutId"`
}

func (h *Handler) substitute(w http.ResponseWriter, r *http.Request) {
	var req substituteRequest
	if !decode(w, r, &req) {
		return
	}
	side, ok := match.SideOfTeamID(req.TeamID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team id %d", req.TeamID))
		return
	}
	if err := h.session.Substitute(side, req.PlayerInID, req.PlayerOutID); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type timeoutRequest struct {
	TeamID int `json:"teamId"`
}

func (h *Handler) timeout(w http.ResponseWriter, r *http.Request) {
	var req timeoutRequest
	if !decode(w, r, &req) {
		return
	}
	side, ok := match.SideOfTeamID(req.TeamID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team id %d", req.TeamID))
		return
	}
	if err := h.session.TakeTimeout(side); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) toggleClock(w http.ResponseWriter, _ *http.Request) {
	h.session.ToggleClock()
	writeJSON(w, http.StatusOK, clockView(h.session.Snapshot().Clock))
}

func (h *Handler) reset(w http.ResponseWriter, _ *http.Request) {
	h.session.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type halfDurationRequest struct {
	Minutes int `json:"minutes"`
}

func (h *Handler) halfDuration(w http.ResponseWriter, r *http.Request) {
	var req halfDurationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Minutes <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("minutes must be positive, got %d", req.Minutes))
		return
	}
	if err := h.session.SetHalfDuration(req.Minutes); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type renameTeamRequest struct {
	TeamID int    `json:"teamId"`
	Field  string `json:"field"` // name, coach, city
	Value  string `json:"value"`
}

func (h *Handler) renameTeam(w http.ResponseWriter, r *http.Request) {
	var req renameTeamRequest
	if !decode(w, r, &req) {
		return
	}
	side, ok := match.SideOfTeamID(req.TeamID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team id %d", req.TeamID))
		return
	}

	var err error
	switch req.Field {
	case "name":
		err = h.session.SetTeamName(side, req.Value)
	case "coach":
		err = h.session.SetTeamCoach(side, req.Value)
	case "city":
		err = h.session.SetTeamCity(side, req.Value)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", req.Field))
		return
	}
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type renamePlayerRequest struct {
	TeamID   int    `json:"teamId"`
	PlayerID int    `json:"playerId"`
	Value    string `json:"value"`
}

func (h *Handler) renamePlayer(w http.ResponseWriter, r *http.Request) {
	var req renamePlayerRequest
	if !decode(w, r, &req) {
		return
	}
	side, ok := match.SideOfTeamID(req.TeamID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown team id %d", req.TeamID))
		return
	}
	if err := h.session.SetPlayerName(side, req.PlayerID, req.Value); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeFoulRequest struct {
	PlayDescription string `json:"playDescription"`
}

func (h *Handler) analyzeFoul(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "foul play analysis is not configured")
		return
	}
	var req analyzeFoulRequest
	if !decode(w, r, &req) {
		return
	}

	verdict, err := h.analyzer.Analyze(r.Context(), req.PlayDescription)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, verdict)
	case errors.Is(err, foulplay.ErrDescriptionLength):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		telemetry.Errorf("api: foul play analysis failed: %v", err)
		writeError(w, http.StatusBadGateway, "analysis failed, please try again")
	}
}

func (h *Handler) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotView(h.session.Snapshot()))
}

func (h *Handler) statsCSV(w http.ResponseWriter, _ *http.Request) {
	data, err := h.exporter.StatsCSV()
	if err != nil {
		telemetry.Errorf("api: stats export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="player-stats.csv"`)
	w.Write(data)
}

func (h *Handler) commentaryText(w http.ResponseWriter, _ *http.Request) {
	data, err := h.exporter.CommentaryText()
	if err != nil {
		telemetry.Errorf("api: commentary export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="commentary.txt"`)
	w.Write(data)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ── helpers ──────────────────────────────────────────────────────

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		telemetry.Warnf("api: response encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSessionError maps engine/session errors onto HTTP statuses: unknown
// entities are 404, rule conflicts are 409, everything else is a 400.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, match.ErrUnknownEntity):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, match.ErrSubstitutionWindowClosed),
		errors.Is(err, match.ErrSubstitutionQuotaExceeded),
		errors.Is(err, match.ErrInvalidSubstitution),
		errors.Is(err, session.ErrTimeoutUnavailable),
		errors.Is(err, session.ErrMatchStarted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
