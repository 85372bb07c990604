package app

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"eastereggs/internal/achievements"
	"eastereggs/internal/input"
)

// signalRequest is the wire form of an input signal on the dev surface. It
// covers the signal classes a terminal cannot produce on its own.
type signalRequest struct {
	Kind          string  `json:"kind"`
	Key           string  `json:"key,omitempty"`
	InTextField   bool    `json:"in_text_field,omitempty"`
	Target        string  `json:"target,omitempty"`
	Interactive   bool    `json:"interactive,omitempty"`
	X             int     `json:"x,omitempty"`
	Y             int     `json:"y,omitempty"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
	ScrollTop     int     `json:"scroll_top,omitempty"`
	ViewHeight    int     `json:"view_height,omitempty"`
	ContentHeight int     `json:"content_height,omitempty"`
	Text          string  `json:"text,omitempty"`
	Accel         float64 `json:"accel,omitempty"`
	Fragment      string  `json:"fragment,omitempty"`
	ID            string  `json:"id,omitempty"`
}

func (req signalRequest) signal() (input.Signal, bool) {
	kind, ok := input.ParseKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if !ok {
		return input.Signal{}, false
	}
	sig := input.Signal{
		Kind:          kind,
		InTextField:   req.InTextField,
		Target:        req.Target,
		Interactive:   req.Interactive,
		X:             req.X,
		Y:             req.Y,
		Width:         req.Width,
		Height:        req.Height,
		ScrollTop:     req.ScrollTop,
		ViewHeight:    req.ViewHeight,
		ContentHeight: req.ContentHeight,
		Text:          req.Text,
		Accel:         req.Accel,
		Fragment:      req.Fragment,
		ID:            req.ID,
	}
	if req.Key != "" {
		sig.Key = input.NormalizeKey(req.Key)
	}
	return sig, true
}

type cardResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Hint     string `json:"hint"`
	Icon     string `json:"icon,omitempty"`
	Rarity   string `json:"rarity"`
	Unlocked bool   `json:"unlocked"`
}

type achievementsResponse struct {
	Label    string         `json:"label"`
	Unlocked int            `json:"unlocked"`
	Total    int            `json:"total"`
	Percent  int            `json:"percent"`
	Recent   string         `json:"recent,omitempty"`
	Cards    []cardResponse `json:"cards"`
}

func (a *App) newDevServer() *http.Server {
	return &http.Server{
		Addr:              a.cfg.DevHTTP,
		Handler:           a.devRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) devRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/__dev/ready", a.handleReady)
	r.Get("/__dev/achievements", a.handleAchievements)
	r.Post("/__dev/signal", a.handleSignal)
	r.Post("/__dev/trigger/{id}", a.handleTrigger)
	r.Route("/__dev/viewer", func(r chi.Router) {
		r.Post("/open/{project}", func(w http.ResponseWriter, req *http.Request) {
			a.OnOpenProject(chi.URLParam(req, "project"))
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "open": a.viewer.Current()})
		})
		r.Post("/close", func(w http.ResponseWriter, _ *http.Request) {
			a.OnCloseProject()
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Post("/image", func(w http.ResponseWriter, _ *http.Request) {
			a.OnProjectImageClick()
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "open": a.viewer.Current()})
		})
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	return r
}

func (a *App) handleReady(w http.ResponseWriter, _ *http.Request) {
	s := a.engine.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"session":   a.engine.SessionID(),
		"unlocked":  s.Unlocked,
		"total":     s.Total,
		"uptime_ms": a.clock.Now().Sub(a.startTime).Milliseconds(),
	})
}

func (a *App) handleAchievements(w http.ResponseWriter, _ *http.Request) {
	v := a.engine.Hub()
	resp := achievementsResponse{
		Label:    v.Label,
		Unlocked: v.Unlocked,
		Total:    v.Total,
		Percent:  v.Percent,
		Cards:    make([]cardResponse, 0, len(v.Cards)),
	}
	if v.Recent != nil {
		resp.Recent = v.Recent.ID
	}
	for _, c := range v.Cards {
		resp.Cards = append(resp.Cards, cardResponse{
			ID:       c.ID,
			Name:     c.Name,
			Hint:     c.Hint,
			Icon:     c.Icon,
			Rarity:   c.Rarity.String(),
			Unlocked: c.Unlocked,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid json"})
		return
	}
	sig, ok := req.signal()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "unknown signal kind", "kind": req.Kind})
		return
	}
	a.logger.Info("dev.signal", map[string]any{"kind": sig.Kind.String(), "request_id": middleware.GetReqID(r.Context())})
	a.OnSignal(sig)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "unlocked": a.engine.Unlocked()})
}

func (a *App) handleTrigger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := a.engine.Definition(id); !ok {
		a.logger.Info("trigger.external_unknown", map[string]any{"id": id})
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": achievements.ErrUnknownID.Error(), "id": id})
		return
	}
	a.engine.ReportTrigger(id)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id, "unlocked": a.engine.Unlocked()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
