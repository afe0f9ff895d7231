package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salescoach/coach/internal/app/gamification"
	"github.com/salescoach/coach/internal/domain"
	"github.com/salescoach/coach/internal/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// AwardRequest is the body of POST /award.
type AwardRequest struct {
	Type        string `json:"type" validate:"required,xpevent"`
	Description string `json:"description" validate:"max=200"`
}

type historyQuery struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// ─── Profile Endpoints ──────────────────────────────────────────────────────

// handleSnapshot handles GET /api/profiles/{profile}/gamification.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.Snapshot())
}

// handleLevel handles GET .../level.
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, svc.LevelInfo())
}

// handleBadges handles GET .../badges.
func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"badges": svc.State().Badges,
	})
}

// handleHistory handles GET .../history?limit=N.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := historyQuery{Limit: domain.HistoryLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q.Limit = n
	}
	if err := s.validator.ValidateStruct(q); err != nil {
		writeValidationError(w, err)
		return
	}

	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	history := svc.State().History
	if len(history) > q.Limit {
		history = history[:q.Limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": history,
	})
}

// handleAward handles POST .../award.
func (s *Server) handleAward(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	result, err := svc.AwardXP(r.Context(), domain.XPEventType(req.Type), req.Description)
	if err != nil {
		s.internalError(w, r, "award xp", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleReset handles POST .../reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	if err := svc.Reset(r.Context()); err != nil {
		s.internalError(w, r, "reset", err)
		return
	}
	writeJSON(w, http.StatusOK, svc.Snapshot())
}

// handleClearLastAward handles DELETE .../last-award.
func (s *Server) handleClearLastAward(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	svc.ClearLastAward()
	w.WriteHeader(http.StatusNoContent)
}

// handleClearCelebration handles DELETE .../celebration.
func (s *Server) handleClearCelebration(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	svc.ClearCelebration()
	w.WriteHeader(http.StatusNoContent)
}

// ─── Configuration Endpoints ────────────────────────────────────────────────

// handleRules handles GET /api/gamification/rules.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rules": s.registry.Rules(),
	})
}

// handleCatalog handles GET /api/gamification/badges.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"badges": s.registry.Catalog(),
	})
}

// handleProfiles handles GET /api/profiles.
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.registry.Profiles(r.Context())
	if errors.Is(err, errors.ErrUnsupported) {
		writeError(w, http.StatusNotImplemented, "storage backend cannot list profiles")
		return
	}
	if err != nil {
		s.internalError(w, r, "list profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// service resolves the {profile} URL parameter, writing an error response
// and returning false if it cannot.
func (s *Server) service(w http.ResponseWriter, r *http.Request) (*gamification.Service, bool) {
	profile := chi.URLParam(r, "profile")
	if err := s.validator.ValidateVar(profile, "required,profile"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile name")
		return nil, false
	}
	svc, err := s.registry.Get(r.Context(), profile)
	switch {
	case errors.Is(err, domain.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	case err != nil:
		s.internalError(w, r, "load profile", err)
		return nil, false
	}
	return svc, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.FromContext(r.Context()).Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, op+" failed")
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message": "validation failed",
			"type":    "error",
			"fields":  FormatValidationError(err),
		},
	})
}
