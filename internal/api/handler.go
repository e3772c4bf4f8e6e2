package api

import (
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/services"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strconv"
	"strings"
)

type eligibilityService interface {
	RunEligibilityCheck(ctx context.Context, applicationID int64) (*services.EligibilitySummary, error)
	LastSummary(ctx context.Context, applicationID int64) (*services.EligibilitySummary, error)
}

type statusService interface {
	Transition(ctx context.Context, applicationID int64, target entities.ApplicationStatus,
		actorID *int64, notes string) (*entities.StatusHistoryEntry, error)
	History(ctx context.Context, applicationID int64) ([]entities.StatusHistoryEntry, error)
	AllowedTransitions(ctx context.Context, applicationID int64) ([]entities.ApplicationStatus, error)
}

// Handler exposes eligibility checks and the application lifecycle over HTTP.
type Handler struct {
	eligibility eligibilityService
	status      statusService
}

func NewHandler(eligibility eligibilityService, status statusService) *Handler {
	return &Handler{eligibility: eligibility, status: status}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/applications/{id}", func(r chi.Router) {
		r.Post("/eligibility-check", h.handleEligibilityCheck)
		r.Get("/eligibility", h.handleGetEligibility)
		r.Post("/transitions", h.handleTransition)
		r.Get("/transitions/allowed", h.handleAllowedTransitions)
		r.Get("/history", h.handleHistory)
	})
}

type transitionRequest struct {
	Status  string `json:"status"`
	ActorID *int64 `json:"actor_id"`
	Notes   string `json:"notes"`
}

type allowedTransitionsResponse struct {
	ApplicationID int64                        `json:"application_id"`
	Allowed       []entities.ApplicationStatus `json:"allowed"`
}

func (h *Handler) handleEligibilityCheck(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	summary, err := h.eligibility.RunEligibilityCheck(r.Context(), applicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleGetEligibility(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	summary, err := h.eligibility.LastSummary(r.Context(), applicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	target, err := entities.ToApplicationStatus(strings.TrimSpace(req.Status))
	if err != nil {
		writeBadRequest(w, "unknown status: "+req.Status)
		return
	}

	entry, err := h.status.Transition(r.Context(), applicationID, target, req.ActorID, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Infof("application %d transitioned to %s via api", applicationID, target)
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleAllowedTransitions(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	allowed, err := h.status.AllowedTransitions(r.Context(), applicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if allowed == nil {
		allowed = []entities.ApplicationStatus{}
	}
	writeJSON(w, http.StatusOK, allowedTransitionsResponse{ApplicationID: applicationID, Allowed: allowed})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	applicationID, ok := parseApplicationID(w, r)
	if !ok {
		return
	}

	entries, err := h.status.History(r.Context(), applicationID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []entities.StatusHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func parseApplicationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "application id must be a positive integer")
		return 0, false
	}
	return id, true
}
