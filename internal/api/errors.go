package api

import (
	"encoding/json"
	"github.com/lilhop36/osta-job-portal-sub001/internal/repositories"
	"github.com/lilhop36/osta-job-portal-sub001/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
)

type errorResponse struct {
	Error       string   `json:"error"`
	Description string   `json:"error_description,omitempty"`
	Missing     []string `json:"missing,omitempty"`
}

// writeError translates known domain errors; everything else becomes a
// generic internal error without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var transitionErr *services.TransitionError

	switch {
	case errors.Is(err, repositories.ErrApplicationNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Description: "application not found"})
	case errors.Is(err, services.ErrNotEvaluated):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_evaluated", Description: err.Error()})
	case errors.As(err, &transitionErr) && errors.Is(err, services.ErrGuardFailed):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:       "guard_failed",
			Description: err.Error(),
			Missing:     transitionErr.Missing,
		})
	case errors.Is(err, services.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "invalid_transition", Description: err.Error()})
	case errors.Is(err, services.ErrConcurrentTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "conflict", Description: err.Error()})
	default:
		log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

func writeBadRequest(w http.ResponseWriter, description string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Description: description})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}
