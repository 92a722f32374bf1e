package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/scoring"
	"github.com/mcdev12/scorekeeper/go/internal/session"
	"github.com/mcdev12/scorekeeper/go/internal/sports/base"
	"github.com/mcdev12/scorekeeper/go/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidMatch),
		errors.Is(err, scoring.ErrInvalidRequest),
		errors.Is(err, scoring.ErrUnknownCommandType),
		errors.Is(err, base.ErrMissingSport),
		errors.Is(err, base.ErrUnsupportedSport):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrMatchNotLive),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrAlreadyHosted),
		errors.Is(err, models.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, ErrLineupUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrNoStore):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
