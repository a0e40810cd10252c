package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError maps the ledger's error kinds to statuses and serializes the
// {kind, message} shape callers are promised.
func writeError(w http.ResponseWriter, err error) {
	kind := "internal"
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		kind, status = "invalid_argument", http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		kind, status = "unauthorized", http.StatusUnauthorized
	case errors.Is(err, domain.ErrElectionNotFound):
		kind, status = "not_found", http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyVoted):
		kind, status = "already_voted", http.StatusConflict
	case errors.Is(err, domain.ErrVotingClosed):
		kind, status = "voting_closed", http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	writeJSON(w, status, errorResponse{Kind: kind, Message: message})
}
