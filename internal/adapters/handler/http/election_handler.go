package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type ElectionHandler struct {
	service ports.LedgerService
	clock   ports.Clock
}

func NewElectionHandler(service ports.LedgerService, clock ports.Clock) *ElectionHandler {
	return &ElectionHandler{
		service: service,
		clock:   clock,
	}
}

type createElectionRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Candidates  []string `json:"candidates"`
	StartTime   int64    `json:"start_time"`
	EndTime     int64    `json:"end_time"`
}

type updateElectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartTime   int64  `json:"start_time"`
	EndTime     int64  `json:"end_time"`
}

type electionResponse struct {
	*domain.Election
	Phase domain.ElectionPhase `json:"phase"`
}

func (h *ElectionHandler) toResponse(election *domain.Election) electionResponse {
	return electionResponse{
		Election: election,
		Phase:    election.PhaseAt(h.clock.Now()),
	}
}

// CreateElection godoc
// @Summary      Creates an election
// @Description  Admin-only. Candidates are fixed at creation; ids are sequential starting at 0.
// @Tags         elections
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Router       /elections [post]
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)

	var req createElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	election, err := h.service.CreateElection(r.Context(), caller, ports.CreateElectionInput{
		Name:        req.Name,
		Description: req.Description,
		Candidates:  req.Candidates,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(election))
}

// UpdateElection godoc
// @Summary      Updates an election's name, description and time window
// @Description  Admin-only. Votes and candidates are untouched; rewriting the window also implements "start now" and "end now".
// @Tags         elections
// @Accept       json
// @Success      200
// @Failure      400
// @Failure      401
// @Failure      404
// @Router       /elections/{id} [put]
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerIdentity(r)

	id, err := electionIDParam(r)
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	var req updateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	election, err := h.service.UpdateElection(r.Context(), caller, id, ports.UpdateElectionInput{
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(election))
}

func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	election, err := h.service.GetElection(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(election))
}

func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.service.ListElections(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]electionResponse, 0, len(elections))
	for _, election := range elections {
		responses = append(responses, h.toResponse(election))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *ElectionHandler) GetElectionCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GetElectionCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func electionIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
