package http

import (
	"net/http"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type ResultsHandler struct {
	service   ports.LedgerService
	projector ports.ResultsProjector
	clock     ports.Clock
}

func NewResultsHandler(service ports.LedgerService, projector ports.ResultsProjector, clock ports.Clock) *ResultsHandler {
	return &ResultsHandler{
		service:   service,
		projector: projector,
		clock:     clock,
	}
}

type resultsResponse struct {
	ElectionID int64                   `json:"election_id"`
	Phase      domain.ElectionPhase    `json:"phase"`
	TotalVotes int64                   `json:"total_votes"`
	Tallies    []domain.CandidateTally `json:"tallies"`
}

type winnersResponse struct {
	ElectionID  int64                `json:"election_id"`
	Phase       domain.ElectionPhase `json:"phase"`
	Provisional bool                 `json:"provisional"`
	Winners     []int                `json:"winners"`
}

// GetResults godoc
// @Summary      Returns the per-candidate tallies for an election
// @Tags         results
// @Success      200
// @Failure      404
// @Router       /elections/{id}/results [get]
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	electionID, err := electionIDParam(r)
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	election, err := h.service.GetElection(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}

	tallies, err := h.projector.TallyFor(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		ElectionID: election.ID,
		Phase:      election.PhaseAt(h.clock.Now()),
		TotalVotes: election.TotalVotes,
		Tallies:    tallies,
	})
}

// GetWinners godoc
// @Summary      Returns the indices of the leading candidates, ties preserved
// @Description  Results are provisional until the election has ended.
// @Tags         results
// @Success      200
// @Failure      404
// @Router       /elections/{id}/winners [get]
func (h *ResultsHandler) GetWinners(w http.ResponseWriter, r *http.Request) {
	electionID, err := electionIDParam(r)
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	election, err := h.service.GetElection(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}

	winners, err := h.projector.Winners(r.Context(), electionID)
	if err != nil {
		writeError(w, err)
		return
	}

	phase := election.PhaseAt(h.clock.Now())
	writeJSON(w, http.StatusOK, winnersResponse{
		ElectionID:  election.ID,
		Phase:       phase,
		Provisional: phase != domain.PhaseEnded,
		Winners:     winners,
	})
}
