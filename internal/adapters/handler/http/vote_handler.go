package http

import (
	"encoding/json"
	"net/http"

	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type VoteHandler struct {
	service ports.LedgerService
}

func NewVoteHandler(service ports.LedgerService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	CandidateIndex int `json:"candidate_index"`
}

// VoteOnElection godoc
// @Summary      Casts a ballot
// @Description  One ballot per identity per election, only while the election is active. Returns the ballot receipt.
// @Tags         votes
// @Accept       json
// @Success      201
// @Failure      400
// @Failure      401
// @Failure      404
// @Failure      409
// @Router       /elections/{id}/votes [post]
func (h *VoteHandler) VoteOnElection(w http.ResponseWriter, r *http.Request) {
	electionID, err := electionIDParam(r)
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	voterID, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized: missing voter identity", http.StatusUnauthorized)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ballot, err := h.service.Vote(r.Context(), voterID, electionID, req.CandidateIndex)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ballot)
}

// GetMyBallot returns the caller's ballot for the election, if any.
func (h *VoteHandler) GetMyBallot(w http.ResponseWriter, r *http.Request) {
	electionID, err := electionIDParam(r)
	if err != nil {
		http.Error(w, "invalid election id", http.StatusBadRequest)
		return
	}

	voterID, ok := callerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized: missing voter identity", http.StatusUnauthorized)
		return
	}

	ballot, err := h.service.GetBallot(r.Context(), electionID, voterID)
	if err != nil {
		writeError(w, err)
		return
	}
	if ballot == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Kind: "not_found", Message: "no ballot recorded for this voter"})
		return
	}

	writeJSON(w, http.StatusOK, ballot)
}
