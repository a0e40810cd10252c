package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

// ledgerService is the state machine in front of the election store and the
// ballot box. It validates caller authorization and timing; the stores
// enforce their own structural invariants.
type ledgerService struct {
	elections ports.ElectionStore
	ballots   ports.BallotBox
	access    ports.AccessControl
	clock     ports.Clock
	logger    *slog.Logger
}

func NewLedgerService(
	elections ports.ElectionStore,
	ballots ports.BallotBox,
	access ports.AccessControl,
	clock ports.Clock,
	logger *slog.Logger,
) ports.LedgerService {
	return &ledgerService{
		elections: elections,
		ballots:   ballots,
		access:    access,
		clock:     clock,
		logger:    logger,
	}
}

func (s *ledgerService) CreateElection(ctx context.Context, caller string, input ports.CreateElectionInput) (*domain.Election, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	election, err := s.elections.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("election created",
		"event", "election_created",
		"election_id", election.ID,
		"candidates", len(election.Candidates),
	)
	return election, nil
}

func (s *ledgerService) UpdateElection(ctx context.Context, caller string, id int64, input ports.UpdateElectionInput) (*domain.Election, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	election, err := s.elections.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info("election updated",
		"event", "election_updated",
		"election_id", election.ID,
	)
	return election, nil
}

// Vote records a ballot for the given voter. The election must exist and be
// in its active window at the time of the call; candidate range and the
// one-vote-per-identity invariant are enforced by the ballot box.
func (s *ledgerService) Vote(ctx context.Context, voterID string, electionID int64, candidateIndex int) (*domain.Ballot, error) {
	if voterID == "" {
		return nil, fmt.Errorf("voter identity is required: %w", domain.ErrInvalidArgument)
	}

	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if phase := election.PhaseAt(s.clock.Now()); phase != domain.PhaseActive {
		return nil, fmt.Errorf("election %d is %s: %w", electionID, phase, domain.ErrVotingClosed)
	}

	ballot, err := s.ballots.RecordVote(ctx, electionID, voterID, candidateIndex)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ballot recorded",
		"event", "ballot_recorded",
		"election_id", electionID,
		"ballot_id", ballot.ID,
	)
	return ballot, nil
}

func (s *ledgerService) GetElection(ctx context.Context, id int64) (*domain.Election, error) {
	return s.elections.GetByID(ctx, id)
}

func (s *ledgerService) ListElections(ctx context.Context) ([]*domain.Election, error) {
	return s.elections.List(ctx)
}

func (s *ledgerService) GetElectionCount(ctx context.Context) (int64, error) {
	return s.elections.Count(ctx)
}

func (s *ledgerService) HasVoted(ctx context.Context, electionID int64, voterID string) (bool, error) {
	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		return false, err
	}
	return s.ballots.HasVoted(ctx, electionID, voterID)
}

func (s *ledgerService) GetBallot(ctx context.Context, electionID int64, voterID string) (*domain.Ballot, error) {
	if _, err := s.elections.GetByID(ctx, electionID); err != nil {
		return nil, err
	}
	return s.ballots.GetBallot(ctx, electionID, voterID)
}

func (s *ledgerService) TransferAdmin(ctx context.Context, caller, newIdentity string) error {
	return s.access.TransferAdmin(ctx, caller, newIdentity)
}

func (s *ledgerService) requireAdmin(ctx context.Context, caller string) error {
	ok, err := s.access.IsAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("admin-only operation: %w", domain.ErrUnauthorized)
	}
	return nil
}
