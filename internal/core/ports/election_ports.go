package ports

import (
	"context"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
)

// ElectionStore is the durable collection of elections, keyed by sequential
// id starting at 0. Elections are never deleted.
type ElectionStore interface {
	Create(ctx context.Context, input CreateElectionInput) (*domain.Election, error)
	GetByID(ctx context.Context, id int64) (*domain.Election, error)
	List(ctx context.Context) ([]*domain.Election, error)
	Update(ctx context.Context, id int64, input UpdateElectionInput) (*domain.Election, error)
	Count(ctx context.Context) (int64, error)
}

type CreateElectionInput struct {
	Name        string
	Description string
	Candidates  []string
	StartTime   int64
	EndTime     int64
}

// UpdateElectionInput carries the mutable election fields. Candidates and id
// are never altered; rewriting StartTime/EndTime is also how "start now" and
// "end now" are effected.
type UpdateElectionInput struct {
	Name        string
	Description string
	StartTime   int64
	EndTime     int64
}

// LedgerService orchestrates all ledger mutations and reads. It is the sole
// entry point for external callers.
type LedgerService interface {
	CreateElection(ctx context.Context, caller string, input CreateElectionInput) (*domain.Election, error)
	UpdateElection(ctx context.Context, caller string, id int64, input UpdateElectionInput) (*domain.Election, error)
	Vote(ctx context.Context, voterID string, electionID int64, candidateIndex int) (*domain.Ballot, error)
	GetElection(ctx context.Context, id int64) (*domain.Election, error)
	ListElections(ctx context.Context) ([]*domain.Election, error)
	GetElectionCount(ctx context.Context) (int64, error)
	HasVoted(ctx context.Context, electionID int64, voterID string) (bool, error)
	GetBallot(ctx context.Context, electionID int64, voterID string) (*domain.Ballot, error)
	TransferAdmin(ctx context.Context, caller, newIdentity string) error
}
