// Package memory provides an in-memory implementation of the ledger's
// storage ports. It backs unit tests; durable deployments use the postgres
// adapters, where the double-vote guard is a unique constraint rather than a
// process-local mutex.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type ballotKey struct {
	electionID int64
	voterID    string
}

// Store implements ports.ElectionStore, ports.BallotBox and ports.AdminStore
// behind a single mutex, which serializes the check-then-increment sequence
// of RecordVote against every other operation.
type Store struct {
	mu sync.RWMutex

	admin     string
	elections []*domain.Election
	ballots   map[ballotKey]*domain.Ballot
	tallies   map[int64][]int64
}

func NewStore() *Store {
	return &Store{
		ballots: make(map[ballotKey]*domain.Ballot),
		tallies: make(map[int64][]int64),
	}
}

var _ ports.ElectionStore = (*Store)(nil)
var _ ports.BallotBox = (*Store)(nil)
var _ ports.AdminStore = (*Store)(nil)

func (s *Store) Create(_ context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	if err := domain.ValidateElectionFields(input.Name, input.Description, input.Candidates, input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	election := &domain.Election{
		ID:          int64(len(s.elections)),
		Name:        input.Name,
		Description: input.Description,
		Candidates:  append([]string(nil), input.Candidates...),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		TotalVotes:  0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.elections = append(s.elections, election)
	s.tallies[election.ID] = make([]int64, len(election.Candidates))
	return cloneElection(election), nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	election, err := s.electionLocked(id)
	if err != nil {
		return nil, err
	}
	return cloneElection(election), nil
}

func (s *Store) List(_ context.Context) ([]*domain.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elections := make([]*domain.Election, 0, len(s.elections))
	for _, election := range s.elections {
		elections = append(elections, cloneElection(election))
	}
	return elections, nil
}

func (s *Store) Update(_ context.Context, id int64, input ports.UpdateElectionInput) (*domain.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, err := s.electionLocked(id)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	}
	if input.Description == "" {
		return nil, fmt.Errorf("description is required: %w", domain.ErrInvalidArgument)
	}
	if err := domain.ValidateTimeWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	election.Name = input.Name
	election.Description = input.Description
	election.StartTime = input.StartTime
	election.EndTime = input.EndTime
	election.UpdatedAt = time.Now()
	return cloneElection(election), nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.elections)), nil
}

func (s *Store) HasVoted(_ context.Context, electionID int64, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ballots[ballotKey{electionID, voterID}]
	return ok, nil
}

func (s *Store) GetBallot(_ context.Context, electionID int64, voterID string) (*domain.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ballot, ok := s.ballots[ballotKey{electionID, voterID}]
	if !ok {
		return nil, nil
	}
	clone := *ballot
	return &clone, nil
}

func (s *Store) RecordVote(_ context.Context, electionID int64, voterID string, candidateIndex int) (*domain.Ballot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, err := s.electionLocked(electionID)
	if err != nil {
		return nil, err
	}
	if candidateIndex < 0 || candidateIndex >= len(election.Candidates) {
		return nil, fmt.Errorf("invalid candidate index %d: %w", candidateIndex, domain.ErrInvalidArgument)
	}

	key := ballotKey{electionID, voterID}
	if _, ok := s.ballots[key]; ok {
		return nil, domain.ErrAlreadyVoted
	}

	ballot := &domain.Ballot{
		ID:             uuid.New(),
		ElectionID:     electionID,
		VoterID:        voterID,
		CandidateIndex: candidateIndex,
		CreatedAt:      time.Now(),
	}
	s.ballots[key] = ballot
	s.tallies[electionID][candidateIndex]++
	election.TotalVotes++

	clone := *ballot
	return &clone, nil
}

func (s *Store) GetVoteCount(_ context.Context, electionID int64, candidateIndex int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	election, err := s.electionLocked(electionID)
	if err != nil {
		return 0, err
	}
	if candidateIndex < 0 || candidateIndex >= len(election.Candidates) {
		return 0, fmt.Errorf("invalid candidate index %d: %w", candidateIndex, domain.ErrInvalidArgument)
	}
	return s.tallies[electionID][candidateIndex], nil
}

func (s *Store) GetTallies(_ context.Context, electionID int64) ([]domain.CandidateTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	election, err := s.electionLocked(electionID)
	if err != nil {
		return nil, err
	}

	counts := s.tallies[electionID]
	tallies := make([]domain.CandidateTally, len(election.Candidates))
	for i, label := range election.Candidates {
		tallies[i] = domain.CandidateTally{
			Index:     i,
			Label:     label,
			VoteCount: counts[i],
		}
	}
	return tallies, nil
}

func (s *Store) Current(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.admin == "" {
		return "", fmt.Errorf("administrator not initialized")
	}
	return s.admin, nil
}

func (s *Store) Seed(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin == "" {
		s.admin = identity
	}
	return nil
}

func (s *Store) CompareAndSwap(_ context.Context, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin == "" || s.admin != current {
		return fmt.Errorf("admin transfer denied: %w", domain.ErrUnauthorized)
	}
	s.admin = next
	return nil
}

func (s *Store) electionLocked(id int64) (*domain.Election, error) {
	if id < 0 || id >= int64(len(s.elections)) {
		return nil, fmt.Errorf("election %d: %w", id, domain.ErrElectionNotFound)
	}
	return s.elections[id], nil
}

func cloneElection(e *domain.Election) *domain.Election {
	clone := *e
	clone.Candidates = append([]string(nil), e.Candidates...)
	return &clone
}
