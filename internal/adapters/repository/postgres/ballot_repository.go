package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

// uniqueViolation is the postgres error code raised when the ballots
// composite key (election_id, voter_id) already exists.
const uniqueViolation = "23505"

type ballotRepository struct {
	db *sql.DB
}

func NewBallotRepository(db *sql.DB) ports.BallotBox {
	return &ballotRepository{
		db: db,
	}
}

// RecordVote marks the ballot and bumps both counters in one transaction.
// The unique constraint on (election_id, voter_id) is the double-vote guard:
// of two concurrent votes from the same identity exactly one insert commits,
// the other surfaces domain.ErrAlreadyVoted.
func (r *ballotRepository) RecordVote(ctx context.Context, electionID int64, voterID string, candidateIndex int) (*domain.Ballot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var candidateCount int
	err = tx.QueryRowContext(ctx, `SELECT cardinality(candidates) FROM elections WHERE id = $1`, electionID).Scan(&candidateCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("election %d: %w", electionID, domain.ErrElectionNotFound)
		}
		return nil, fmt.Errorf("failed to load election: %w", err)
	}
	if candidateIndex < 0 || candidateIndex >= candidateCount {
		return nil, fmt.Errorf("invalid candidate index %d: %w", candidateIndex, domain.ErrInvalidArgument)
	}

	ballot := &domain.Ballot{
		ID:             uuid.New(),
		ElectionID:     electionID,
		VoterID:        voterID,
		CandidateIndex: candidateIndex,
	}
	queryBallot := `
		INSERT INTO ballots (id, election_id, voter_id, candidate_index)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, queryBallot, ballot.ID, electionID, voterID, candidateIndex).Scan(&ballot.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, domain.ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to insert ballot: %w", err)
	}

	queryTally := `
		UPDATE candidate_tallies
		SET vote_count = vote_count + 1
		WHERE election_id = $1 AND candidate_index = $2
	`
	if _, err := tx.ExecContext(ctx, queryTally, electionID, candidateIndex); err != nil {
		return nil, fmt.Errorf("failed to increment tally: %w", err)
	}

	queryTotal := `
		UPDATE elections
		SET total_votes = total_votes + 1, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, queryTotal, electionID); err != nil {
		return nil, fmt.Errorf("failed to increment total votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ballot, nil
}

func (r *ballotRepository) HasVoted(ctx context.Context, electionID int64, voterID string) (bool, error) {
	query := `SELECT 1 FROM ballots WHERE election_id = $1 AND voter_id = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, electionID, voterID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing ballot: %w", err)
	}
	return true, nil
}

func (r *ballotRepository) GetBallot(ctx context.Context, electionID int64, voterID string) (*domain.Ballot, error) {
	query := `
		SELECT id, election_id, voter_id, candidate_index, created_at
		FROM ballots
		WHERE election_id = $1 AND voter_id = $2
	`
	ballot := &domain.Ballot{}
	err := r.db.QueryRowContext(ctx, query, electionID, voterID).Scan(
		&ballot.ID, &ballot.ElectionID, &ballot.VoterID, &ballot.CandidateIndex, &ballot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ballot: %w", err)
	}
	return ballot, nil
}

func (r *ballotRepository) GetVoteCount(ctx context.Context, electionID int64, candidateIndex int) (int64, error) {
	query := `SELECT vote_count FROM candidate_tallies WHERE election_id = $1 AND candidate_index = $2`
	var count int64
	err := r.db.QueryRowContext(ctx, query, electionID, candidateIndex).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Tally rows exist for the full candidate range of every
			// election, so a miss is either a bad id or a bad index.
			return 0, r.classifyMissingTally(ctx, electionID, candidateIndex)
		}
		return 0, fmt.Errorf("failed to get vote count: %w", err)
	}
	return count, nil
}

func (r *ballotRepository) GetTallies(ctx context.Context, electionID int64) ([]domain.CandidateTally, error) {
	var candidates []string
	err := r.db.QueryRowContext(ctx, `SELECT candidates FROM elections WHERE id = $1`, electionID).Scan(pq.Array(&candidates))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("election %d: %w", electionID, domain.ErrElectionNotFound)
		}
		return nil, fmt.Errorf("failed to load election: %w", err)
	}

	query := `
		SELECT candidate_index, vote_count
		FROM candidate_tallies
		WHERE election_id = $1
		ORDER BY candidate_index
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tallies: %w", err)
	}
	defer rows.Close()

	tallies := make([]domain.CandidateTally, 0, len(candidates))
	for rows.Next() {
		var tally domain.CandidateTally
		if err := rows.Scan(&tally.Index, &tally.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tally.Label = candidates[tally.Index]
		tallies = append(tallies, tally)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tallies: %w", err)
	}
	return tallies, nil
}

func (r *ballotRepository) classifyMissingTally(ctx context.Context, electionID int64, candidateIndex int) error {
	var candidateCount int
	err := r.db.QueryRowContext(ctx, `SELECT cardinality(candidates) FROM elections WHERE id = $1`, electionID).Scan(&candidateCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("election %d: %w", electionID, domain.ErrElectionNotFound)
		}
		return fmt.Errorf("failed to load election: %w", err)
	}
	return fmt.Errorf("invalid candidate index %d: %w", candidateIndex, domain.ErrInvalidArgument)
}
