package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type electionRepository struct {
	db *sql.DB
}

func NewElectionRepository(db *sql.DB) ports.ElectionStore {
	return &electionRepository{
		db: db,
	}
}

// Create inserts the election and one zeroed tally row per candidate in a
// single transaction, so tallies always exist for the full index range.
func (r *electionRepository) Create(ctx context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	if err := domain.ValidateElectionFields(input.Name, input.Description, input.Candidates, input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryElection := `
		INSERT INTO elections (name, description, candidates, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, total_votes, created_at, updated_at
	`
	election := &domain.Election{
		Name:        input.Name,
		Description: input.Description,
		Candidates:  append([]string(nil), input.Candidates...),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
	}
	err = tx.QueryRowContext(ctx, queryElection,
		input.Name, input.Description, pq.Array(input.Candidates), input.StartTime, input.EndTime,
	).Scan(&election.ID, &election.TotalVotes, &election.CreatedAt, &election.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert election: %w", err)
	}

	queryTally := `
		INSERT INTO candidate_tallies (election_id, candidate_index)
		VALUES ($1, $2)
	`
	stmt, err := tx.PrepareContext(ctx, queryTally)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare tally statement: %w", err)
	}
	defer stmt.Close()

	for i := range input.Candidates {
		if _, err := stmt.ExecContext(ctx, election.ID, i); err != nil {
			return nil, fmt.Errorf("failed to insert tally row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return election, nil
}

func (r *electionRepository) GetByID(ctx context.Context, id int64) (*domain.Election, error) {
	query := `
		SELECT id, name, description, candidates, start_time, end_time, total_votes, created_at, updated_at
		FROM elections
		WHERE id = $1
	`

	var election domain.Election
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&election.ID, &election.Name, &election.Description, pq.Array(&election.Candidates),
		&election.StartTime, &election.EndTime, &election.TotalVotes,
		&election.CreatedAt, &election.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("election %d: %w", id, domain.ErrElectionNotFound)
		}
		return nil, fmt.Errorf("failed to get election: %w", err)
	}

	return &election, nil
}

func (r *electionRepository) List(ctx context.Context) ([]*domain.Election, error) {
	query := `
		SELECT id, name, description, candidates, start_time, end_time, total_votes, created_at, updated_at
		FROM elections
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	defer rows.Close()

	var elections []*domain.Election
	for rows.Next() {
		var election domain.Election
		if err := rows.Scan(
			&election.ID, &election.Name, &election.Description, pq.Array(&election.Candidates),
			&election.StartTime, &election.EndTime, &election.TotalVotes,
			&election.CreatedAt, &election.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, &election)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elections: %w", err)
	}
	return elections, nil
}

func (r *electionRepository) Update(ctx context.Context, id int64, input ports.UpdateElectionInput) (*domain.Election, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidArgument)
	}
	if input.Description == "" {
		return nil, fmt.Errorf("description is required: %w", domain.ErrInvalidArgument)
	}
	if err := domain.ValidateTimeWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	query := `
		UPDATE elections
		SET name = $2, description = $3, start_time = $4, end_time = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, candidates, start_time, end_time, total_votes, created_at, updated_at
	`
	var election domain.Election
	err := r.db.QueryRowContext(ctx, query, id, input.Name, input.Description, input.StartTime, input.EndTime).Scan(
		&election.ID, &election.Name, &election.Description, pq.Array(&election.Candidates),
		&election.StartTime, &election.EndTime, &election.TotalVotes,
		&election.CreatedAt, &election.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("election %d: %w", id, domain.ErrElectionNotFound)
		}
		return nil, fmt.Errorf("failed to update election: %w", err)
	}

	return &election, nil
}

func (r *electionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM elections`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count elections: %w", err)
	}
	return count, nil
}
