package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type adminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) ports.AdminStore {
	return &adminRepository{db: db}
}

func (r *adminRepository) Current(ctx context.Context) (string, error) {
	query := `SELECT identity FROM administrator`
	var identity string
	err := r.db.QueryRowContext(ctx, query).Scan(&identity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("administrator not initialized")
		}
		return "", fmt.Errorf("failed to get administrator: %w", err)
	}
	return identity, nil
}

// Seed sets the initial administrator. The singleton row makes this a no-op
// once an administrator exists.
func (r *adminRepository) Seed(ctx context.Context, identity string) error {
	query := `
		INSERT INTO administrator (identity)
		VALUES ($1)
		ON CONFLICT (singleton) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, identity)
	if err != nil {
		return fmt.Errorf("failed to seed administrator: %w", err)
	}
	return nil
}

// CompareAndSwap transfers the admin slot only if current still matches,
// in a single statement so concurrent transfers cannot both succeed.
func (r *adminRepository) CompareAndSwap(ctx context.Context, current, next string) error {
	query := `UPDATE administrator SET identity = $2, updated_at = NOW() WHERE identity = $1`
	res, err := r.db.ExecContext(ctx, query, current, next)
	if err != nil {
		return fmt.Errorf("failed to transfer administrator: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read transfer result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("admin transfer denied: %w", domain.ErrUnauthorized)
	}
	return nil
}
