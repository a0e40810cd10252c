package ports

import (
	"context"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
)

// ResultsProjector derives read-only views from ballot box state. Winners is
// callable at any time; while the election is still active the result is
// provisional.
type ResultsProjector interface {
	TallyFor(ctx context.Context, electionID int64) ([]domain.CandidateTally, error)
	Winners(ctx context.Context, electionID int64) ([]int, error)
}
