package services

import (
	"context"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type resultsProjector struct {
	ballots ports.BallotBox
}

func NewResultsProjector(ballots ports.BallotBox) ports.ResultsProjector {
	return &resultsProjector{
		ballots: ballots,
	}
}

func (p *resultsProjector) TallyFor(ctx context.Context, electionID int64) ([]domain.CandidateTally, error) {
	return p.ballots.GetTallies(ctx, electionID)
}

// Winners returns the candidate indices sharing the maximum vote count. Ties
// are preserved, not broken.
func (p *resultsProjector) Winners(ctx context.Context, electionID int64) ([]int, error) {
	tallies, err := p.ballots.GetTallies(ctx, electionID)
	if err != nil {
		return nil, err
	}

	var max int64
	for _, t := range tallies {
		if t.VoteCount > max {
			max = t.VoteCount
		}
	}

	var winners []int
	for _, t := range tallies {
		if t.VoteCount == max {
			winners = append(winners, t.Index)
		}
	}
	return winners, nil
}
