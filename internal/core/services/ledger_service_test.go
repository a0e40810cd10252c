package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/election-ledger/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

const adminID = "admin-1"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLedger(t *testing.T) (ports.LedgerService, *memory.Store, *fakeClock) {
	t.Helper()

	store := memory.NewStore()
	require.NoError(t, store.Seed(context.Background(), adminID))

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	access := NewAccessControl(store, logger)
	ledger := NewLedgerService(store, store, access, clock, logger)
	return ledger, store, clock
}

func activeElectionInput(clock *fakeClock) ports.CreateElectionInput {
	now := clock.Now().Unix()
	return ports.CreateElectionInput{
		Name:        "Board election",
		Description: "Annual board election",
		Candidates:  []string{"A", "B", "C"},
		StartTime:   now - 10,
		EndTime:     now + 1000,
	}
}

func TestCreateElection(t *testing.T) {
	ledger, _, clock := newTestLedger(t)
	ctx := context.Background()

	t.Run("admin creates election with zero votes and ordered candidates", func(t *testing.T) {
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		assert.Equal(t, int64(0), election.ID)
		assert.Equal(t, int64(0), election.TotalVotes)
		assert.Equal(t, []string{"A", "B", "C"}, election.Candidates)
	})

	t.Run("ids are sequential", func(t *testing.T) {
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)
		assert.Equal(t, int64(1), election.ID)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, err := ledger.CreateElection(ctx, "voter-9", activeElectionInput(clock))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		_, err := ledger.CreateElection(ctx, "", activeElectionInput(clock))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("invalid time window creates nothing", func(t *testing.T) {
		before, err := ledger.GetElectionCount(ctx)
		require.NoError(t, err)

		input := activeElectionInput(clock)
		input.EndTime = input.StartTime
		_, err = ledger.CreateElection(ctx, adminID, input)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		after, err := ledger.GetElectionCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestVote(t *testing.T) {
	ctx := context.Background()

	t.Run("vote is recorded and tallied", func(t *testing.T) {
		ledger, store, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		ballot, err := ledger.Vote(ctx, "voter-x", election.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, ballot.CandidateIndex)

		count, err := store.GetVoteCount(ctx, election.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		updated, err := ledger.GetElection(ctx, election.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.TotalVotes)

		voted, err := ledger.HasVoted(ctx, election.ID, "voter-x")
		require.NoError(t, err)
		assert.True(t, voted)
	})

	t.Run("second vote from same identity fails and changes nothing", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, 1)
		require.NoError(t, err)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, 2)
		assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

		updated, err := ledger.GetElection(ctx, election.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.TotalVotes)
	})

	t.Run("vote on upcoming election is closed", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		input := activeElectionInput(clock)
		input.StartTime = clock.Now().Unix() + 1000
		input.EndTime = input.StartTime + 1000
		election, err := ledger.CreateElection(ctx, adminID, input)
		require.NoError(t, err)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, 0)
		assert.ErrorIs(t, err, domain.ErrVotingClosed)

		updated, err := ledger.GetElection(ctx, election.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated.TotalVotes)
	})

	t.Run("vote on ended election is closed", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		clock.Advance(2000 * time.Second)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, 0)
		assert.ErrorIs(t, err, domain.ErrVotingClosed)
	})

	t.Run("invalid candidate index", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, 99)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("unknown election", func(t *testing.T) {
		ledger, _, _ := newTestLedger(t)
		_, err := ledger.Vote(ctx, "voter-x", 42, 0)
		assert.ErrorIs(t, err, domain.ErrElectionNotFound)
	})

	t.Run("empty voter identity", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		_, err = ledger.Vote(ctx, "", election.ID, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("tally sum equals total votes", func(t *testing.T) {
		ledger, store, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		votes := map[string]int{
			"voter-1": 0, "voter-2": 1, "voter-3": 1,
			"voter-4": 2, "voter-5": 0, "voter-6": 1,
		}
		for voter, index := range votes {
			_, err := ledger.Vote(ctx, voter, election.ID, index)
			require.NoError(t, err)
		}

		tallies, err := store.GetTallies(ctx, election.ID)
		require.NoError(t, err)

		var sum int64
		for _, tally := range tallies {
			sum += tally.VoteCount
		}

		updated, err := ledger.GetElection(ctx, election.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.TotalVotes, sum)
		assert.Equal(t, int64(len(votes)), sum)
	})

	t.Run("concurrent votes from same identity record exactly one", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		const attempts = 16
		var wg sync.WaitGroup
		errs := make(chan error, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				_, err := ledger.Vote(ctx, "voter-x", election.ID, index%3)
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		var accepted, rejected int
		for err := range errs {
			if err == nil {
				accepted++
			} else {
				require.ErrorIs(t, err, domain.ErrAlreadyVoted)
				rejected++
			}
		}
		assert.Equal(t, 1, accepted)
		assert.Equal(t, attempts-1, rejected)

		updated, err := ledger.GetElection(ctx, election.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.TotalVotes)
	})
}

func TestUpdateElection(t *testing.T) {
	ctx := context.Background()

	t.Run("admin updates time window without touching votes", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		_, err = ledger.Vote(ctx, "voter-x", election.ID, 0)
		require.NoError(t, err)

		updated, err := ledger.UpdateElection(ctx, adminID, election.ID, ports.UpdateElectionInput{
			Name:        "Board election (extended)",
			Description: election.Description,
			StartTime:   election.StartTime,
			EndTime:     election.EndTime + 5000,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1), updated.TotalVotes)
		assert.Equal(t, election.Candidates, updated.Candidates)
		assert.Equal(t, election.EndTime+5000, updated.EndTime)
	})

	t.Run("end now closes voting immediately", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		now := clock.Now().Unix()
		_, err = ledger.UpdateElection(ctx, adminID, election.ID, ports.UpdateElectionInput{
			Name:        election.Name,
			Description: election.Description,
			StartTime:   election.StartTime,
			EndTime:     now,
		})
		require.NoError(t, err)

		// EndTime is inclusive, so the window closes one second later.
		clock.Advance(time.Second)
		_, err = ledger.Vote(ctx, "voter-x", election.ID, 0)
		assert.ErrorIs(t, err, domain.ErrVotingClosed)
	})

	t.Run("non-admin cannot update", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		_, err = ledger.UpdateElection(ctx, "voter-9", election.ID, ports.UpdateElectionInput{
			Name:        "x",
			Description: "y",
			StartTime:   1,
			EndTime:     2,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown election", func(t *testing.T) {
		ledger, _, _ := newTestLedger(t)
		_, err := ledger.UpdateElection(ctx, adminID, 42, ports.UpdateElectionInput{
			Name:        "x",
			Description: "y",
			StartTime:   1,
			EndTime:     2,
		})
		assert.ErrorIs(t, err, domain.ErrElectionNotFound)
	})

	t.Run("invalid window is rejected", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)
		election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		require.NoError(t, err)

		_, err = ledger.UpdateElection(ctx, adminID, election.ID, ports.UpdateElectionInput{
			Name:        election.Name,
			Description: election.Description,
			StartTime:   200,
			EndTime:     100,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestTransferAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin transfer is rejected and admin unchanged", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)

		err := ledger.TransferAdmin(ctx, "voter-9", "voter-10")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		assert.NoError(t, err)
	})

	t.Run("empty new identity is rejected", func(t *testing.T) {
		ledger, _, _ := newTestLedger(t)
		err := ledger.TransferAdmin(ctx, adminID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("admin transfer hands over admin-only operations", func(t *testing.T) {
		ledger, _, clock := newTestLedger(t)

		require.NoError(t, ledger.TransferAdmin(ctx, adminID, "admin-2"))

		_, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = ledger.CreateElection(ctx, "admin-2", activeElectionInput(clock))
		assert.NoError(t, err)
	})
}

func TestGetBallot(t *testing.T) {
	ctx := context.Background()
	ledger, _, clock := newTestLedger(t)

	election, err := ledger.CreateElection(ctx, adminID, activeElectionInput(clock))
	require.NoError(t, err)

	ballot, err := ledger.GetBallot(ctx, election.ID, "voter-x")
	require.NoError(t, err)
	assert.Nil(t, ballot)

	recorded, err := ledger.Vote(ctx, "voter-x", election.ID, 2)
	require.NoError(t, err)

	ballot, err = ledger.GetBallot(ctx, election.ID, "voter-x")
	require.NoError(t, err)
	require.NotNil(t, ballot)
	assert.Equal(t, recorded.ID, ballot.ID)
	assert.Equal(t, 2, ballot.CandidateIndex)

	_, err = ledger.GetBallot(ctx, 42, "voter-x")
	assert.ErrorIs(t, err, domain.ErrElectionNotFound)
}
