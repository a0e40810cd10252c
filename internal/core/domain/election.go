package domain

import (
	"fmt"
	"time"
)

// Election is the authoritative record of a single election. Candidates and
// id are fixed at creation; only name, description and the time window may
// change afterwards.
type Election struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Candidates  []string  `json:"candidates"`
	StartTime   int64     `json:"start_time"`
	EndTime     int64     `json:"end_time"`
	TotalVotes  int64     `json:"total_votes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ElectionPhase string

const (
	PhaseUpcoming ElectionPhase = "upcoming"
	PhaseActive   ElectionPhase = "active"
	PhaseEnded    ElectionPhase = "ended"
)

// PhaseAt derives the election phase from the given instant. Both bounds are
// inclusive: a vote at exactly StartTime or EndTime is accepted.
func (e *Election) PhaseAt(now time.Time) ElectionPhase {
	ts := now.Unix()
	switch {
	case ts < e.StartTime:
		return PhaseUpcoming
	case ts > e.EndTime:
		return PhaseEnded
	default:
		return PhaseActive
	}
}

// ValidateElectionFields checks the creation/update invariants shared by all
// election stores.
func ValidateElectionFields(name, description string, candidates []string, startTime, endTime int64) error {
	if name == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidArgument)
	}
	if description == "" {
		return fmt.Errorf("description is required: %w", ErrInvalidArgument)
	}
	if len(candidates) < 2 {
		return fmt.Errorf("at least two candidates are required: %w", ErrInvalidArgument)
	}
	for i, label := range candidates {
		if label == "" {
			return fmt.Errorf("candidate %d has an empty label: %w", i, ErrInvalidArgument)
		}
	}
	if err := ValidateTimeWindow(startTime, endTime); err != nil {
		return err
	}
	return nil
}

// ValidateTimeWindow enforces endTime > startTime, on creation and on every
// update.
func ValidateTimeWindow(startTime, endTime int64) error {
	if endTime <= startTime {
		return fmt.Errorf("end time must be after start time: %w", ErrInvalidArgument)
	}
	return nil
}
