package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/election-ledger/internal/core/domain"
	"github.com/vncsmyrnk/election-ledger/internal/core/ports"
)

type accessControl struct {
	admins ports.AdminStore
	logger *slog.Logger
}

func NewAccessControl(admins ports.AdminStore, logger *slog.Logger) ports.AccessControl {
	return &accessControl{
		admins: admins,
		logger: logger,
	}
}

func (s *accessControl) IsAdmin(ctx context.Context, identity string) (bool, error) {
	if identity == "" {
		return false, nil
	}

	current, err := s.admins.Current(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load administrator: %w", err)
	}
	return current == identity, nil
}

func (s *accessControl) CurrentAdmin(ctx context.Context) (string, error) {
	return s.admins.Current(ctx)
}

func (s *accessControl) TransferAdmin(ctx context.Context, caller, newIdentity string) error {
	if newIdentity == "" {
		return fmt.Errorf("new administrator identity is required: %w", domain.ErrInvalidArgument)
	}

	// The store performs the compare atomically; checking IsAdmin here first
	// would leave a window for two transfers to race.
	if err := s.admins.CompareAndSwap(ctx, caller, newIdentity); err != nil {
		return err
	}

	s.logger.Info("administrator transferred",
		"event", "admin_transferred",
		"new_admin", newIdentity,
	)
	return nil
}
