package ports

import "context"

// AdminStore holds the single administrator identity. CompareAndSwap must be
// atomic in the underlying store so a stale caller can never win a transfer
// race; it fails with domain.ErrUnauthorized when current does not match.
type AdminStore interface {
	Current(ctx context.Context) (string, error)
	Seed(ctx context.Context, identity string) error
	CompareAndSwap(ctx context.Context, current, next string) error
}

// AccessControl answers admin checks and performs admin transfer.
type AccessControl interface {
	IsAdmin(ctx context.Context, identity string) (bool, error)
	CurrentAdmin(ctx context.Context) (string, error)
	TransferAdmin(ctx context.Context, caller, newIdentity string) error
}
