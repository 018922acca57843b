package repositories

import (
	"context"

	"github.com/rios0rios0/publicist/internal/domain/entities"
)

// VersionControl is the subset of version-control commands a release runs against the working repository.
type VersionControl interface {
	Fetch(ctx context.Context) error
	Checkout(ctx context.Context, branch string) error
	CheckoutNew(ctx context.Context, branch string) error
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	DeleteBranch(ctx context.Context, branch string) error
	Tag(ctx context.Context, name, message string) error
}

// VersionControlProvider opens the repository a run operates on.
type VersionControlProvider interface {
	Open(ctx context.Context, settings *entities.Settings) (VersionControl, error)
}
