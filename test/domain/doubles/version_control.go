//go:build integration || unit || test

package doubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
)

// VersionControlStub is an in-memory repository that records every call.
type VersionControlStub struct {
	Calls    []string
	Current  string
	Branches map[string]bool
	Tags     []string
	Commits  []string
	Staged   []string
	// FailOn makes the named operation ("fetch", "checkout", ...) return the error.
	FailOn map[string]error
	// Hook, when set, is called with the operation name after each call is recorded.
	Hook func(operation string)
}

// NewVersionControlStub creates a stub positioned on the given mainline branch.
func NewVersionControlStub(mainline string) *VersionControlStub {
	return &VersionControlStub{
		Current:  mainline,
		Branches: map[string]bool{mainline: true},
		FailOn:   map[string]error{},
	}
}

func (s *VersionControlStub) record(operation, argument string) error {
	s.Calls = append(s.Calls, operation+" "+argument)
	if s.Hook != nil {
		s.Hook(operation)
	}
	return s.FailOn[operation]
}

func (s *VersionControlStub) Fetch(_ context.Context) error {
	return s.record("fetch", "")
}

func (s *VersionControlStub) Checkout(_ context.Context, branch string) error {
	if err := s.record("checkout", branch); err != nil {
		return err
	}
	s.Current = branch
	return nil
}

func (s *VersionControlStub) CheckoutNew(_ context.Context, branch string) error {
	if err := s.record("checkout-new", branch); err != nil {
		return err
	}
	s.Branches[branch] = true
	s.Current = branch
	return nil
}

func (s *VersionControlStub) Add(_ context.Context, paths ...string) error {
	for _, path := range paths {
		if err := s.record("add", path); err != nil {
			return err
		}
		s.Staged = append(s.Staged, path)
	}
	return nil
}

func (s *VersionControlStub) Commit(_ context.Context, message string) error {
	if err := s.record("commit", message); err != nil {
		return err
	}
	s.Commits = append(s.Commits, message)
	return nil
}

func (s *VersionControlStub) DeleteBranch(_ context.Context, branch string) error {
	if err := s.record("delete-branch", branch); err != nil {
		return err
	}
	delete(s.Branches, branch)
	return nil
}

func (s *VersionControlStub) Tag(_ context.Context, name, _ string) error {
	if err := s.record("tag", name); err != nil {
		return err
	}
	s.Tags = append(s.Tags, name)
	return nil
}

// VersionControlProviderStub hands out a fixed VersionControl.
type VersionControlProviderStub struct {
	VersionControl repositories.VersionControl
	Err            error
}

func (p *VersionControlProviderStub) Open(
	_ context.Context,
	_ *entities.Settings,
) (repositories.VersionControl, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.VersionControl, nil
}
