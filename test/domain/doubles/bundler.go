//go:build integration || unit || test

package doubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rios0rios0/publicist/internal/domain/repositories"
)

// BundlerStub records requests and optionally writes a placeholder artifact.
type BundlerStub struct {
	Requests []repositories.BundleRequest
	Err      error
	// WriteOutput creates the output file so that it can be staged by a real repository.
	WriteOutput bool
}

func (b *BundlerStub) Bundle(_ context.Context, request repositories.BundleRequest) error {
	b.Requests = append(b.Requests, request)
	if b.Err != nil {
		return b.Err
	}
	if b.WriteOutput {
		output := filepath.Join(request.WorkDir, request.Output)
		return os.WriteFile(output, []byte("/* "+request.GlobalName+" */\n"), 0o644)
	}
	return nil
}
