package repositories

import (
	"context"

	"github.com/rios0rios0/publicist/internal/domain/entities"
)

// BundleRequest describes one standalone bundle to build.
type BundleRequest struct {
	WorkDir    string
	EntryPoint string
	GlobalName string
	Output     string
	Options    entities.BundleSettings
}

// Bundler resolves a module graph from an entry file into one self-contained file.
type Bundler interface {
	Bundle(ctx context.Context, request BundleRequest) error
}
