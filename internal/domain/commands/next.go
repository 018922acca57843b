package commands

import (
	"context"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
)

// NextCommand computes the version a release would produce without changing anything.
type NextCommand struct {
	manifests repositories.ManifestRepository
}

// NewNextCommand creates a new NextCommand.
func NewNextCommand(manifests repositories.ManifestRepository) *NextCommand {
	return &NextCommand{manifests: manifests}
}

// Execute loads the manifests and resolves the target against their current version.
func (it *NextCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	target entities.Target,
) (*entities.Release, error) {
	manifest, err := it.manifests.Load(ctx, settings.WorkDir, settings.Manifests)
	if err != nil {
		return nil, err
	}

	current := manifest.Get(repositories.FieldVersion)
	version, err := target.Resolve(current, settings.PreID)
	if err != nil {
		return nil, err
	}

	return &entities.Release{
		Name:            manifest.Get(repositories.FieldName),
		PreviousVersion: current,
		Version:         version,
		Tag:             settings.TagPrefix + version,
		ManifestPaths:   manifest.Paths(),
	}, nil
}
