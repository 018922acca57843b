package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/publicist/internal/domain/repositories"
	"github.com/rios0rios0/publicist/internal/infrastructure/repositories/esbuild"
	"github.com/rios0rios0/publicist/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/publicist/internal/infrastructure/repositories/manifest"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func() domainRepos.VersionControlProvider {
		return git.NewProvider()
	}); err != nil {
		return err
	}

	if err := container.Provide(manifest.NewDefaultCodecRegistry); err != nil {
		return err
	}
	if err := container.Provide(func(codecs *manifest.CodecRegistry) domainRepos.ManifestRepository {
		return manifest.NewRepository(codecs)
	}); err != nil {
		return err
	}

	return container.Provide(func() domainRepos.Bundler {
		return esbuild.NewBundler()
	})
}
