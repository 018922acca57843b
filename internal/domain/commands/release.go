package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
	"github.com/rios0rios0/publicist/internal/support"
)

var (
	ErrManifestFieldMissing = errors.New("manifest field missing")
)

// ReleaseCommand bumps, commits, bundles and tags a package.
type ReleaseCommand struct {
	vcsProvider repositories.VersionControlProvider
	manifests   repositories.ManifestRepository
	bundler     repositories.Bundler
	// newBranchName is swapped in tests to get a predictable scratch branch.
	newBranchName func() string
}

// NewReleaseCommand creates a new ReleaseCommand.
func NewReleaseCommand(
	vcsProvider repositories.VersionControlProvider,
	manifests repositories.ManifestRepository,
	bundler repositories.Bundler,
) *ReleaseCommand {
	return &ReleaseCommand{
		vcsProvider:   vcsProvider,
		manifests:     manifests,
		bundler:       bundler,
		newBranchName: support.NewScratchBranchName,
	}
}

// releaseContext holds the state threaded through the release steps.
type releaseContext struct {
	settings *entities.Settings
	target   entities.Target
	vcs      repositories.VersionControl
	manifest repositories.Manifest
	release  *entities.Release
}

// Execute runs the release sequence. Every failure stops the remaining steps;
// once the scratch branch exists, the mainline is restored and the branch deleted on every exit path.
func (it *ReleaseCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	target entities.Target,
) (release *entities.Release, err error) {
	rc := &releaseContext{
		settings: settings,
		target:   target,
		release:  &entities.Release{},
	}

	rc.vcs, err = it.vcsProvider.Open(ctx, settings)
	if err != nil {
		return nil, err
	}

	if err = runSteps(ctx, rc, it.syncMainline, it.bumpManifest, it.commitManifest); err != nil {
		return nil, err
	}

	if err = interrupted(ctx); err != nil {
		return nil, err
	}
	branch := it.newBranchName()
	log.Infof("Creating scratch branch '%s'", branch)
	if err = rc.vcs.CheckoutNew(ctx, branch); err != nil {
		return nil, err
	}
	rc.release.ScratchBranch = branch

	defer func() {
		if cleanupErr := it.releaseScratchBranch(rc, branch); cleanupErr != nil {
			if err == nil {
				err = cleanupErr
				return
			}
			log.Errorf("Cleanup after failure also failed: %v", cleanupErr)
			err = errors.CombineErrors(err, cleanupErr)
		}
	}()

	if err = runSteps(ctx, rc, it.buildBundle, it.commitBundle, it.tagRelease); err != nil {
		return nil, err
	}

	return rc.release, nil
}

// runSteps runs the steps in order, stopping at the first error or once the context is done.
func runSteps(
	ctx context.Context,
	rc *releaseContext,
	steps ...func(context.Context, *releaseContext) error,
) error {
	for _, step := range steps {
		if err := interrupted(ctx); err != nil {
			return err
		}
		if err := step(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "release interrupted")
	}
	return nil
}

func (it *ReleaseCommand) syncMainline(ctx context.Context, rc *releaseContext) error {
	if err := rc.vcs.Fetch(ctx); err != nil {
		return err
	}
	return rc.vcs.Checkout(ctx, rc.settings.Mainline)
}

func (it *ReleaseCommand) bumpManifest(ctx context.Context, rc *releaseContext) error {
	manifest, err := it.manifests.Load(ctx, rc.settings.WorkDir, rc.settings.Manifests)
	if err != nil {
		return err
	}
	rc.manifest = manifest

	current := manifest.Get(repositories.FieldVersion)
	version, err := rc.target.Resolve(current, rc.settings.PreID)
	if err != nil {
		return err
	}

	rc.release.Name = manifest.Get(repositories.FieldName)
	rc.release.PreviousVersion = current
	rc.release.Version = version
	rc.release.Tag = rc.settings.TagPrefix + version

	log.Info(support.Prefix(fmt.Sprintf("Bumping packages to %s", support.Accent(version))))
	if err = manifest.Set(repositories.FieldVersion, version); err != nil {
		return err
	}
	if err = manifest.Write(); err != nil {
		return err
	}
	rc.release.ManifestPaths = manifest.Paths()
	return nil
}

func (it *ReleaseCommand) commitManifest(ctx context.Context, rc *releaseContext) error {
	if err := rc.vcs.Add(ctx, rc.release.ManifestPaths...); err != nil {
		return err
	}
	message := entities.RenderMessage(rc.settings.Messages.Release, rc.release.Name, rc.release.Version)
	return rc.vcs.Commit(ctx, message)
}

func (it *ReleaseCommand) buildBundle(ctx context.Context, rc *releaseContext) error {
	name := rc.release.Name
	entryPoint := rc.manifest.Get(repositories.FieldMain)
	if name == "" {
		return errors.Wrapf(ErrManifestFieldMissing, "%s", repositories.FieldName)
	}
	if entryPoint == "" {
		return errors.Wrapf(ErrManifestFieldMissing, "%s", repositories.FieldMain)
	}

	releaseDir := filepath.Join(rc.settings.WorkDir, rc.settings.ReleaseDir)
	if err := support.EnsureDir(releaseDir); err != nil {
		return err
	}

	rc.release.Artifact = filepath.Join(rc.settings.ReleaseDir, filepath.Base(name)+".js")
	log.Infof("Bundling %s into %s", entryPoint, rc.release.Artifact)
	return it.bundler.Bundle(ctx, repositories.BundleRequest{
		WorkDir:    rc.settings.WorkDir,
		EntryPoint: entryPoint,
		GlobalName: name,
		Output:     rc.release.Artifact,
		Options:    rc.settings.Bundle,
	})
}

func (it *ReleaseCommand) commitBundle(ctx context.Context, rc *releaseContext) error {
	if err := rc.vcs.Add(ctx, rc.release.Artifact); err != nil {
		return err
	}
	message := entities.RenderMessage(rc.settings.Messages.Bundle, rc.release.Name, rc.release.Version)
	return rc.vcs.Commit(ctx, message)
}

func (it *ReleaseCommand) tagRelease(ctx context.Context, rc *releaseContext) error {
	message := entities.RenderMessage(rc.settings.Messages.Release, rc.release.Name, rc.release.Version)
	return rc.vcs.Tag(ctx, rc.release.Tag, message)
}

// releaseScratchBranch restores the mainline and deletes the scratch branch.
// It runs with a fresh context so an interrupted run still cleans up.
func (it *ReleaseCommand) releaseScratchBranch(rc *releaseContext, branch string) error {
	ctx := context.Background()

	if err := rc.vcs.Checkout(ctx, rc.settings.Mainline); err != nil {
		return errors.Wrapf(err, "failed to restore branch '%s'", rc.settings.Mainline)
	}
	if err := rc.vcs.DeleteBranch(ctx, branch); err != nil {
		return errors.Wrapf(err, "failed to delete scratch branch '%s'", branch)
	}
	return nil
}
