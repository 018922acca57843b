//go:build unit

package git_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/cockroachdb/errors"
	"github.com/go-faker/faker/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/publicist/internal/domain/commands"
	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/publicist/internal/infrastructure/repositories/manifest"
	"github.com/rios0rios0/publicist/test/domain/doubles"
	"github.com/rios0rios0/publicist/test/domain/entitybuilders"
)

const packageJSON = `{
  "name": "widget",
  "version": "1.2.3",
  "main": "index.js"
}
`

// initPackageRepo creates a repository with one commit holding a package on master.
func initPackageRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(packageJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("module.exports = 42;\n"), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("package.json")
	require.NoError(t, err)
	_, err = worktree.Add("index.js")
	require.NoError(t, err)
	_, err = worktree.Commit("Initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: faker.Name(), Email: faker.Email(), When: time.Now()},
	})
	require.NoError(t, err)

	return dir, repo
}

func newSettings(dir string) *entities.Settings {
	return entitybuilders.NewSettingsBuilder().
		WithWorkDir(dir).
		WithAuthor(faker.Name(), faker.Email()).
		WithSigning(entities.SigningNever).
		Build()
}

func openRepository(t *testing.T, dir string) *git.Repository {
	t.Helper()

	repository, err := git.OpenRepository(context.Background(), newSettings(dir))
	require.NoError(t, err)
	return repository
}

func headCommit(t *testing.T, repo *gogit.Repository) *object.Commit {
	t.Helper()

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	return commit
}

// writeSigningKey generates an unencrypted GPG key and stores it armored in a temporary file.
func writeSigningKey(t *testing.T) string {
	t.Helper()

	entity, err := openpgp.NewEntity(faker.Name(), "release signing", faker.Email(), nil)
	require.NoError(t, err)

	var buffer bytes.Buffer
	writer, err := armor.Encode(&buffer, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.SerializePrivate(writer, nil))
	require.NoError(t, writer.Close())

	path := filepath.Join(t.TempDir(), "signing.asc")
	require.NoError(t, os.WriteFile(path, buffer.Bytes(), 0o600))
	return path
}

func newReleaseCommand(bundler *doubles.BundlerStub) *commands.ReleaseCommand {
	return commands.NewReleaseCommand(
		git.NewProvider(),
		manifest.NewRepository(manifest.NewDefaultCodecRegistry()),
		bundler,
	)
}

func TestReleaseCommand_WithGitRepository(t *testing.T) {
	t.Parallel()

	t.Run("should commit, tag and remove the scratch branch", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initPackageRepo(t)
		target, err := entities.ParseTarget("patch")
		require.NoError(t, err)

		// when
		release, err := newReleaseCommand(&doubles.BundlerStub{WriteOutput: true}).
			Execute(context.Background(), newSettings(dir), target)

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.2.4", release.Version)

		head, err := repo.Head()
		require.NoError(t, err)
		assert.Equal(t, plumbing.NewBranchReferenceName(entities.DefaultMainline), head.Name())
		assert.Equal(t, "Release v1.2.4", headCommit(t, repo).Message)

		_, err = repo.Reference(plumbing.NewBranchReferenceName(release.ScratchBranch), false)
		require.ErrorIs(t, err, plumbing.ErrReferenceNotFound)

		tag, err := repo.Tag("v1.2.4")
		require.NoError(t, err)
		tagged, err := repo.CommitObject(tag.Hash())
		require.NoError(t, err)
		assert.Equal(t, "v1.2.4 UMD bundle", tagged.Message)
		_, err = tagged.File(filepath.ToSlash(release.Artifact))
		require.NoError(t, err)

		parent, err := tagged.Parent(0)
		require.NoError(t, err)
		assert.Equal(t, head.Hash(), parent.Hash)

		data, err := os.ReadFile(filepath.Join(dir, "package.json"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"version": "1.2.4"`)
	})

	t.Run("should sign the commits and create an annotated signed tag", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initPackageRepo(t)
		settings := newSettings(dir)
		settings.Signing = entities.SigningAlways
		settings.GpgKeyPath = writeSigningKey(t)
		target, err := entities.ParseTarget("patch")
		require.NoError(t, err)

		// when
		_, err = newReleaseCommand(&doubles.BundlerStub{WriteOutput: true}).
			Execute(context.Background(), settings, target)

		// then
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(headCommit(t, repo).PGPSignature, "-----BEGIN PGP SIGNATURE-----"))

		ref, err := repo.Tag("v1.2.4")
		require.NoError(t, err)
		tag, err := repo.TagObject(ref.Hash())
		require.NoError(t, err)
		assert.Equal(t, "Release v1.2.4", strings.TrimSpace(tag.Message))
		assert.NotEmpty(t, tag.PGPSignature)
		assert.Equal(t, settings.Author.Name, tag.Tagger.Name)

		tagged, err := tag.Commit()
		require.NoError(t, err)
		assert.Equal(t, "v1.2.4 UMD bundle", tagged.Message)
		assert.NotEmpty(t, tagged.PGPSignature)
	})

	t.Run("should restore the mainline and delete the scratch branch when bundling fails", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initPackageRepo(t)
		bundleErr := errors.New(faker.Sentence())
		target, err := entities.ParseTarget("minor")
		require.NoError(t, err)

		// when
		release, err := newReleaseCommand(&doubles.BundlerStub{Err: bundleErr}).
			Execute(context.Background(), newSettings(dir), target)

		// then
		require.ErrorIs(t, err, bundleErr)
		assert.Nil(t, release)

		head, err := repo.Head()
		require.NoError(t, err)
		assert.Equal(t, plumbing.NewBranchReferenceName(entities.DefaultMainline), head.Name())

		branches, err := repo.Branches()
		require.NoError(t, err)
		var names []string
		require.NoError(t, branches.ForEach(func(ref *plumbing.Reference) error {
			names = append(names, ref.Name().Short())
			return nil
		}))
		assert.Equal(t, []string{entities.DefaultMainline}, names)

		_, err = repo.Tag("v1.3.0")
		require.ErrorIs(t, err, gogit.ErrTagNotFound)
	})
}

func TestRepository(t *testing.T) {
	t.Parallel()

	t.Run("should skip the fetch when the remote is not configured", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		repository := openRepository(t, dir)

		// when
		err := repository.Fetch(context.Background())

		// then
		require.NoError(t, err)
	})

	t.Run("should refuse to create a branch that already exists", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		repository := openRepository(t, dir)

		// when
		err := repository.CheckoutNew(context.Background(), entities.DefaultMainline)

		// then
		require.ErrorIs(t, err, git.ErrBranchExists)
	})

	t.Run("should fail to check out an unknown branch", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		repository := openRepository(t, dir)

		// when
		err := repository.Checkout(context.Background(), faker.Word()+"-missing")

		// then
		require.ErrorIs(t, err, git.ErrBranchNotFound)
	})

	t.Run("should refuse to delete the checked out branch", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		repository := openRepository(t, dir)
		require.NoError(t, repository.CheckoutNew(context.Background(), "release-scratch"))

		// when
		err := repository.DeleteBranch(context.Background(), "release-scratch")

		// then
		require.ErrorIs(t, err, git.ErrBranchCheckedOut)
	})

	t.Run("should delete a branch after switching away from it", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initPackageRepo(t)
		repository := openRepository(t, dir)
		require.NoError(t, repository.CheckoutNew(context.Background(), "release-scratch"))
		require.NoError(t, repository.Checkout(context.Background(), entities.DefaultMainline))

		// when
		err := repository.DeleteBranch(context.Background(), "release-scratch")

		// then
		require.NoError(t, err)
		exists, existsErr := git.CheckBranchExists(repo, "release-scratch")
		require.NoError(t, existsErr)
		assert.False(t, exists)
	})

	t.Run("should report a missing branch on delete", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		repository := openRepository(t, dir)

		// when
		err := repository.DeleteBranch(context.Background(), "release-gone")

		// then
		require.ErrorIs(t, err, git.ErrBranchNotFound)
	})

	t.Run("should refuse to stage a path outside the repository", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		repository := openRepository(t, dir)

		// when
		err := repository.Add(context.Background(), filepath.Join("..", "outside.js"))

		// then
		require.ErrorIs(t, err, git.ErrOutsideRepository)
	})

	t.Run("should commit with the configured author and create a lightweight tag", func(t *testing.T) {
		t.Parallel()

		// given
		dir, repo := initPackageRepo(t)
		settings := newSettings(dir)
		repository, err := git.OpenRepository(context.Background(), settings)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGES"), []byte("notes\n"), 0o644))

		// when
		require.NoError(t, repository.Add(context.Background(), "CHANGES"))
		require.NoError(t, repository.Commit(context.Background(), "Add notes"))
		err = repository.Tag(context.Background(), "v9.9.9", "Release v9.9.9")

		// then
		require.NoError(t, err)
		commit := headCommit(t, repo)
		assert.Equal(t, "Add notes", commit.Message)
		assert.Equal(t, settings.Author.Name, commit.Author.Name)
		assert.Equal(t, settings.Author.Email, commit.Author.Email)

		tag, err := repo.Tag("v9.9.9")
		require.NoError(t, err)
		assert.Equal(t, commit.Hash, tag.Hash())
	})

	t.Run("should open the repository from a nested directory", func(t *testing.T) {
		t.Parallel()

		// given
		dir, _ := initPackageRepo(t)
		nested := filepath.Join(dir, "packages", "widget")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		// when
		_, err := git.OpenRepository(context.Background(), newSettings(nested))

		// then
		require.NoError(t, err)
	})
}
