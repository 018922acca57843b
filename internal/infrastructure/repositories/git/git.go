package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
	"github.com/rios0rios0/publicist/internal/support"
)

var (
	ErrBranchExists      = errors.New("branch already exists")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrBranchCheckedOut  = errors.New("cannot delete the checked out branch")
	ErrOutsideRepository = errors.New("path is outside the repository")
)

// tokenUsername is accepted by GitHub, GitLab and Azure DevOps for token based basic auth.
const tokenUsername = "oauth2"

// Provider opens go-git repositories.
type Provider struct{}

// NewProvider creates a new Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Open implements repositories.VersionControlProvider.
func (it *Provider) Open(ctx context.Context, settings *entities.Settings) (repositories.VersionControl, error) {
	return OpenRepository(ctx, settings)
}

// Repository runs the release commands against a go-git repository.
type Repository struct {
	repo     *git.Repository
	worktree *git.Worktree
	root     string
	workDir  string
	remote   string
	auth     transport.AuthMethod
	author   *entities.Author
	signKey  *openpgp.Entity
}

// OpenRepository opens the repository containing the settings' working directory.
func OpenRepository(ctx context.Context, settings *entities.Settings) (*Repository, error) {
	workDir, err := filepath.Abs(settings.WorkDir)
	if err != nil {
		return nil, errors.Wrap(err, "could not resolve working directory")
	}

	repo, err := OpenRepo(workDir)
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "could not get worktree")
	}

	it := &Repository{
		repo:     repo,
		worktree: worktree,
		root:     worktree.Filesystem.Root(),
		workDir:  workDir,
		remote:   settings.Remote,
	}

	if settings.Author.Name != "" {
		author := settings.Author
		it.author = &author
	}

	if settings.AccessToken != "" {
		it.auth = &http.BasicAuth{
			Username: tokenUsername,
			Password: settings.AccessToken,
		}
	}

	it.signKey, err = resolveSignKey(ctx, repo, settings)
	if err != nil {
		return nil, err
	}

	return it, nil
}

// OpenRepo opens a git repository at the given path or one of its parents.
func OpenRepo(projectPath string) (*git.Repository, error) {
	log.Infof("Opening repository at %s", projectPath)
	repo, err := git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrap(err, "could not open repository")
	}
	return repo, nil
}

// Fetch updates the remote-tracking references. A repository without the configured remote has nothing to fetch.
func (it *Repository) Fetch(ctx context.Context) error {
	remote, err := it.repo.Remote(it.remote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		log.Warnf("Remote '%s' not found, skipping fetch", it.remote)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "could not get remote '%s'", it.remote)
	}

	options := &git.FetchOptions{RemoteName: it.remote}
	if urls := remote.Config().URLs; len(urls) > 0 && isHTTPURL(urls[0]) {
		options.Auth = it.auth
	}

	log.Infof("Fetching from remote '%s' (%s)", it.remote, support.StripUsernameFromURL(firstURL(remote)))
	err = remote.FetchContext(ctx, options)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errors.Wrapf(err, "could not fetch from '%s'", it.remote)
	}
	return nil
}

// Checkout switches to an existing branch, creating it from the remote-tracking branch when only that exists.
func (it *Repository) Checkout(_ context.Context, branch string) error {
	exists, err := CheckBranchExists(it.repo, branch)
	if err != nil {
		return err
	}

	if !exists {
		remoteRef, refErr := it.repo.Reference(plumbing.NewRemoteReferenceName(it.remote, branch), true)
		if refErr != nil {
			return errors.Wrapf(ErrBranchNotFound, "%s", branch)
		}
		return CreateAndSwitchBranch(it.repo, it.worktree, branch, remoteRef.Hash())
	}

	return CheckoutBranch(it.worktree, branch)
}

// CheckoutNew creates a branch at HEAD and switches to it.
func (it *Repository) CheckoutNew(_ context.Context, branch string) error {
	exists, err := CheckBranchExists(it.repo, branch)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrBranchExists, "%s", branch)
	}

	head, err := it.repo.Head()
	if err != nil {
		return errors.Wrap(err, "could not get repo HEAD")
	}

	return CreateAndSwitchBranch(it.repo, it.worktree, branch, head.Hash())
}

// Add stages the given paths, relative to the working directory or absolute.
func (it *Repository) Add(_ context.Context, paths ...string) error {
	for _, path := range lo.Uniq(paths) {
		relative, err := it.relativeToRoot(path)
		if err != nil {
			return err
		}

		log.Infof("Adding file %s", relative)
		if _, err = it.worktree.Add(relative); err != nil {
			return errors.Wrapf(err, "could not add %s", relative)
		}
	}
	return nil
}

// Commit records the staged changes.
func (it *Repository) Commit(_ context.Context, message string) error {
	hash, err := CommitChanges(it.worktree, message, it.signature(), it.signKey)
	if err != nil {
		return err
	}
	log.Debugf("Created commit %s", hash)
	return nil
}

// DeleteBranch removes a local branch that is not checked out.
func (it *Repository) DeleteBranch(_ context.Context, branch string) error {
	name := plumbing.NewBranchReferenceName(branch)
	if _, err := it.repo.Reference(name, false); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return errors.Wrapf(ErrBranchNotFound, "%s", branch)
		}
		return errors.Wrap(err, "could not read branch reference")
	}

	head, err := it.repo.Head()
	if err == nil && head.Name() == name {
		return errors.Wrapf(ErrBranchCheckedOut, "%s", branch)
	}

	log.Infof("Deleting branch '%s'", branch)
	if err = it.repo.Storer.RemoveReference(name); err != nil {
		return errors.Wrap(err, "could not delete branch")
	}

	// tracking configuration only exists for branches that were pushed or pulled
	if err = it.repo.DeleteBranch(branch); err != nil && !errors.Is(err, git.ErrBranchNotFound) {
		return errors.Wrap(err, "could not delete branch configuration")
	}
	return nil
}

// Tag points a tag at HEAD. The tag is annotated and signed when a signing key is available.
func (it *Repository) Tag(_ context.Context, name, message string) error {
	head, err := it.repo.Head()
	if err != nil {
		return errors.Wrap(err, "could not get repo HEAD")
	}

	var options *git.CreateTagOptions
	if it.signKey != nil {
		options = &git.CreateTagOptions{
			Tagger:  it.signature(),
			Message: message,
			SignKey: it.signKey,
		}
	}

	log.Infof("Tagging %s as '%s'", head.Hash().String()[:7], name)
	if _, err = it.repo.CreateTag(name, head.Hash(), options); err != nil {
		return errors.Wrapf(err, "could not create tag '%s'", name)
	}
	return nil
}

func (it *Repository) signature() *object.Signature {
	if it.author == nil {
		return nil // go-git falls back to the user section of the git config
	}
	return &object.Signature{
		Name:  it.author.Name,
		Email: it.author.Email,
		When:  time.Now(),
	}
}

func (it *Repository) relativeToRoot(path string) (string, error) {
	absolute := path
	if !filepath.IsAbs(absolute) {
		absolute = filepath.Join(it.workDir, path)
	}

	relative, err := filepath.Rel(it.root, absolute)
	if err != nil {
		return "", errors.Wrapf(err, "could not get relative path for %s", path)
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrOutsideRepository, "%s", path)
	}
	return filepath.ToSlash(relative), nil
}

// GetGlobalGitConfig reads the global git configuration file. A missing file yields an empty configuration.
func GetGlobalGitConfig() (cfg *config.Config, err error) {
	cfg = config.NewConfig()

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return cfg, nil //nolint:nilerr // no home directory means no global configuration
	}

	configBytes, err := os.ReadFile(filepath.Join(homeDir, ".gitconfig"))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read global git config")
	}

	// Recover from panics in go-git's Config.Unmarshal (known bug with certain git configs)
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("go-git panicked while parsing git config (known bug), using minimal config: %v", r)
			cfg, err = config.NewConfig(), nil
		}
	}()

	if err = cfg.Unmarshal(configBytes); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal global git config")
	}

	return cfg, nil
}

// GetOptionFromConfig gets a Git option from local and global Git config.
func GetOptionFromConfig(cfg, globalCfg *config.Config, section string, option string) string {
	opt := cfg.Raw.Section(section).Option(option)
	if opt == "" {
		opt = globalCfg.Raw.Section(section).Option(option)
	}
	return opt
}

// CheckBranchExists checks if a given local Git branch exists.
func CheckBranchExists(repo *git.Repository, branchName string) (bool, error) {
	_, err := repo.Reference(plumbing.NewBranchReferenceName(branchName), false)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "could not check if branch exists")
	}
	return true, nil
}

// CreateAndSwitchBranch creates a new branch and switches to it.
func CreateAndSwitchBranch(
	repo *git.Repository,
	workTree *git.Worktree,
	branchName string,
	hash plumbing.Hash,
) error {
	log.Infof("Creating and switching to new branch '%s'", branchName)
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branchName), hash)
	if err := repo.Storer.SetReference(ref); err != nil {
		return errors.Wrap(err, "could not create branch")
	}

	return CheckoutBranch(workTree, branchName)
}

// CheckoutBranch switches to the given branch.
func CheckoutBranch(w *git.Worktree, branchName string) error {
	log.Infof("Switching to branch '%s'", branchName)
	err := w.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branchName),
	})
	if err != nil {
		return errors.Wrapf(err, "could not checkout branch '%s'", branchName)
	}
	return nil
}

// CommitChanges commits the staged changes in the given worktree.
func CommitChanges(
	workTree *git.Worktree,
	commitMessage string,
	author *object.Signature,
	signKey *openpgp.Entity,
) (plumbing.Hash, error) {
	log.Infof("Committing changes: %s", commitMessage)

	commit, err := workTree.Commit(commitMessage, &git.CommitOptions{
		Author:  author,
		SignKey: signKey,
	})
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(err, "could not commit changes")
	}
	return commit, nil
}

func firstURL(remote *git.Remote) string {
	if urls := remote.Config().URLs; len(urls) > 0 {
		return urls[0]
	}
	return ""
}

func isHTTPURL(url string) bool {
	return strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://")
}
