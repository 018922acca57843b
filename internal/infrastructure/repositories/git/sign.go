package git

import (
	"context"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/support"
)

// resolveSignKey loads the GPG key used to sign commits and tags, or nil when signing is off.
// In "auto" mode the repository follows commit.gpgsign from the local and global git config.
func resolveSignKey(ctx context.Context, repo *git.Repository, settings *entities.Settings) (*openpgp.Entity, error) {
	if settings.Signing == entities.SigningNever {
		return nil, nil
	}

	cfg, err := repo.Config()
	if err != nil {
		return nil, errors.Wrap(err, "could not get repo config")
	}
	globalCfg, err := GetGlobalGitConfig()
	if err != nil {
		return nil, err
	}

	gpgSign := GetOptionFromConfig(cfg, globalCfg, "commit", "gpgsign")
	gpgFormat := GetOptionFromConfig(cfg, globalCfg, "gpg", "format")

	if settings.Signing != entities.SigningAlways && (gpgSign != "true" || gpgFormat == "ssh") {
		return nil, nil
	}

	log.Info("Signing commits with GPG key")
	gpgKeyID := GetOptionFromConfig(cfg, globalCfg, "user", "signingkey")

	var gpgKeyReader io.Reader
	gpgKeyReader, err = support.GetGpgKeyReader(ctx, gpgKeyID, settings.GpgKeyPath)
	if err != nil {
		return nil, err
	}

	return support.GetGpgKey(gpgKeyReader, settings.GpgPassphrase)
}
