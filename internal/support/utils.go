package support

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var (
	ErrNotADirectory                        = errors.New("path exists and is not a directory")
	ErrCannotFindPrivKey                    = errors.New("cannot find private key")
	ErrCannotFindPrivKeyMatchingFingerprint = errors.New(
		"cannot find private key matching fingerprint",
	)
)

// ScratchBranchPrefix starts every disposable release branch name.
const ScratchBranchPrefix = "release-"

// EnsureDir creates the directory, accepting one that already exists.
// Any other outcome, including a regular file with the same name, is an error.
func EnsureDir(path string) error {
	err := os.Mkdir(path, 0o755)
	if err == nil {
		log.Infof("Created release directory %s", path)
		return nil
	}
	if !os.IsExist(err) {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return errors.Wrapf(statErr, "failed to inspect %s", path)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrNotADirectory, "%s", path)
	}
	return nil
}

// NewScratchBranchName returns a random, collision-free branch name.
func NewScratchBranchName() string {
	return ScratchBranchPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ExportGpgKey exports a GPG key from the keyring to a file.
func ExportGpgKey(ctx context.Context, gpgKeyID string, gpgKeyExportPath string) error {
	// TODO: until today Go is not capable to read the key from the keyring (kbx)
	cmd := exec.CommandContext(
		ctx,
		"gpg",
		"--export-secret-key",
		"--output",
		gpgKeyExportPath,
		"--armor",
		gpgKeyID,
	)
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "failed to execute command GPG")
	}
	return nil
}

// GetGpgKeyReader returns a reader for the GPG key.
func GetGpgKeyReader(ctx context.Context, gpgKeyID string, gpgKeyPath string) (io.Reader, error) {
	// if no key path is provided, try to read the key from the default location
	if gpgKeyPath == "" {
		gpgKeyPath = os.ExpandEnv(fmt.Sprintf("$HOME/.gnupg/publicist-%s.asc", gpgKeyID))
		log.Warnf("No key path provided, attempting to read (%s) at: %s", gpgKeyID, gpgKeyPath)

		if _, err := os.Stat(gpgKeyPath); os.IsNotExist(err) {
			if err = ExportGpgKey(ctx, gpgKeyID, gpgKeyPath); err != nil {
				return nil, err
			}
		}
	}

	gpgKeyData, err := os.ReadFile(gpgKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read private key file")
	}

	return strings.NewReader(string(gpgKeyData)), nil
}

// GetGpgKey returns the GPG key entity read from the given reader.
// When the passphrase is empty it is prompted for on the terminal.
func GetGpgKey(gpgKeyReader io.Reader, passphrase string) (*openpgp.Entity, error) {
	entityList, err := openpgp.ReadArmoredKeyRing(gpgKeyReader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read private key file")
	}
	if len(entityList) == 0 || entityList[0] == nil {
		return nil, ErrCannotFindPrivKeyMatchingFingerprint
	}

	entity := entityList[0]
	if entity.PrivateKey == nil {
		return nil, ErrCannotFindPrivKey
	}

	secret := []byte(passphrase)
	if passphrase == "" && entity.PrivateKey.Encrypted {
		secret, err = readPassphrase()
		if err != nil {
			return nil, err
		}
	}

	if entity.PrivateKey.Encrypted {
		if err = entity.PrivateKey.Decrypt(secret); err != nil {
			return nil, errors.Wrap(err, "failed to decrypt GPG key")
		}
	}

	log.Info("Successfully decrypted GPG key")
	return entity, nil
}

func readPassphrase() ([]byte, error) {
	fmt.Print("Enter the passphrase for your GPG key: ") //nolint:forbidigo // this line is not for debugging
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() //nolint:forbidigo // this line is not for debugging
	// assume the passphrase to be empty if unable to read from the terminal
	if err != nil {
		if strings.TrimSpace(err.Error()) == "inappropriate ioctl for device" {
			return []byte(""), nil
		}
		return nil, errors.Wrap(err, "failed to read passphrase")
	}
	return passphrase, nil
}

// StripUsernameFromURL removes the username from a URL if present.
// For example: https://user@github.com/org/repo -> https://github.com/org/repo
func StripUsernameFromURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "https://") && !strings.HasPrefix(rawURL, "http://") {
		return rawURL
	}

	const skipping = "://"
	schemeEnd := strings.Index(rawURL, skipping) + len(skipping)
	atIndex := strings.Index(rawURL[schemeEnd:], "@")
	if atIndex == -1 {
		return rawURL
	}

	return rawURL[:schemeEnd] + rawURL[schemeEnd+atIndex+1:]
}
