package entities

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsFileName is looked up in the working directory when no path is given.
const DefaultSettingsFileName = ".publicist.yaml"

// EnvPrefix namespaces every environment override.
const EnvPrefix = "PUBLICIST_"

const (
	DefaultMainline       = "master"
	DefaultRemote         = "origin"
	DefaultReleaseDir     = "release"
	DefaultTagPrefix      = "v"
	DefaultReleaseMessage = "Release v{version}"
	DefaultBundleMessage  = "v{version} UMD bundle"
	DefaultBundleFormat   = "umd"
)

// Signing modes for commits and tags.
const (
	SigningAuto   = "auto"
	SigningAlways = "always"
	SigningNever  = "never"
)

var (
	ErrSettingsFileNotFound = errors.New("settings file not found")
	ErrSettingsKeyMissing   = errors.New("missing settings key")
	ErrSettingsInvalidValue = errors.New("invalid settings value")
)

// Settings is the whole configuration of a release run.
type Settings struct {
	Mainline    string         `yaml:"mainline"     env:"MAINLINE"`
	Remote      string         `yaml:"remote"       env:"REMOTE"`
	ReleaseDir  string         `yaml:"release_dir"  env:"RELEASE_DIR"`
	TagPrefix   string         `yaml:"tag_prefix"   env:"TAG_PREFIX"`
	Manifests   []ManifestFile `yaml:"manifests"`
	Messages    Messages       `yaml:"messages"`
	Author      Author         `yaml:"author"`
	Bundle      BundleSettings `yaml:"bundle"`
	AccessToken string         `yaml:"access_token" env:"ACCESS_TOKEN"`
	GpgKeyPath  string         `yaml:"gpg_key_path" env:"GPG_KEY_PATH"`
	// Signing is "auto" (follow commit.gpgsign), "always" or "never".
	Signing string `yaml:"signing" env:"SIGNING"`

	// GpgPassphrase is only read from the environment.
	GpgPassphrase string `yaml:"-" env:"GPG_PASSPHRASE"`
	// WorkDir is the directory the run operates in; set from the command line.
	WorkDir string `yaml:"-"`
	// PreID is the prerelease identifier used by the pre* increments.
	PreID string `yaml:"preid" env:"PREID"`
}

// ManifestFile describes one manifest document to load.
type ManifestFile struct {
	Path     string `yaml:"path"`
	Optional bool   `yaml:"optional"`
}

// Messages holds the commit message templates. "{version}" and "{name}" are substituted.
type Messages struct {
	Release string `yaml:"release"`
	Bundle  string `yaml:"bundle"`
}

// Author is the identity used for commits and tags.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// BundleSettings tunes the bundler output.
type BundleSettings struct {
	Format string `yaml:"format"`
	Minify bool   `yaml:"minify"`
	Target string `yaml:"target"`
}

// NewDefaultSettings returns the settings used when nothing is configured.
func NewDefaultSettings() *Settings {
	return &Settings{
		Mainline:   DefaultMainline,
		Remote:     DefaultRemote,
		ReleaseDir: DefaultReleaseDir,
		TagPrefix:  DefaultTagPrefix,
		Manifests: []ManifestFile{
			{Path: "package.json"},
			{Path: "bower.json", Optional: true},
		},
		Messages: Messages{
			Release: DefaultReleaseMessage,
			Bundle:  DefaultBundleMessage,
		},
		Bundle: BundleSettings{
			Format: DefaultBundleFormat,
		},
		Signing: SigningAuto,
	}
}

// ReadSettings reads the settings file on top of the defaults and applies the environment overrides.
// An empty path means "use the defaults".
func ReadSettings(settingsPath string) (*Settings, error) {
	settings := NewDefaultSettings()

	if settingsPath != "" {
		data, err := os.ReadFile(settingsPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(ErrSettingsFileNotFound, "%s", settingsPath)
			}
			return nil, errors.Wrap(err, "failed to read settings")
		}

		if err = DecodeSettings(data, settings); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(settings, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}

	settings.AccessToken = ResolveToken("access", settings.AccessToken)
	return settings, nil
}

// DecodeSettings decodes YAML into settings, rejecting unknown keys.
func DecodeSettings(data []byte, settings *Settings) error {
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	return nil
}

// ValidateSettings reports the keys a release cannot run without.
func ValidateSettings(settings *Settings) error {
	var missingKeys []string

	if settings.Mainline == "" {
		missingKeys = append(missingKeys, "mainline")
	}
	if settings.ReleaseDir == "" {
		missingKeys = append(missingKeys, "release_dir")
	}
	if len(settings.Manifests) == 0 {
		missingKeys = append(missingKeys, "manifests")
	}
	for i, manifest := range settings.Manifests {
		if manifest.Path == "" {
			missingKeys = append(missingKeys, fmt.Sprintf("manifests[%d].path", i))
		}
	}

	switch settings.Signing {
	case SigningAuto, SigningAlways, SigningNever:
	default:
		return errors.Wrapf(ErrSettingsInvalidValue, "signing: %q", settings.Signing)
	}

	if len(missingKeys) > 0 {
		return errors.Wrapf(ErrSettingsKeyMissing, "%s", strings.Join(missingKeys, ", "))
	}
	return nil
}

// FindSettingsOnMissing finds the settings file in the working directory if not manually set.
func FindSettingsOnMissing(settingsPath, workDir string) string {
	if settingsPath != "" {
		return settingsPath
	}

	candidate := filepath.Join(workDir, DefaultSettingsFileName)
	if _, err := os.Stat(candidate); err == nil {
		log.Infof("Using settings file: \"%v\"", candidate)
		return candidate
	}

	log.Debug("No settings file found, using the defaults")
	return ""
}

// ResolveToken expands ${ENV_VAR} references and reads the token from a file when the value is a path.
func ResolveToken(name, raw string) string {
	token := os.ExpandEnv(strings.TrimSpace(raw))
	if token == "" {
		return ""
	}

	if _, err := os.Stat(token); err == nil {
		log.Infof("Reading %s token from file %s", name, token)
		fileToken, readErr := os.ReadFile(token)
		if readErr != nil {
			log.Errorf("failed to read %s token: %v", name, readErr)
			return token
		}
		return strings.TrimSpace(string(fileToken))
	}
	return token
}
