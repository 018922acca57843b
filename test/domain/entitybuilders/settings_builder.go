//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/publicist/internal/domain/entities"
)

// SettingsBuilder helps create test settings with a fluent interface.
type SettingsBuilder struct {
	settings *entities.Settings
}

// NewSettingsBuilder creates a new settings builder starting from the defaults.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{settings: entities.NewDefaultSettings()}
}

// WithWorkDir sets the working directory.
func (b *SettingsBuilder) WithWorkDir(dir string) *SettingsBuilder {
	b.settings.WorkDir = dir
	return b
}

// WithMainline sets the mainline branch.
func (b *SettingsBuilder) WithMainline(branch string) *SettingsBuilder {
	b.settings.Mainline = branch
	return b
}

// WithReleaseDir sets the release directory.
func (b *SettingsBuilder) WithReleaseDir(dir string) *SettingsBuilder {
	b.settings.ReleaseDir = dir
	return b
}

// WithManifests replaces the manifest list.
func (b *SettingsBuilder) WithManifests(files ...entities.ManifestFile) *SettingsBuilder {
	b.settings.Manifests = files
	return b
}

// WithAuthor sets the commit identity.
func (b *SettingsBuilder) WithAuthor(name, email string) *SettingsBuilder {
	b.settings.Author = entities.Author{Name: name, Email: email}
	return b
}

// WithPreID sets the prerelease identifier.
func (b *SettingsBuilder) WithPreID(preid string) *SettingsBuilder {
	b.settings.PreID = preid
	return b
}

// WithSigning sets the signing mode.
func (b *SettingsBuilder) WithSigning(mode string) *SettingsBuilder {
	b.settings.Signing = mode
	return b
}

// Build creates the settings.
func (b *SettingsBuilder) Build() *entities.Settings {
	copied := *b.settings
	copied.Manifests = append([]entities.ManifestFile(nil), b.settings.Manifests...)
	return &copied
}
