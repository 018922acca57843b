//go:build integration || unit || test

package doubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
)

// ManifestStub is an in-memory manifest.
type ManifestStub struct {
	Fields   map[string]string
	Files    []string
	Writes   int
	WriteErr error
}

func (m *ManifestStub) Get(field string) string {
	return m.Fields[field]
}

func (m *ManifestStub) Set(field, value string) error {
	m.Fields[field] = value
	return nil
}

func (m *ManifestStub) Write() error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes++
	return nil
}

func (m *ManifestStub) Paths() []string {
	return m.Files
}

// ManifestRepositoryStub always loads the same manifest.
type ManifestRepositoryStub struct {
	Manifest *ManifestStub
	Err      error
	Loads    int
}

// NewManifestRepositoryStub creates a repository holding a manifest with the given fields.
func NewManifestRepositoryStub(name, version, main string) *ManifestRepositoryStub {
	return &ManifestRepositoryStub{
		Manifest: &ManifestStub{
			Fields: map[string]string{
				repositories.FieldName:    name,
				repositories.FieldVersion: version,
				repositories.FieldMain:    main,
			},
			Files: []string{"package.json"},
		},
	}
}

func (r *ManifestRepositoryStub) Load(
	_ context.Context,
	_ string,
	_ []entities.ManifestFile,
) (repositories.Manifest, error) {
	r.Loads++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Manifest, nil
}
