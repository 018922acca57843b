package repositories

import (
	"context"

	"github.com/rios0rios0/publicist/internal/domain/entities"
)

// Manifest fields read and written during a release.
const (
	FieldName    = "name"
	FieldVersion = "version"
	FieldMain    = "main"
)

// Manifest is a set of loaded package description documents.
// Get reads from the first document; Set and Write apply to all of them.
type Manifest interface {
	Get(field string) string
	Set(field, value string) error
	Write() error
	Paths() []string
}

// ManifestRepository loads manifests relative to a directory.
// Optional files that do not exist are skipped; missing or malformed required files fail the load.
type ManifestRepository interface {
	Load(ctx context.Context, dir string, files []entities.ManifestFile) (Manifest, error)
}
