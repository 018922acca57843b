package manifest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
)

var (
	ErrManifestNotFound  = errors.New("manifest not found")
	ErrMalformedManifest = errors.New("malformed manifest")
	ErrNoManifestLoaded  = errors.New("no manifest loaded")
)

// Document is one manifest file held in memory.
type Document interface {
	Get(field string) string
	Set(field, value string) error
	Bytes() ([]byte, error)
}

// loadedDocument keeps a document together with where it came from.
type loadedDocument struct {
	Document
	path     string
	fullPath string
	mode     os.FileMode
}

// Manifest is a set of package description documents edited together.
type Manifest struct {
	documents []loadedDocument
}

// Get reads a field from the primary (first) document.
func (m *Manifest) Get(field string) string {
	return m.documents[0].Get(field)
}

// Set writes the field into every document.
func (m *Manifest) Set(field, value string) error {
	for _, doc := range m.documents {
		if err := doc.Set(field, value); err != nil {
			return errors.Wrapf(err, "could not set %s in %s", field, doc.path)
		}
	}
	return nil
}

// Write persists every document, keeping its original file mode.
func (m *Manifest) Write() error {
	for _, doc := range m.documents {
		data, err := doc.Bytes()
		if err != nil {
			return errors.Wrapf(err, "could not encode %s", doc.path)
		}

		log.Infof("Writing manifest %s", doc.path)
		if err = os.WriteFile(doc.fullPath, data, doc.mode); err != nil {
			return errors.Wrapf(err, "could not write %s", doc.path)
		}
	}
	return nil
}

// Paths lists the loaded files, as they were configured.
func (m *Manifest) Paths() []string {
	return lo.Map(m.documents, func(doc loadedDocument, _ int) string {
		return doc.path
	})
}

// Repository loads manifests through the codec registered for their extension.
type Repository struct {
	codecs *CodecRegistry
}

// NewRepository creates a manifest repository.
func NewRepository(codecs *CodecRegistry) *Repository {
	return &Repository{codecs: codecs}
}

// Load implements repositories.ManifestRepository.
func (it *Repository) Load(
	_ context.Context,
	dir string,
	files []entities.ManifestFile,
) (repositories.Manifest, error) {
	manifest := &Manifest{}

	for _, file := range files {
		fullPath := file.Path
		if !filepath.IsAbs(fullPath) {
			fullPath = filepath.Join(dir, file.Path)
		}

		info, err := os.Stat(fullPath)
		if os.IsNotExist(err) {
			if file.Optional {
				log.Debugf("Optional manifest %s does not exist, skipping", file.Path)
				continue
			}
			return nil, errors.Wrapf(ErrManifestNotFound, "%s", file.Path)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not inspect %s", file.Path)
		}

		decode, err := it.codecs.Get(file.Path)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read %s", file.Path)
		}

		doc, err := decode(data)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", file.Path)
		}

		log.Infof("Loaded manifest %s", file.Path)
		manifest.documents = append(manifest.documents, loadedDocument{
			Document: doc,
			path:     file.Path,
			fullPath: fullPath,
			mode:     info.Mode().Perm(),
		})
	}

	if len(manifest.documents) == 0 {
		return nil, ErrNoManifestLoaded
	}
	return manifest, nil
}
