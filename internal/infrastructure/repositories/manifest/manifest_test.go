//go:build unit

package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/publicist/internal/domain/entities"
	"github.com/rios0rios0/publicist/internal/domain/repositories"
	"github.com/rios0rios0/publicist/internal/infrastructure/repositories/manifest"
)

const packageJSON = `{
  "name": "widget",
  "version": "1.2.3",
  "description": "A small widget",
  "main": "index.js",
  "scripts": {
    "test": "tape test/*.js"
  }
}
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func newRepository() *manifest.Repository {
	return manifest.NewRepository(manifest.NewDefaultCodecRegistry())
}

func TestRepository_Load(t *testing.T) {
	t.Parallel()

	t.Run("should read the fields of the primary manifest", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", packageJSON)
		writeFile(t, dir, "bower.json", `{"name": "widget-bower", "version": "0.0.1"}`)

		// when
		loaded, err := newRepository().Load(context.Background(), dir, entities.NewDefaultSettings().Manifests)

		// then
		require.NoError(t, err)
		assert.Equal(t, "widget", loaded.Get(repositories.FieldName))
		assert.Equal(t, "1.2.3", loaded.Get(repositories.FieldVersion))
		assert.Equal(t, "index.js", loaded.Get(repositories.FieldMain))
		assert.Equal(t, []string{"package.json", "bower.json"}, loaded.Paths())
	})

	t.Run("should skip a missing optional manifest", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", packageJSON)

		// when
		loaded, err := newRepository().Load(context.Background(), dir, entities.NewDefaultSettings().Manifests)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"package.json"}, loaded.Paths())
	})

	t.Run("should fail when a required manifest is missing", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		_, err := newRepository().Load(context.Background(), dir, entities.NewDefaultSettings().Manifests)

		// then
		require.ErrorIs(t, err, manifest.ErrManifestNotFound)
	})

	t.Run("should fail when no manifest could be loaded", func(t *testing.T) {
		t.Parallel()

		// given
		files := []entities.ManifestFile{{Path: "bower.json", Optional: true}}

		// when
		_, err := newRepository().Load(context.Background(), t.TempDir(), files)

		// then
		require.ErrorIs(t, err, manifest.ErrNoManifestLoaded)
	})

	t.Run("should fail on malformed JSON", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "widget",`)

		// when
		_, err := newRepository().Load(context.Background(), dir, []entities.ManifestFile{{Path: "package.json"}})

		// then
		require.ErrorIs(t, err, manifest.ErrMalformedManifest)
	})

	t.Run("should fail when the JSON root is not an object", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `["widget"]`)

		// when
		_, err := newRepository().Load(context.Background(), dir, []entities.ManifestFile{{Path: "package.json"}})

		// then
		require.ErrorIs(t, err, manifest.ErrMalformedManifest)
	})

	t.Run("should fail on an unsupported extension", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "Cargo.toml", "[package]\nname = \"widget\"\n")

		// when
		_, err := newRepository().Load(context.Background(), dir, []entities.ManifestFile{{Path: "Cargo.toml"}})

		// then
		require.ErrorIs(t, err, manifest.ErrUnsupportedFormat)
	})
}

func TestManifest_SetAndWrite(t *testing.T) {
	t.Parallel()

	t.Run("should update the version in every JSON manifest and keep everything else", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", packageJSON)
		writeFile(t, dir, "bower.json", "{\n  \"name\": \"widget\",\n  \"version\": \"1.2.3\"\n}\n")
		loaded, err := newRepository().Load(context.Background(), dir, entities.NewDefaultSettings().Manifests)
		require.NoError(t, err)

		// when
		require.NoError(t, loaded.Set(repositories.FieldVersion, "1.2.4"))
		err = loaded.Write()

		// then
		require.NoError(t, err)
		assert.Equal(t, `{
  "name": "widget",
  "version": "1.2.4",
  "description": "A small widget",
  "main": "index.js",
  "scripts": {
    "test": "tape test/*.js"
  }
}
`, readFile(t, dir, "package.json"))
		assert.Equal(t, "{\n  \"name\": \"widget\",\n  \"version\": \"1.2.4\"\n}\n", readFile(t, dir, "bower.json"))
	})

	t.Run("should add the version when the manifest has none", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "widget"}`)
		loaded, err := newRepository().Load(context.Background(), dir, []entities.ManifestFile{{Path: "package.json"}})
		require.NoError(t, err)

		// when
		require.NoError(t, loaded.Set(repositories.FieldVersion, "0.1.0"))
		require.NoError(t, loaded.Write())

		// then
		reloaded, err := newRepository().Load(context.Background(), dir, []entities.ManifestFile{{Path: "package.json"}})
		require.NoError(t, err)
		assert.Equal(t, "0.1.0", reloaded.Get(repositories.FieldVersion))
		assert.Equal(t, "widget", reloaded.Get(repositories.FieldName))
	})

	t.Run("should update a YAML manifest keeping key order and comments", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.yaml", "# widget package\nname: widget\nversion: 1.2.3\nmain: index.js\n")
		files := []entities.ManifestFile{{Path: "package.yaml"}}
		loaded, err := newRepository().Load(context.Background(), dir, files)
		require.NoError(t, err)
		assert.Equal(t, "1.2.3", loaded.Get(repositories.FieldVersion))

		// when
		require.NoError(t, loaded.Set(repositories.FieldVersion, "1.3.0"))
		err = loaded.Write()

		// then
		require.NoError(t, err)
		assert.Equal(t, "# widget package\nname: widget\nversion: 1.3.0\nmain: index.js\n", readFile(t, dir, "package.yaml"))
	})

	t.Run("should fail on a YAML manifest that is not a mapping", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		writeFile(t, dir, "package.yml", "- widget\n- 1.2.3\n")

		// when
		_, err := newRepository().Load(context.Background(), dir, []entities.ManifestFile{{Path: "package.yml"}})

		// then
		require.ErrorIs(t, err, manifest.ErrMalformedManifest)
	})
}
