package form

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *FilesystemRepository {
	t.Helper()
	repo, err := NewFilesystemRepository(filepath.Join(t.TempDir(), "forms"), quiet)
	require.NoError(t, err)
	return repo
}

func TestFilesystemRepository_SaveLoad(t *testing.T) {
	repo := newRepo(t)
	def, err := Parse([]byte(invoiceYAML))
	require.NoError(t, err)

	require.NoError(t, repo.Save(def))
	assert.FileExists(t, filepath.Join(repo.Dir(), "invoice.yaml"))
	assert.NoFileExists(t, filepath.Join(repo.Dir(), "invoice.yaml.tmp"))

	loaded, err := repo.Load("invoice")
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)
	assert.Len(t, loaded.Fields, 3)
	assert.Equal(t, def.Computed, loaded.Computed)
}

func TestFilesystemRepository_List(t *testing.T) {
	repo := newRepo(t)

	for _, name := range []string{"zeta", "alpha"} {
		require.NoError(t, repo.Save(&Definition{Name: name, Fields: []FieldSpec{{ID: "x"}}}))
	}
	// ignored: wrong extension, directory, broken file
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(repo.Dir(), "sub.yaml"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "broken.yaml"), []byte("name: [\n"), 0644))

	defs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zeta", defs[1].Name)
}

func TestFilesystemRepository_Delete(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Save(&Definition{Name: "gone", Fields: []FieldSpec{{ID: "x"}}}))

	require.NoError(t, repo.Delete("gone"))
	_, err := repo.Load("gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete("gone"), ErrNotFound)
}

func TestFilesystemRepository_Errors(t *testing.T) {
	repo := newRepo(t)

	assert.Error(t, repo.Save(nil))
	assert.Error(t, repo.Save(&Definition{Name: "empty"}), "invalid definitions are not saved")

	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		_, err := repo.Load(name)
		assert.Error(t, err, "name %q", name)
	}

	_, err := NewFilesystemRepository("", nil)
	assert.Error(t, err)
}
