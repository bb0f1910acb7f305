package filestore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReadDelete(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	name, err := s.Save("Estado Octubre.CSV", strings.NewReader("Fecha;Monto\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".csv"))
	_, err = uuid.Parse(strings.TrimSuffix(name, ".csv"))
	assert.NoError(t, err)

	data, err := s.Read(name)
	require.NoError(t, err)
	assert.Equal(t, "Fecha;Monto\n", string(data))
	assert.FileExists(t, s.FullPath(name))

	require.NoError(t, s.Delete(name))
	assert.NoFileExists(t, s.FullPath(name))
	assert.NoError(t, s.Delete(name))
	assert.NoError(t, s.Delete(""))
}

func TestSave_UniqueNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := s.Save("a.csv", strings.NewReader("1"))
	require.NoError(t, err)
	b, err := s.Save("a.csv", strings.NewReader("2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRead_RejectsPaths(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read("../secret.csv")
	assert.Error(t, err)
	_, err = s.Read("")
	assert.Error(t, err)
	_, err = s.Read("missing.csv")
	assert.ErrorContains(t, err, "read file")
}
