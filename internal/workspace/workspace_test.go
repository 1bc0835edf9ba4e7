package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tetherharness/internal/shared/logging"
)

func TestNew_CreatesInputDir(t *testing.T) {
	ws, err := New(t.TempDir(), logging.NewNopLogger())
	require.NoError(t, err)
	defer ws.Teardown()

	info, err := os.Stat(ws.InputDir())
	require.NoError(t, err)
	require.True(t, info.IsDir())

	// The output directory belongs to the worker; it must not exist yet.
	_, err = os.Stat(ws.OutputDir())
	require.True(t, os.IsNotExist(err))

	require.Equal(t, filepath.Join(ws.InputDir(), "lines.avro"), ws.InputFile("lines.avro"))
}

func TestNew_UniquePaths(t *testing.T) {
	root := t.TempDir()

	first, err := New(root, logging.NewNopLogger())
	require.NoError(t, err)
	defer first.Teardown()

	second, err := New(root, logging.NewNopLogger())
	require.NoError(t, err)
	defer second.Teardown()

	require.NotEqual(t, first.Base(), second.Base())
}

func TestMaterializeSchema(t *testing.T) {
	ws, err := New(t.TempDir(), logging.NewNopLogger())
	require.NoError(t, err)
	defer ws.Teardown()

	path, err := ws.MaterializeSchema(`"string"`)
	require.NoError(t, err)
	require.Equal(t, ".avsc", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `"string"`, string(data))
}

func TestMaterializeLauncher_Executable(t *testing.T) {
	ws, err := New(t.TempDir(), logging.NewNopLogger())
	require.NoError(t, err)
	defer ws.Teardown()

	path, err := ws.MaterializeLauncher("#!/bin/bash\nexit 0\n")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestTeardown_RemovesEverything(t *testing.T) {
	ws, err := New(t.TempDir(), logging.NewNopLogger())
	require.NoError(t, err)

	schemaPath, err := ws.MaterializeSchema(`"string"`)
	require.NoError(t, err)
	launcherPath, err := ws.MaterializeLauncher("#!/bin/bash\n")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(ws.InputFile("lines.avro"), []byte("data"), 0o644))

	ws.Teardown()

	for _, path := range []string{ws.Base(), schemaPath, launcherPath} {
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err), "expected %s to be removed", path)
	}
}

func TestTeardown_Idempotent(t *testing.T) {
	ws, err := New(t.TempDir(), logging.NewNopLogger())
	require.NoError(t, err)

	ws.Teardown()
	require.NotPanics(t, ws.Teardown)
}
