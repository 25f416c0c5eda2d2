package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

func TestOptions_Resolve(t *testing.T) {
	opts, err := Options{ConfigDir: "/tmp/voxqa"}.resolve()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/voxqa", "index"), opts.DataDir)

	opts, err = Options{ConfigDir: "/a", DataDir: "/b"}.resolve()
	require.NoError(t, err)
	assert.Equal(t, "/b", opts.DataDir)
}

func TestOpen_DefaultsToOfflineEmbedder(t *testing.T) {
	dir := t.TempDir()

	a, err := Open(context.Background(), Options{ConfigDir: dir, Validate: true})
	require.NoError(t, err)
	defer a.Close()

	status, err := a.Session.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Ready)
	assert.Equal(t, string(domain.StateUninitialized), status.State)
	assert.Equal(t, filepath.Join(dir, "index"), a.DataDir)
}

func TestOpen_IngestPersistsAndReopens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := Open(ctx, Options{ConfigDir: dir})
	require.NoError(t, err)

	n, err := first.Session.Ingest(ctx, domain.RawDocument{
		URI:     "notes.txt",
		Content: []byte("Testville is a small town.\n\nIt has one bakery and a river."),
	}, domain.IngestOptions{})
	require.NoError(t, err)
	require.Positive(t, n)
	require.NoError(t, first.Close())

	second, err := Open(ctx, Options{ConfigDir: dir})
	require.NoError(t, err)
	defer second.Close()

	status, err := second.Session.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, status.Entries)
	assert.Equal(t, []string{"notes.txt"}, status.Sources)
	assert.Equal(t, "local/hashing-512/512", status.Fingerprint)
}

func TestOpen_PipelineSettingsApply(t *testing.T) {
	dir := t.TempDir()

	settings, err := OpenSettings(dir)
	require.NoError(t, err)
	require.NoError(t, settings.SetValue("retrieval.k", "9"))

	a, err := Open(context.Background(), Options{ConfigDir: dir})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 9, a.Session.Defaults().K)
}
