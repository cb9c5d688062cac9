package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/run"
)

const diamondJSON = `{
  "runId": "run-1",
  "tasks": [
    {"id": "1", "externalId": "A"},
    {"id": "2", "externalId": "B"},
    {"id": "3", "externalId": "C"},
    {"id": "4", "externalId": "D"}
  ],
  "shape": [
    {"parent": "A", "children": ["B", "C"]},
    {"parent": "B", "children": ["D"]},
    {"parent": "C", "children": ["D"]}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileFetch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.json", diamondJSON)

	q := NewFile(path).Fetch(context.Background())

	snap, ok := q.Snapshot()
	require.True(t, ok, "query state %s: %v", q.State(), q.Err)
	assert.Equal(t, "run-1", snap.RunID)
	assert.Len(t, snap.Tasks, 4)
}

func TestFileFetchErrors(t *testing.T) {
	dir := t.TempDir()

	q := NewFile(filepath.Join(dir, "missing.json")).Fetch(context.Background())
	assert.True(t, q.IsError)
	assert.True(t, errors.Is(q.Err, errors.ErrCodeNotFound), "err = %v", q.Err)

	bad := writeFile(t, dir, "bad.json", `{"tasks": [`)
	q = NewFile(bad).Fetch(context.Background())
	assert.True(t, q.IsError)
	assert.True(t, errors.Is(q.Err, errors.ErrCodeInvalidFormat), "err = %v", q.Err)
}

func TestFileFetchCancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.json", diamondJSON)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewFile(path).Fetch(ctx)
	assert.True(t, q.IsError)
	_, ok := q.Snapshot()
	assert.False(t, ok)
}

func TestStatic(t *testing.T) {
	q := Static(run.Loading()).Fetch(context.Background())
	assert.True(t, q.IsLoading)
	assert.Equal(t, "loading", q.State())
}
