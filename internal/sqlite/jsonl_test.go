package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLFilesCreatedOnAttach(t *testing.T) {
	_, dir := setupBackend(t, "")

	for _, name := range []string{elementsJSONL, propertiesJSONL} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Zero(t, info.Size(), name)
	}
}

func TestReadJSONLSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.jsonl")
	content := `{"a":1}

not json
{"b":2}
{"c":
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, skipped, err := readJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"a":1}`, string(records[0]))
	assert.JSONEq(t, `{"b":2}`, string(records[1]))

	_, _, err = readJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteJSONLAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	records := []json.RawMessage{json.RawMessage(`{"a":1}`), json.RawMessage(`{"b":2}`)}

	require.NoError(t, writeJSONL(path, records))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestImmediatePersistence(t *testing.T) {
	b, dir := setupBackend(t, SyncImmediate)

	id, err := b.Put("face", "", faceElement(7, 8, 9))
	require.NoError(t, err)

	props, _, err := readJSONL(filepath.Join(dir, propertiesJSONL))
	require.NoError(t, err)
	require.Len(t, props, 2)

	var pj propertyJSON
	require.NoError(t, json.Unmarshal(props[0], &pj))
	assert.Equal(t, id, pj.ElementID)
	assert.Equal(t, "vertex_indices", pj.Name)
	assert.Equal(t, "list uint", pj.Type)
	assert.JSONEq(t, `[7,8,9]`, string(pj.Value))
}

func TestOnClosePersistence(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Backend: BackendSQLite, DataDir: dir, SyncStrategy: SyncOnClose}
	b := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b.Attach(cfg))

	_, err := b.Put("vertex", "v1", vertexElement(1, 2, 3))
	require.NoError(t, err)

	elements, _, err := readJSONL(filepath.Join(dir, elementsJSONL))
	require.NoError(t, err)
	assert.Empty(t, elements, "on_close wrote before Flush")

	require.NoError(t, b.Flush())
	elements, _, err = readJSONL(filepath.Join(dir, elementsJSONL))
	require.NoError(t, err)
	assert.Len(t, elements, 1)

	require.NoError(t, b.Delete("v1"))
	require.NoError(t, b.Detach())
	elements, _, err = readJSONL(filepath.Join(dir, elementsJSONL))
	require.NoError(t, err)
	assert.Empty(t, elements, "Detach did not flush the delete")
}

func TestReattachReloads(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Backend: BackendSQLite, DataDir: dir}

	b := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b.Attach(cfg))
	v, err := b.Put("vertex", "", vertexElement(1.5, 2.5, 3.5))
	require.NoError(t, err)
	f, err := b.Put("face", "", faceElement(0, 1, 2, 3))
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	rec, err := b2.Get(v)
	require.NoError(t, err)
	assert.True(t, rec.Element.Equal(vertexElement(1.5, 2.5, 3.5)))

	rec, err = b2.Get(f)
	require.NoError(t, err)
	assert.True(t, rec.Element.Equal(faceElement(0, 1, 2, 3)))

	all, err := b2.Fetch("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, v, all[0].ID)
	assert.Equal(t, f, all[1].ID)

	// New records continue the sequence after reloaded ones.
	n, err := b2.Put("vertex", "", vertexElement(0, 0, 0))
	require.NoError(t, err)
	all, err = b2.Fetch("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, n, all[2].ID)
}

// blockJSONL replaces the elements file with a non-empty directory so the
// rename in writeJSONL fails, and returns a func that restores it.
func blockJSONL(t *testing.T, dir string) func() {
	t.Helper()
	path := filepath.Join(dir, elementsJSONL)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocked"), 0o755))
	return func() {
		require.NoError(t, os.RemoveAll(path))
	}
}

func TestImmediateWriteFailureStoresNothing(t *testing.T) {
	b, dir := setupBackend(t, SyncImmediate)
	_, err := b.Put("vertex", "v1", vertexElement(1, 2, 3))
	require.NoError(t, err)

	restore := blockJSONL(t, dir)

	_, err = b.Put("vertex", "v2", vertexElement(4, 5, 6))
	require.Error(t, err)
	_, err = b.Get("v2")
	assert.ErrorIs(t, err, ErrNotFound, "failed Put left the element in the database")

	_, err = b.Put("point", "v1", vertexElement(9, 9, 9))
	require.Error(t, err)
	rec, err := b.Get("v1")
	require.NoError(t, err)
	assert.Equal(t, "vertex", rec.Class, "failed replace changed the element")

	require.Error(t, b.Delete("v1"))
	_, err = b.Get("v1")
	assert.NoError(t, err, "failed Delete removed the element")

	restore()
	_, err = b.Put("vertex", "v3", vertexElement(7, 8, 9))
	require.NoError(t, err)

	lines := jsonlLines(t, dir, elementsJSONL)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"v1"`)
	assert.Contains(t, lines[1], `"v3"`)
	assert.Len(t, jsonlLines(t, dir, propertiesJSONL), 6)
}

func TestOnCloseFailedFlushKeepsPending(t *testing.T) {
	b, dir := setupBackend(t, SyncOnClose)
	_, err := b.Put("vertex", "v1", vertexElement(1, 2, 3))
	require.NoError(t, err)

	restore := blockJSONL(t, dir)
	require.Error(t, b.Flush())

	restore()
	require.NoError(t, b.Flush())
	assert.Len(t, jsonlLines(t, dir, elementsJSONL), 1)
}

func TestBatchFlushesAtSize(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b.Attach(Config{
		Backend:       BackendSQLite,
		DataDir:       dir,
		SyncStrategy:  SyncBatch,
		BatchSize:     2,
		BatchInterval: time.Hour,
	}))
	defer b.Detach()

	_, err := b.Put("vertex", "v1", vertexElement(1, 2, 3))
	require.NoError(t, err)
	assert.Empty(t, jsonlLines(t, dir, elementsJSONL))

	_, err = b.Put("vertex", "v2", vertexElement(4, 5, 6))
	require.NoError(t, err)
	assert.Len(t, jsonlLines(t, dir, elementsJSONL), 2)

	require.NoError(t, b.Delete("v1"))
	assert.Len(t, jsonlLines(t, dir, elementsJSONL), 2)
	require.NoError(t, b.Detach())
	assert.Len(t, jsonlLines(t, dir, elementsJSONL), 1)
}

func TestBatchFlushesAfterInterval(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b.Attach(Config{
		Backend:       BackendSQLite,
		DataDir:       dir,
		SyncStrategy:  SyncBatch,
		BatchInterval: 20 * time.Millisecond,
	}))
	defer b.Detach()

	_, err := b.Put("vertex", "v1", vertexElement(1, 2, 3))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, elementsJSONL))
		return err == nil && strings.Contains(string(data), `"v1"`)
	}, 2*time.Second, 10*time.Millisecond)
}
