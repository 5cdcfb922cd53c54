// Integration tests for the element store: the full lifecycle
// Attach, Put, Get, Put (replace), Fetch, Delete, Detach, with the JSONL
// files checked after each step.
package sqlite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/plycore/pkg/ply"
)

// jsonlLines returns the non-empty lines of a JSONL file in dir.
func jsonlLines(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	var lines []string
	for line := range strings.SplitSeq(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestIntegration_ElementLifecycle(t *testing.T) {
	b, dir := setupBackend(t, SyncImmediate)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	// Put with a generated id.
	id, err := b.Put("vertex", "", vertexElement(0.5, -1, 2))
	require.NoError(t, err)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	lines := jsonlLines(t, dir, elementsJSONL)
	require.Len(t, lines, 1)
	var ej elementJSON
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ej))
	assert.Equal(t, elementJSON{ElementID: id, Class: "vertex", Seq: 1, CreatedAt: fixed.Format(time.RFC3339Nano)}, ej)
	assert.Len(t, jsonlLines(t, dir, propertiesJSONL), 3)

	// Get.
	rec, err := b.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "vertex", rec.Class)
	assert.True(t, rec.CreatedAt.Equal(fixed))
	x, ok := rec.Element.GetFloat("x")
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), x)

	// Replace with a different class and property set.
	b.now = func() time.Time { return fixed.Add(time.Hour) }
	_, err = b.Put("point", id, faceElement(4, 5))
	require.NoError(t, err)

	rec, err = b.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "point", rec.Class)
	assert.True(t, rec.CreatedAt.Equal(fixed), "replace changed the creation time")
	_, ok = rec.Element.GetFloat("x")
	assert.False(t, ok)
	assert.Equal(t, []string{"vertex_indices", "red"}, rec.Element.Names())

	props := jsonlLines(t, dir, propertiesJSONL)
	require.Len(t, props, 2)
	assert.Contains(t, props[0], `"type":"list uint"`)

	// Fetch.
	other, err := b.Put("vertex", "", vertexElement(1, 1, 1))
	require.NoError(t, err)
	recs, err := b.Fetch("vertex")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, other, recs[0].ID)

	// Delete cascades to the properties file.
	require.NoError(t, b.Delete(id))
	assert.Len(t, jsonlLines(t, dir, elementsJSONL), 1)
	for _, line := range jsonlLines(t, dir, propertiesJSONL) {
		assert.NotContains(t, line, id)
	}
}

func TestIntegration_AllVariantsSurviveReattach(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Backend: BackendSQLite, DataDir: dir}

	e := ply.NewDefaultElement()
	e.SetProperty("c", ply.CharValue(-128))
	e.SetProperty("uc", ply.UCharValue(255))
	e.SetProperty("s", ply.ShortValue(-32768))
	e.SetProperty("us", ply.UShortValue(65535))
	e.SetProperty("i", ply.IntValue(-2147483648))
	e.SetProperty("ui", ply.UIntValue(4294967295))
	e.SetProperty("f", ply.FloatValue(0.1))
	e.SetProperty("d", ply.DoubleValue(1e-300))
	e.SetProperty("lc", ply.ListChar{-1, 0, 1})
	e.SetProperty("luc", ply.ListUChar{0, 128, 255})
	e.SetProperty("ls", ply.ListShort{})
	e.SetProperty("lus", ply.ListUShort{1})
	e.SetProperty("li", ply.ListInt{3, 0, 1, 2})
	e.SetProperty("lui", ply.ListUInt{7})
	e.SetProperty("lf", ply.ListFloat{1.5, -0.25})
	e.SetProperty("ld", ply.ListDouble{3.141592653589793})

	b := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b.Attach(cfg))
	id, err := b.Put("kitchen_sink", "", e)
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend(WithLogger(quietLogger()))
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	rec, err := b2.Get(id)
	require.NoError(t, err)
	assert.True(t, rec.Element.Equal(e))
	assert.Equal(t, e.Names(), rec.Element.Names())
}

func TestIntegration_ConcurrentPuts(t *testing.T) {
	b, dir := setupBackend(t, SyncOnClose)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				id := fmt.Sprintf("w%d-%d", w, i)
				if _, err := b.Put("vertex", id, vertexElement(float32(w), float32(i), 0)); err != nil {
					errs <- err
				}
				if _, err := b.Get(id); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	recs, err := b.Fetch("vertex")
	require.NoError(t, err)
	assert.Len(t, recs, workers*perWorker)

	require.NoError(t, b.Detach())
	assert.Len(t, jsonlLines(t, dir, elementsJSONL), workers*perWorker)
	assert.Len(t, jsonlLines(t, dir, propertiesJSONL), 3*workers*perWorker)
}
