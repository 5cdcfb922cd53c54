// Store benchmarks: Put, Get and Fetch against a seeded data directory.
package sqlite

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/mesh-intelligence/plycore/pkg/ply"
)

// benchBackend attaches a backend to a temp dir for the life of b.
func benchBackend(b *testing.B, strategy string) *Backend {
	b.Helper()
	backend := NewBackend(WithLogger(quietLogger()))
	cfg := Config{Backend: BackendSQLite, DataDir: b.TempDir(), SyncStrategy: strategy}
	if err := backend.Attach(cfg); err != nil {
		b.Fatalf("Attach: %v", err)
	}
	b.Cleanup(func() { backend.Detach() })
	return backend
}

// seedVertices stores n vertex elements and returns their ids.
func seedVertices(b *testing.B, backend *Backend, n int) []string {
	b.Helper()
	ids := make([]string, n)
	for i := range n {
		id, err := backend.Put("vertex", "", vertexElement(float32(i), float32(i)*2, float32(i)*3))
		if err != nil {
			b.Fatalf("seed vertex %d: %v", i, err)
		}
		ids[i] = id
	}
	return ids
}

func BenchmarkPut(b *testing.B) {
	for _, strategy := range []string{SyncImmediate, SyncOnClose} {
		b.Run(strategy, func(b *testing.B) {
			backend := benchBackend(b, strategy)
			seedVertices(b, backend, 100)
			b.ResetTimer()
			for i := 0; b.Loop(); i++ {
				if _, err := backend.Put("vertex", "", vertexElement(float32(i), 0, 0)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGet(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			backend := benchBackend(b, SyncOnClose)
			ids := seedVertices(b, backend, n)
			rng := rand.New(rand.NewSource(1))
			b.ResetTimer()
			for b.Loop() {
				if _, err := backend.Get(ids[rng.Intn(len(ids))]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFetch(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			backend := benchBackend(b, SyncOnClose)
			seedVertices(b, backend, n)
			for range n / 10 {
				e := ply.NewDefaultElement()
				e.SetProperty("vertex_indices", ply.ListInt{0, 1, 2})
				if _, err := backend.Put("face", "", e); err != nil {
					b.Fatal(err)
				}
			}
			b.ResetTimer()
			for b.Loop() {
				recs, err := backend.Fetch("vertex")
				if err != nil {
					b.Fatal(err)
				}
				if len(recs) != n {
					b.Fatalf("Fetch returned %d records, want %d", len(recs), n)
				}
			}
		})
	}
}
