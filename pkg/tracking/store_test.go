package tracking_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apache/maven-resolver-sub005/pkg/tracking"
)

func TestReadWriteRoundTrip(t *testing.T) {
	// spec.md §8 "read(write(p, m)) == m"
	store := tracking.NewStore()
	path := filepath.Join(t.TempDir(), "resolver-status.properties")
	want := tracking.Properties{"central": "1700000000000", "central.error": "not found"}

	require.NoError(t, store.Write(path, want))
	got, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadMissingIsEmpty(t *testing.T) {
	store := tracking.NewStore()
	got, err := store.Read(filepath.Join(t.TempDir(), "nope.properties"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateIsAtomicReadModifyWrite(t *testing.T) {
	store := tracking.NewStore()
	path := filepath.Join(t.TempDir(), "p.properties")
	require.NoError(t, store.Write(path, tracking.Properties{"a": "1"}))

	err := store.Update(path, func(p tracking.Properties) tracking.Properties {
		p["b"] = "2"
		return p
	})
	require.NoError(t, err)

	got, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, tracking.Properties{"a": "1", "b": "2"}, got)
}

func TestConcurrentUpdatesToSamePathSerialize(t *testing.T) {
	store := tracking.NewStore()
	path := filepath.Join(t.TempDir(), "concurrent.properties")
	require.NoError(t, store.Write(path, tracking.Properties{}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "k" + string(rune('a'+n%26))
			_ = store.Update(path, func(p tracking.Properties) tracking.Properties {
				p[key] = "1"
				return p
			})
		}(i)
	}
	wg.Wait()

	got, err := store.Read(path)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
