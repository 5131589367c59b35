package store

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livecfg/livecfg/internal/event"
)

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestNewCreatesFileFromDefaults(t *testing.T) {
	path := tempConfig(t)

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	defer s.Unload()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 0`)

	v, ok := s.Get().Int("count")
	assert.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestLoadPreservesCommentsAndUnknownKeys(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`{
  // retry budget
  "count": 3,
  "extra": "kept"
}
`), 0644))

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	defer s.Unload()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "// retry budget")
	assert.Contains(t, string(data), `"extra": "kept"`)

	assert.Equal(t, "kept", s.Get().Get("extra"))
}

func TestLoadFillsMissingDefaults(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`{
  "count": 3
}
`), 0644))

	s, err := New(path, map[string]any{
		"count":   float64(0),
		"enabled": true,
	})
	require.NoError(t, err)
	defer s.Unload()

	// Existing values win; absent defaults get patched into the file.
	v, _ := s.Get().Int("count")
	assert.Equal(t, 3, v)
	b, ok := s.Get().Bool("enabled")
	assert.True(t, ok)
	assert.True(t, b)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"enabled": true`)
}

func TestSetPersistsImmediatelyPreservingComments(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`{
  "count": 3 // how many
}
`), 0644))

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	defer s.Unload()

	require.NoError(t, s.Get().Set("count", 6))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 6 // how many`)

	v, _ := s.Get().Int("count")
	assert.Equal(t, 6, v)
}

func TestCorruptFileIsQuarantined(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"count": }`), 0644))

	var quarantined atomic.Bool
	unsub := event.Subscribe(event.ConfigQuarantined, func(e event.Event) {
		quarantined.Store(true)
	})
	defer unsub()

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	defer s.Unload()

	// The broken content moved aside, defaults took its place.
	old, err := os.ReadFile(path + "_old")
	require.NoError(t, err)
	assert.Equal(t, `{"count": }`, string(old))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 0`)
	assert.True(t, quarantined.Load())
}

func TestNonObjectRootIsQuarantined(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2, 3]`), 0644))

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	defer s.Unload()

	_, err = os.Stat(path + "_old")
	assert.NoError(t, err)
}

func TestRemoveDeletesKeyFromFileAndValue(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`{
  "count": 3,
  "label": "x"
}
`), 0644))

	s, err := New(path, map[string]any{})
	require.NoError(t, err)
	defer s.Unload()

	removed, err := s.Get().Remove("label")
	require.NoError(t, err)
	assert.True(t, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "label")
	assert.Nil(t, s.Get().Get("label"))

	removed, err = s.Get().Remove("label")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUnloadResetsToDefaults(t *testing.T) {
	path := tempConfig(t)

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	require.NoError(t, s.Get().Set("count", 9))

	require.NoError(t, s.Unload())

	v, _ := s.Get().Int("count")
	assert.Equal(t, 0, v)
}

func TestReloadPicksUpExternalEdit(t *testing.T) {
	path := tempConfig(t)

	s, err := New(path, map[string]any{"count": float64(0)})
	require.NoError(t, err)
	defer s.Unload()

	require.NoError(t, os.WriteFile(path, []byte(`{"count": 5}`), 0644))
	require.NoError(t, s.Reload())

	v, _ := s.Get().Int("count")
	assert.Equal(t, 5, v)
}

func TestWatcherReloadsOnExternalChange(t *testing.T) {
	path := tempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte(`{
  "count": 0
}
`), 0644))

	s, err := New(path, map[string]any{"count": float64(0)},
		WithWatch(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer s.Unload()

	// Push the mtime into the future so the change cannot be mistaken for
	// one of the store's own saves.
	require.NoError(t, os.WriteFile(path, []byte(`{
  "count": 5,
  "label": "external"
}
`), 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	require.Eventually(t, func() bool {
		v, ok := s.Get().Int("count")
		return ok && v == 5
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "external", s.Get().Get("label"))
}

func TestWatcherIgnoresOwnSaves(t *testing.T) {
	path := tempConfig(t)

	s, err := New(path, map[string]any{"count": float64(0)},
		WithWatch(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer s.Unload()

	var loads atomic.Int32
	unsub := event.Subscribe(event.ConfigLoaded, func(e event.Event) {
		loads.Add(1)
	})
	defer unsub()

	require.NoError(t, s.Get().Set("count", 1))
	require.NoError(t, s.Get().Set("count", 2))

	// Give the debounce window ample time to fire if it was going to.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), loads.Load())

	v, _ := s.Get().Int("count")
	assert.Equal(t, 2, v)
}

func TestWatcherRestoresDeletedFile(t *testing.T) {
	path := tempConfig(t)

	s, err := New(path, map[string]any{"count": float64(7)},
		WithWatch(), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer s.Unload()

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && len(data) > 0
	}, 5*time.Second, 10*time.Millisecond)

	v, _ := s.Get().Int("count")
	assert.Equal(t, 7, v)
}

func TestSetRejectsUnrepresentableValue(t *testing.T) {
	path := tempConfig(t)

	s, err := New(path, map[string]any{})
	require.NoError(t, err)
	defer s.Unload()

	err = s.Get().Set("fn", func() {})
	var iae *InvalidArgumentError
	require.ErrorAs(t, err, &iae)
}
