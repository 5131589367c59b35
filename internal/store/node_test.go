package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	s, err := New(path, map[string]any{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Unload() })
	return s
}

func TestNodeWrapsContainersReturnsScalars(t *testing.T) {
	s := newTestStore(t, `{
  "server": {"host": "localhost", "port": 8080},
  "tags": ["a", "b"],
  "debug": true
}
`)

	root := s.Get()
	server, ok := root.Get("server").(*Node)
	require.True(t, ok)
	assert.Equal(t, "localhost", server.Get("host"))

	tags, ok := root.Get("tags").(*Node)
	require.True(t, ok)
	assert.Equal(t, "a", tags.Index(0))
	assert.Nil(t, tags.Index(5))

	assert.Equal(t, true, root.Get("debug"))
	assert.Nil(t, root.Get("missing"))
}

func TestNodeDeepWritePersists(t *testing.T) {
	s := newTestStore(t, `{
  "server": {
    "host": "localhost" // primary
  }
}
`)

	server := s.Get().Get("server").(*Node)
	require.NoError(t, server.Set("host", "example.com"))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"host": "example.com" // primary`)
	assert.Equal(t, "example.com", s.Get().Get("server").(*Node).Get("host"))
}

func TestNodeSurvivesReload(t *testing.T) {
	s := newTestStore(t, `{
  "server": {"host": "localhost"}
}
`)

	server := s.Get().Get("server").(*Node)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"server": {"host": "other"}}`), 0644))
	require.NoError(t, s.Reload())

	assert.Equal(t, "other", server.Get("host"))
}

func TestNodeSetIndexAndAppend(t *testing.T) {
	s := newTestStore(t, `{
  "tags": ["a", "b"]
}
`)

	tags := s.Get().Get("tags").(*Node)
	require.NoError(t, tags.SetIndex(0, "z"))
	require.NoError(t, tags.Append("c"))

	assert.Equal(t, 3, tags.Len())
	assert.Equal(t, "z", tags.Index(0))
	assert.Equal(t, "c", tags.Index(2))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"z"`)
	assert.Contains(t, string(data), `"c"`)
}

func TestNodeAppendRejectsNonArray(t *testing.T) {
	s := newTestStore(t, `{
  "server": {"host": "localhost"}
}
`)

	server := s.Get().Get("server").(*Node)
	err := server.Append("x")
	var iae *InvalidArgumentError
	require.ErrorAs(t, err, &iae)
}

func TestNodeSetCreatesIntermediateObjects(t *testing.T) {
	s := newTestStore(t, `{
  "a": 1
}
`)

	root := s.Get()
	assert.Nil(t, root.Get("nested"))

	require.NoError(t, root.Set("nested", map[string]any{}))
	nested, ok := root.Get("nested").(*Node)
	require.True(t, ok)
	require.NoError(t, nested.Set("deep", "v"))

	assert.Equal(t, "v", root.Get("nested").(*Node).Get("deep"))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"deep": "v"`)
}

func TestNodeTypedAccessors(t *testing.T) {
	s := newTestStore(t, `{
  "name": "cfg",
  "count": 3,
  "ratio": 1.5,
  "on": true
}
`)

	root := s.Get()
	name, ok := root.String("name")
	assert.True(t, ok)
	assert.Equal(t, "cfg", name)

	count, ok := root.Int("count")
	assert.True(t, ok)
	assert.Equal(t, 3, count)

	ratio, ok := root.Float("ratio")
	assert.True(t, ok)
	assert.Equal(t, 1.5, ratio)

	on, ok := root.Bool("on")
	assert.True(t, ok)
	assert.True(t, on)

	_, ok = root.String("count")
	assert.False(t, ok)
	_, ok = root.String("missing")
	assert.False(t, ok)
}

func TestNodeValueIsDetachedCopy(t *testing.T) {
	s := newTestStore(t, `{
  "server": {"host": "localhost"}
}
`)

	server := s.Get().Get("server").(*Node)
	snap := server.Value().(map[string]any)
	snap["host"] = "mutated"

	assert.Equal(t, "localhost", server.Get("host"))
}

func TestNodeKeysSorted(t *testing.T) {
	s := newTestStore(t, `{
  "b": 1,
  "a": 2,
  "c": 3
}
`)

	assert.Equal(t, []string{"a", "b", "c"}, s.Get().Keys())
	assert.Equal(t, 3, s.Get().Len())
}
