package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepCopyDetaches(t *testing.T) {
	src := map[string]any{
		"nested": map[string]any{"a": float64(1)},
		"list":   []any{float64(1), float64(2)},
	}

	got := deepCopy(src).(map[string]any)
	got["nested"].(map[string]any)["a"] = float64(9)
	got["list"].([]any)[0] = float64(9)

	assert.Equal(t, float64(1), src["nested"].(map[string]any)["a"])
	assert.Equal(t, float64(1), src["list"].([]any)[0])
}

func TestOverlayMergesObjectsRecursively(t *testing.T) {
	dst := map[string]any{
		"server": map[string]any{"host": "localhost", "port": float64(80)},
	}
	src := map[string]any{
		"server": map[string]any{"port": float64(8080)},
	}

	overlay(dst, src)

	server := dst["server"].(map[string]any)
	assert.Equal(t, "localhost", server["host"])
	assert.Equal(t, float64(8080), server["port"])
}

func TestOverlayReplacesArraysWholesale(t *testing.T) {
	dst := map[string]any{"tags": []any{"a", "b", "c"}}
	src := map[string]any{"tags": []any{"x"}}

	overlay(dst, src)

	assert.Equal(t, []any{"x"}, dst["tags"])
}

func TestOverlaySourceWinsOnTypeConflict(t *testing.T) {
	dst := map[string]any{"mode": map[string]any{"kind": "auto"}}
	src := map[string]any{"mode": "manual"}

	overlay(dst, src)

	assert.Equal(t, "manual", dst["mode"])
}
