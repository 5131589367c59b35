package jsontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToleratesCommentsAndTrailingCommas(t *testing.T) {
	src := []byte(`{
  // single-line comment
  "a": 1, /* block
  comment */
  "b": [1, 2,],
}`)

	v, err := Parse(src)
	require.NoError(t, err)

	doc := v.(map[string]any)
	assert.Equal(t, 1.0, doc["a"])
	assert.Equal(t, []any{1.0, 2.0}, doc["b"])
}

func TestParseErrorCarriesLineAndColumn(t *testing.T) {
	src := []byte("{\n  \"a\": 1,\n  oops\n}")

	_, err := Parse(src)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)

	assert.Equal(t, 3, pe.Line)
	assert.GreaterOrEqual(t, pe.Column, 0)
	assert.Positive(t, pe.Offset)
	assert.Contains(t, pe.Error(), "line 3")
}

func TestLineCol(t *testing.T) {
	src := []byte("ab\ncde\nf")

	line, col := lineCol(src, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)

	line, col = lineCol(src, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)

	line, col = lineCol(src, 7)
	assert.Equal(t, 3, line)
	assert.Equal(t, 0, col)
}
