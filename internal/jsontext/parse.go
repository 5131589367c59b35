package jsontext

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

// ParseError reports malformed document text. Offset is the byte offset of
// the failure; Line is 1-based and Column is 0-based, both derived from the
// original text so comments count toward positions.
type ParseError struct {
	Offset int64
	Line   int
	Column int
	cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsontext: parse error at line %d, column %d: %v", e.Line, e.Column, e.cause)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Parse decodes a JSONC document into generic Go values (map[string]any,
// []any, string, float64, bool, nil). Comments and trailing commas are
// tolerated. Failures carry line/column diagnostics.
func Parse(src []byte) (any, error) {
	clean := clean(src)
	var v any
	if err := json.Unmarshal(clean, &v); err != nil {
		return nil, diagnose(src, err)
	}
	return v, nil
}

// clean erases comments and trailing commas from src without shifting any
// byte offsets, so positions in the result map 1:1 onto the original text.
// The input is not modified.
func clean(src []byte) []byte {
	return jsonc.ToJSONInPlace(append([]byte(nil), src...))
}

func diagnose(src []byte, err error) error {
	var offset int64 = -1
	if syn, ok := err.(*json.SyntaxError); ok {
		offset = syn.Offset
	}
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(src)) {
		offset = int64(len(src))
	}
	line, col := lineCol(src, offset)
	return &ParseError{Offset: offset, Line: line, Column: col, cause: err}
}

// lineCol translates a byte offset into a 1-based line and 0-based column.
func lineCol(src []byte, offset int64) (int, int) {
	head := src[:offset]
	line := bytes.Count(head, []byte{'\n'}) + 1
	last := bytes.LastIndexByte(head, '\n')
	col := int(offset) - last - 1
	return line, col
}
