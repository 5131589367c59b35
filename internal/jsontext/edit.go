package jsontext

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Set produces a copy of src with the value at path replaced (or inserted),
// leaving every byte outside the affected region untouched. Missing
// intermediate objects are created; appending to an array requires the index
// to equal the current length. src may use comments and trailing commas.
func Set(src []byte, path Path, value any, opts Options) ([]byte, error) {
	if len(path) == 0 {
		return nil, &PathError{Op: "set", Path: path, Msg: "empty path"}
	}
	opts = opts.withDefaults()

	cleaned := clean(src)
	if len(bytes.TrimSpace(cleaned)) == 0 {
		return synthesize(path, value, opts)
	}

	res := gjson.GetBytes(cleaned, path.gjsonPath())
	if res.Exists() && res.Index > 0 {
		enc, err := encodeValue(value, lineIndent(cleaned, res.Index), opts.Indent)
		if err != nil {
			return nil, err
		}
		return splice(src, res.Index, res.Index+len(res.Raw), enc), nil
	}

	return insert(src, cleaned, path, value, opts)
}

// Remove produces a copy of src with the member or element at path deleted,
// along with its separator comma. The second result reports whether anything
// was removed; a missing path is not an error.
func Remove(src []byte, path Path) ([]byte, bool, error) {
	if len(path) == 0 {
		return nil, false, &PathError{Op: "remove", Path: path, Msg: "empty path"}
	}

	cleaned := clean(src)
	res := gjson.GetBytes(cleaned, path.gjsonPath())
	if !res.Exists() || res.Index == 0 {
		return append([]byte(nil), src...), false, nil
	}

	start := res.Index
	end := res.Index + len(res.Raw)

	if last := path[len(path)-1]; !last.IsIndex {
		ms, err := memberStart(cleaned, start)
		if err != nil {
			return nil, false, &PathError{Op: "remove", Path: path, Msg: err.Error()}
		}
		start = ms
	}
	start, end = swallowComma(cleaned, start, end)
	start, end = swallowBlankLine(cleaned, start, end)

	return splice(src, start, end, nil), true, nil
}

// encodeValue marshals a replacement value. Containers are indented with
// prefix so their continuation lines align with the line being edited.
func encodeValue(v any, prefix, indent string) ([]byte, error) {
	switch v.(type) {
	case map[string]any, []any:
		return json.MarshalIndent(v, prefix, indent)
	}
	return json.Marshal(v)
}

// insert splices a new member or element into the deepest existing ancestor
// container on path, wrapping the value in fresh containers for any missing
// intermediate steps.
func insert(src, cleaned []byte, path Path, value any, opts Options) ([]byte, error) {
	anc := len(path) - 1
	for anc > 0 && !gjson.GetBytes(cleaned, path[:anc].gjsonPath()).Exists() {
		anc--
	}

	var parent gjson.Result
	var pStart, pEnd int
	if anc == 0 {
		parent = gjson.ParseBytes(cleaned)
		pStart = bytes.IndexFunc(cleaned, notSpace)
		pEnd = bytes.LastIndexFunc(cleaned, notSpace) + 1
	} else {
		parent = gjson.GetBytes(cleaned, path[:anc].gjsonPath())
		pStart = parent.Index
		pEnd = parent.Index + len(parent.Raw)
	}

	step := path[anc]
	switch {
	case parent.IsObject() && step.IsIndex:
		return nil, &PathError{Op: "set", Path: path, Msg: "numeric index into object"}
	case parent.IsArray() && !step.IsIndex:
		return nil, &PathError{Op: "set", Path: path, Msg: fmt.Sprintf("key %q into array", step.Key)}
	case !parent.IsObject() && !parent.IsArray():
		return nil, &PathError{Op: "set", Path: path, Msg: "parent is not a container"}
	}

	if parent.IsArray() {
		if n := int(parent.Get("#").Int()); step.Index != n {
			return nil, &PathError{Op: "set", Path: path,
				Msg: fmt.Sprintf("index %d out of range for append (len %d)", step.Index, n)}
		}
	}

	wrapped, err := wrapMissing(path, anc+1, value)
	if err != nil {
		return nil, err
	}

	// pairFor renders the inserted member (or bare element) with container
	// continuation lines aligned to prefix.
	pairFor := func(prefix string) ([]byte, error) {
		enc, err := encodeValue(wrapped, prefix, opts.Indent)
		if err != nil {
			return nil, err
		}
		if !parent.IsObject() {
			return enc, nil
		}
		kb, _ := json.Marshal(step.Key)
		out := append(kb, ':', ' ')
		return append(out, enc...), nil
	}

	closePos := pEnd - 1
	pos := closePos - 1
	for pos > pStart && isSpace(cleaned[pos]) {
		pos--
	}

	if pos == pStart {
		// Empty container.
		closeIndent := lineIndent(cleaned, closePos)
		if lineStart(cleaned, closePos) > pStart {
			pair, err := pairFor(closeIndent + opts.Indent)
			if err != nil {
				return nil, err
			}
			text := append([]byte(opts.Indent), pair...)
			text = append(text, '\n')
			text = append(text, closeIndent...)
			return splice(src, closePos, closePos, text), nil
		}
		pair, err := pairFor(closeIndent)
		if err != nil {
			return nil, err
		}
		return splice(src, closePos, closePos, pair), nil
	}

	// A trailing comma erased by the cleaner still separates in the source.
	q := pos + 1
	for q < closePos && isSpace(cleaned[q]) && src[q] != ',' {
		q++
	}
	hasTrailing := q < closePos && src[q] == ',' && cleaned[q] == ' '
	needComma := !hasTrailing

	if closeLine := lineStart(cleaned, closePos); closeLine > pos {
		// Closing bracket sits on its own line; insert a full line above it.
		childIndent := lineIndent(cleaned, pos)
		pair, err := pairFor(childIndent)
		if err != nil {
			return nil, err
		}
		text := append([]byte(childIndent), pair...)
		text = append(text, '\n')
		out := splice(src, closeLine, closeLine, text)
		if needComma {
			out = splice(out, pos+1, pos+1, []byte{','})
		}
		return out, nil
	}

	// Single-line container.
	pair, err := pairFor(lineIndent(cleaned, pos))
	if err != nil {
		return nil, err
	}
	at := pos + 1
	var text []byte
	if hasTrailing {
		at = q + 1
	} else {
		text = append(text, ',')
	}
	text = append(text, ' ')
	text = append(text, pair...)
	return splice(src, at, at, text), nil
}

// wrapMissing nests value inside fresh containers for path steps from..end.
// A missing intermediate array step is only creatable at index 0.
func wrapMissing(path Path, from int, value any) (any, error) {
	val := value
	for i := len(path) - 1; i >= from; i-- {
		st := path[i]
		if st.IsIndex {
			if st.Index != 0 {
				return nil, &PathError{Op: "set", Path: path,
					Msg: fmt.Sprintf("cannot create array with first index %d", st.Index)}
			}
			val = []any{val}
		} else {
			val = map[string]any{st.Key: val}
		}
	}
	return val, nil
}

// synthesize renders a whole document for an empty source blob.
func synthesize(path Path, value any, opts Options) ([]byte, error) {
	doc, err := wrapMissing(path, 0, value)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", opts.Indent)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// memberStart walks backward from a value's offset to the opening quote of
// its key.
func memberStart(cleaned []byte, valueStart int) (int, error) {
	i := valueStart - 1
	for i >= 0 && isSpace(cleaned[i]) {
		i--
	}
	if i < 0 || cleaned[i] != ':' {
		return 0, fmt.Errorf("no key separator before offset %d", valueStart)
	}
	i--
	for i >= 0 && isSpace(cleaned[i]) {
		i--
	}
	if i < 0 || cleaned[i] != '"' {
		return 0, fmt.Errorf("no quoted key before offset %d", valueStart)
	}
	for i--; i >= 0; i-- {
		if cleaned[i] != '"' {
			continue
		}
		// Count the run of preceding backslashes; an even run means this
		// quote is unescaped and opens the key.
		bs := 0
		for j := i - 1; j >= 0 && cleaned[j] == '\\'; j-- {
			bs++
		}
		if bs%2 == 0 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unterminated key before offset %d", valueStart)
}

// swallowComma extends a removal region over its separator comma: the
// preceding comma when one exists, otherwise the following one.
func swallowComma(cleaned []byte, start, end int) (int, int) {
	i := start - 1
	for i >= 0 && isSpace(cleaned[i]) {
		i--
	}
	if i >= 0 && cleaned[i] == ',' {
		return i, end
	}
	j := end
	for j < len(cleaned) && isSpace(cleaned[j]) && cleaned[j] != '\n' {
		j++
	}
	if j < len(cleaned) && cleaned[j] == ',' {
		return start, j + 1
	}
	return start, end
}

// swallowBlankLine removes the whole line when the removal region was the
// only content on it.
func swallowBlankLine(cleaned []byte, start, end int) (int, int) {
	ls := lineStart(cleaned, start)
	for i := ls; i < start; i++ {
		if cleaned[i] != ' ' && cleaned[i] != '\t' {
			return start, end
		}
	}
	e := end
	for e < len(cleaned) && (cleaned[e] == ' ' || cleaned[e] == '\t') {
		e++
	}
	if e < len(cleaned) && cleaned[e] == '\n' {
		return ls, e + 1
	}
	return start, end
}

func splice(src []byte, start, end int, repl []byte) []byte {
	out := make([]byte, 0, len(src)-(end-start)+len(repl))
	out = append(out, src[:start]...)
	out = append(out, repl...)
	out = append(out, src[end:]...)
	return out
}

// lineStart returns the offset of the first byte of the line containing pos.
func lineStart(b []byte, pos int) int {
	return bytes.LastIndexByte(b[:pos], '\n') + 1
}

// lineIndent returns the leading whitespace of the line containing pos.
func lineIndent(b []byte, pos int) string {
	ls := lineStart(b, pos)
	i := ls
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	return string(b[ls:i])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func notSpace(r rune) bool {
	return r != ' ' && r != '\t' && r != '\n' && r != '\r'
}
