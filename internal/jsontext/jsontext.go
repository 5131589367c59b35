// Package jsontext edits JSONC documents in place, preserving comments and
// formatting outside the changed region.
package jsontext

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is one element of an access path: an object key or an array index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key step.
func Key(k string) Step {
	return Step{Key: k}
}

// Index returns an array-index step.
func Index(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// Path is an ordered sequence of steps locating a value inside a document.
type Path []Step

// String renders the path in dotted form for logs and events.
func (p Path) String() string {
	var sb strings.Builder
	for i, st := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		if st.IsIndex {
			sb.WriteString(strconv.Itoa(st.Index))
		} else {
			sb.WriteString(st.Key)
		}
	}
	return sb.String()
}

// gjsonPath renders the path in gjson query syntax, escaping characters that
// gjson treats as wildcards or separators.
func (p Path) gjsonPath() string {
	var sb strings.Builder
	for i, st := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		if st.IsIndex {
			sb.WriteString(strconv.Itoa(st.Index))
			continue
		}
		for _, r := range st.Key {
			switch r {
			case '.', '*', '?', '\\', '|', '#', '@':
				sb.WriteByte('\\')
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Options controls how edits render new content.
type Options struct {
	// Indent is the indentation unit for inserted lines and synthesized
	// documents. Defaults to two spaces.
	Indent string
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = "  "
	}
	return o
}

// PathError reports an edit that cannot be applied at the requested path,
// carrying the offending path so the cause is inspectable.
type PathError struct {
	Op   string
	Path Path
	Msg  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("jsontext: %s %q: %s", e.Op, e.Path.String(), e.Msg)
}
