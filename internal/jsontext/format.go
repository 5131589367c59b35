package jsontext

import (
	"bytes"
	"strings"
)

type tokenKind int

const (
	tokPunct tokenKind = iota
	tokScalar
	tokLineComment
	tokBlockComment
)

type token struct {
	kind          tokenKind
	text          string
	newlineBefore bool
}

// Format pretty-prints a JSONC document: one member or element per line,
// nested containers indented by one unit, comments kept where they were
// written (inline comments stay attached to their line, own-line comments
// keep their own line), trailing commas dropped. Values are not changed.
func Format(src []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	// Validate first so the formatter never has to recover mid-stream.
	if _, err := Parse(src); err != nil {
		return nil, err
	}

	toks := scan(src)
	if len(toks) == 0 {
		return []byte{}, nil
	}

	var out bytes.Buffer
	depth := 0
	pendingLine := false
	lastLineComment := false

	indent := func() string {
		return strings.Repeat(opts.Indent, depth)
	}
	breakLine := func() {
		out.WriteByte('\n')
		out.WriteString(indent())
		pendingLine = false
		lastLineComment = false
	}
	prefix := func() {
		if pendingLine || lastLineComment {
			breakLine()
		}
	}

	// nextCode returns the next non-comment token after i, if any.
	nextCode := func(i int) (token, bool) {
		for j := i + 1; j < len(toks); j++ {
			if toks[j].kind != tokLineComment && toks[j].kind != tokBlockComment {
				return toks[j], true
			}
		}
		return token{}, false
	}

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.kind {
		case tokPunct:
			switch tok.text {
			case "{", "[":
				prefix()
				if i+1 < len(toks) && toks[i+1].kind == tokPunct && toks[i+1].text == closerFor(tok.text) {
					// Empty container with nothing inside, not even comments.
					out.WriteString(tok.text)
					out.WriteString(toks[i+1].text)
					i++
					continue
				}
				out.WriteString(tok.text)
				depth++
				pendingLine = true
			case "}", "]":
				depth--
				breakLine()
				out.WriteString(tok.text)
			case ",":
				if nxt, ok := nextCode(i); ok && nxt.kind == tokPunct && (nxt.text == "}" || nxt.text == "]") {
					continue // trailing comma
				}
				if lastLineComment {
					breakLine()
				}
				out.WriteString(",")
				pendingLine = true
			case ":":
				if lastLineComment {
					breakLine()
				}
				out.WriteString(": ")
				pendingLine = false
			}
		case tokScalar:
			prefix()
			out.WriteString(tok.text)
		case tokLineComment:
			if tok.newlineBefore {
				breakLine()
			} else {
				out.WriteByte(' ')
			}
			out.WriteString(tok.text)
			lastLineComment = true
		case tokBlockComment:
			if tok.newlineBefore {
				breakLine()
			} else {
				out.WriteByte(' ')
			}
			out.WriteString(tok.text)
		}
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func closerFor(open string) string {
	if open == "{" {
		return "}"
	}
	return "]"
}

// scan splits a JSONC blob into structural punctuation, scalar runs, and
// comments, recording whether a line break preceded each token.
func scan(src []byte) []token {
	var toks []token
	sawNL := false
	emit := func(kind tokenKind, text string) {
		toks = append(toks, token{kind: kind, text: text, newlineBefore: sawNL})
		sawNL = false
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			sawNL = true
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			j := i
			for j < len(src) && src[j] != '\n' {
				j++
			}
			emit(tokLineComment, strings.TrimRight(string(src[i:j]), " \t"))
			i = j
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			j := i + 2
			for j+1 < len(src) && !(src[j] == '*' && src[j+1] == '/') {
				j++
			}
			j += 2
			if j > len(src) {
				j = len(src)
			}
			emit(tokBlockComment, string(src[i:j]))
			i = j
		case c == '"':
			j := i + 1
			for j < len(src) {
				if src[j] == '\\' {
					j += 2
					continue
				}
				if src[j] == '"' {
					j++
					break
				}
				j++
			}
			emit(tokScalar, string(src[i:j]))
			i = j
		case c == '{' || c == '}' || c == '[' || c == ']' || c == ',' || c == ':':
			emit(tokPunct, string(c))
			i++
		default:
			j := i
			for j < len(src) && !isSpace(src[j]) && !isStructural(src[j]) && src[j] != '/' {
				j++
			}
			emit(tokScalar, string(src[i:j]))
			i = j
		}
	}
	return toks
}

func isStructural(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ',', ':', '"':
		return true
	}
	return false
}
