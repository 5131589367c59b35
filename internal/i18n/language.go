// Package i18n provides file-backed translation dictionaries on top of the
// reactive config store. Each language is one JSONC file holding a flat
// string-to-string dictionary; the registry keys languages by code and routes
// lookups to the active one.
package i18n

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livecfg/livecfg/internal/event"
	"github.com/livecfg/livecfg/internal/store"
)

// Language is a translation dictionary bound to a single file. It shares the
// config store's lifecycle: external edits to the file show up in lookups,
// and the file is rewritten when entries are added programmatically.
type Language struct {
	code  string
	store *store.Store
}

// Load opens (or creates) the dictionary file for code at path.
func Load(code, path string, opts ...store.Option) (*Language, error) {
	s, err := store.New(path, map[string]any{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("load language %s: %w", code, err)
	}
	l := &Language{code: code, store: s}

	event.PublishSync(event.Event{
		Type: event.LanguageLoaded,
		Data: event.LanguageLoadedData{Code: code, Path: path},
	})
	return l, nil
}

// Code returns the language code this dictionary was loaded under.
func (l *Language) Code() string {
	return l.code
}

// Path returns the dictionary's file path.
func (l *Language) Path() string {
	return l.store.Path()
}

// Translate looks key up in the dictionary and substitutes positional
// placeholders ({0}, {1}, ...) left to right. A missing key returns the key
// itself, so callers always get a displayable string.
func (l *Language) Translate(key string, subs ...any) string {
	tmpl, ok := l.store.Get().String(key)
	if !ok {
		return key
	}
	for i, sub := range subs {
		tmpl = strings.ReplaceAll(tmpl, "{"+strconv.Itoa(i)+"}", fmt.Sprint(sub))
	}
	return tmpl
}

// SetEntry writes a translation into the dictionary and its file.
func (l *Language) SetEntry(key, value string) error {
	return l.store.Get().Set(key, value)
}

// Keys returns the dictionary's translation keys in sorted order.
func (l *Language) Keys() []string {
	return l.store.Get().Keys()
}

// Reload drops the dictionary's state and re-reads its file.
func (l *Language) Reload() error {
	return l.store.Reload()
}

// Unload stops the dictionary's watcher and resets it to empty.
func (l *Language) Unload() error {
	if err := l.store.Unload(); err != nil {
		return err
	}
	event.PublishSync(event.Event{
		Type: event.LanguageUnloaded,
		Data: event.LanguageUnloadedData{Code: l.code},
	})
	return nil
}
