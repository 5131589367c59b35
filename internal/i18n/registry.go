package i18n

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/livecfg/livecfg/internal/event"
	"github.com/livecfg/livecfg/internal/logging"
	"github.com/livecfg/livecfg/internal/store"
)

// ErrNotLoaded is returned when no language has been loaded at all.
var ErrNotLoaded = errors.New("i18n: no language loaded")

// ErrUnknownLanguage is returned when a requested code has not been loaded.
// Errors wrapping it name the offending code.
var ErrUnknownLanguage = errors.New("i18n: unknown language")

// Registry owns a set of languages keyed by code and tracks the active one.
// Lookup routing is the registry's whole job; dictionary contents live in the
// per-language stores.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]*Language
	active    string
	opts      []store.Option
}

// NewRegistry creates an empty registry. The store options are applied to
// every language loaded through it, so a watching registry watches all of
// its dictionary files.
func NewRegistry(opts ...store.Option) *Registry {
	return &Registry{
		languages: make(map[string]*Language),
		opts:      opts,
	}
}

// LoadAll scans dir and loads one language per file, keyed by the file's
// base name without extension. The first language loaded into an empty
// registry becomes active.
func (r *Registry) LoadAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scan languages %s: %w", dir, err)
	}

	log := logging.ForComponent("i18n")
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		code := strings.TrimSuffix(name, filepath.Ext(name))
		if code == "" {
			continue
		}
		if err := r.Load(code, filepath.Join(dir, name)); err != nil {
			return err
		}
		log.Debug().Str("code", code).Msg("language loaded")
	}
	return nil
}

// Load opens the dictionary at path and registers it under code. Loading a
// code twice replaces the previous entry after unloading it.
func (r *Registry) Load(code, path string) error {
	l, err := Load(code, path, r.opts...)
	if err != nil {
		return err
	}
	r.Register(l)
	return nil
}

// Register adds an already-constructed language to the registry. The first
// registered language becomes active.
func (r *Registry) Register(l *Language) {
	r.mu.Lock()
	prev := r.languages[l.Code()]
	r.languages[l.Code()] = l
	if r.active == "" {
		r.active = l.Code()
	}
	r.mu.Unlock()

	if prev != nil && prev != l {
		prev.Unload()
	}
}

// Switch makes code the active language. Unknown codes are ignored, so a
// stale preference cannot break lookups.
func (r *Registry) Switch(code string) {
	r.mu.Lock()
	_, known := r.languages[code]
	from := r.active
	if known && code != from {
		r.active = code
	}
	r.mu.Unlock()

	if !known || code == from {
		return
	}
	event.PublishSync(event.Event{
		Type: event.LanguageSwitched,
		Data: event.LanguageSwitchedData{From: from, To: code},
	})
}

// Active returns the active language code, empty when nothing is loaded.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Codes returns the loaded language codes.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.languages))
	for c := range r.languages {
		codes = append(codes, c)
	}
	return codes
}

// Get returns the language for code, or the active language when no code is
// given. A code that was never loaded is a lookup error naming the code.
func (r *Registry) Get(code ...string) (*Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := r.active
	if len(code) > 0 && code[0] != "" {
		want = code[0]
	}
	if want == "" {
		return nil, ErrNotLoaded
	}
	l, ok := r.languages[want]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, want)
	}
	return l, nil
}

// Translate resolves key against the requested (or active) language. When
// the language is not loaded the bare key comes back, matching the
// per-language fallback for missing entries.
func (r *Registry) Translate(key string, subs []any, code ...string) string {
	l, err := r.Get(code...)
	if err != nil {
		return key
	}
	return l.Translate(key, subs...)
}

// Unload removes code from the registry and releases its store. Unloading
// the active language clears the active code.
func (r *Registry) Unload(code string) error {
	r.mu.Lock()
	l, ok := r.languages[code]
	if ok {
		delete(r.languages, code)
		if r.active == code {
			r.active = ""
		}
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return l.Unload()
}

// Reload re-reads a single language's file.
func (r *Registry) Reload(code string) error {
	r.mu.RLock()
	l, ok := r.languages[code]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
	}
	return l.Reload()
}

// ReloadAll re-reads every loaded language.
func (r *Registry) ReloadAll() error {
	r.mu.RLock()
	langs := make([]*Language, 0, len(r.languages))
	for _, l := range r.languages {
		langs = append(langs, l)
	}
	r.mu.RUnlock()

	for _, l := range langs {
		if err := l.Reload(); err != nil {
			return err
		}
	}
	return nil
}
