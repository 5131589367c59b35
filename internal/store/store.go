// Package store implements a reactive, file-backed configuration store.
//
// A Store keeps an in-memory value tree synchronized with a JSONC file on
// disk in both directions: property writes through the interception wrapper
// (see Node) are patched into the file text with comments and formatting
// preserved, and external edits to the file are detected by a watcher and
// folded back into the value. The store's own writes are recognized by
// comparing the file's modification time against the time recorded after the
// last save, so they never trigger a reload.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/livecfg/livecfg/internal/event"
	"github.com/livecfg/livecfg/internal/jsontext"
	"github.com/livecfg/livecfg/internal/logging"
)

// quarantineSuffix is appended to a corrupt file's name before the store
// replaces it with defaults, so the broken content stays inspectable.
const quarantineSuffix = "_old"

// defaultDebounce is how long the watcher waits for writes to settle before
// treating the file as changed.
const defaultDebounce = 100 * time.Millisecond

// Store binds a default value template to a JSONC file.
type Store struct {
	path     string
	defaults map[string]any
	indent   string

	watch    bool
	debounce time.Duration

	mu          sync.RWMutex
	value       map[string]any
	text        []byte
	lastSave    time.Time
	reassigning bool
	watcher     *watcher

	log zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithWatch enables the file watcher so external edits reload the store.
func WithWatch() Option {
	return func(s *Store) { s.watch = true }
}

// WithDebounce overrides the watcher's write-settle interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounce = d }
}

// WithIndent sets the indentation unit used for inserted content and
// synthesized default files.
func WithIndent(indent string) Option {
	return func(s *Store) { s.indent = indent }
}

// New creates a store for path with the given default template, performs the
// initial load, and installs the watcher if requested. The defaults are
// copied; later mutation of the caller's map does not affect the store.
func New(path string, defaults map[string]any, opts ...Option) (*Store, error) {
	if defaults == nil {
		defaults = map[string]any{}
	}
	s := &Store{
		path:     path,
		defaults: deepCopy(defaults).(map[string]any),
		indent:   "  ",
		debounce: defaultDebounce,
		log:      logging.ForComponent("store").With().Str("file", filepath.Base(path)).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file path the store is bound to.
func (s *Store) Path() string {
	return s.path
}

// Get returns the live wrapped value. Reads and writes against it route
// through the interception layer; writes persist immediately.
func (s *Store) Get() *Node {
	return &Node{store: s}
}

// Set writes v at path p, creating missing intermediate objects, and
// persists the result. Equivalent to the corresponding chain of Node writes.
func (s *Store) Set(p jsontext.Path, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPath(p, v)
}

// Remove deletes the entry at path p from the value and the file. Missing
// paths report false without error.
func (s *Store) Remove(p jsontext.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removePath(p)
}

// Value returns a detached copy of the value at path p. An empty path yields
// the whole document.
func (s *Store) Value(p jsontext.Path) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.resolve(p)
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Text returns a copy of the current text cache.
func (s *Store) Text() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.text...)
}

// Load reads and parses the file, merges its contents over the defaults, and
// rewrites the file so it reflects the merged result. Parse failures are
// recovered locally by quarantining the file and continuing with defaults;
// filesystem failures propagate.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save writes the current text cache to disk and records the file's
// post-write modification time as the watcher guard.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Unload stops the watcher if active, waits for it to finish, and resets the
// in-memory state to the original defaults.
func (s *Store) Unload() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.value = deepCopy(s.defaults).(map[string]any)
	s.text = nil
	s.mu.Unlock()

	if w != nil {
		if err := w.stop(); err != nil {
			return fmt.Errorf("stop watcher: %w", err)
		}
	}
	return nil
}

// Reload is a two-phase reset: a full Unload followed by a fresh init.
func (s *Store) Reload() error {
	if err := s.Unload(); err != nil {
		return err
	}
	if err := s.init(); err != nil {
		return err
	}
	event.PublishSync(event.Event{
		Type: event.ConfigReloaded,
		Data: event.ConfigReloadedData{Path: s.path},
	})
	return nil
}

// init performs the initial load and installs the watcher exactly once.
func (s *Store) init() error {
	s.mu.Lock()
	err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if !s.watch {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	w, err := newWatcher(s.path, s.debounce, s.log, s.onFileChanged, s.onFileRemoved)
	if err != nil {
		return fmt.Errorf("install watcher: %w", err)
	}
	s.watcher = w
	return nil
}

// load assumes s.mu is held.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", s.path, err)
		}
		return s.loadDefaults()
	}

	cand, perr := jsontext.Parse(data)
	if perr == nil {
		if _, ok := cand.(map[string]any); !ok {
			perr = fmt.Errorf("document root is %T, expected an object", cand)
		}
	}
	if perr != nil {
		if qerr := s.quarantine(perr); qerr != nil {
			return qerr
		}
		return s.loadDefaults()
	}

	s.text = data
	merged := cand.(map[string]any)
	err = s.withReassignment(func() error {
		s.value = deepCopy(s.defaults).(map[string]any)
		overlay(s.value, merged)
		return s.fillDefaults(nil, s.defaults, merged)
	})
	if err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}

	s.log.Debug().Msg("config loaded")
	event.PublishSync(event.Event{
		Type: event.ConfigLoaded,
		Data: event.ConfigLoadedData{Path: s.path},
	})
	return nil
}

// loadDefaults resets the store to the default template and writes a fresh
// file. Used when the file is absent or was quarantined.
func (s *Store) loadDefaults() error {
	s.value = deepCopy(s.defaults).(map[string]any)
	text, err := json.MarshalIndent(s.value, "", s.indent)
	if err != nil {
		return fmt.Errorf("render defaults: %w", err)
	}
	s.text = append(text, '\n')
	if err := s.save(); err != nil {
		return err
	}

	event.PublishSync(event.Event{
		Type: event.ConfigLoaded,
		Data: event.ConfigLoadedData{Path: s.path},
	})
	return nil
}

// quarantine renames a corrupt file aside so it is preserved for inspection
// and never overwritten by the defaults that replace it.
func (s *Store) quarantine(cause error) error {
	renamed := s.path + quarantineSuffix
	if err := os.Rename(s.path, renamed); err != nil {
		return fmt.Errorf("quarantine %s: %w", s.path, err)
	}

	s.log.Warn().Err(cause).Str("renamed", renamed).Msg("config file is corrupt, continuing with defaults")
	event.PublishSync(event.Event{
		Type: event.ConfigQuarantined,
		Data: event.ConfigQuarantinedData{Path: s.path, RenamedPath: renamed, Reason: cause.Error()},
	})
	return nil
}

// fillDefaults patches default entries missing from the candidate document
// into the text cache, so the rewritten file carries every template key.
func (s *Store) fillDefaults(prefix jsontext.Path, def, cand map[string]any) error {
	for k, dv := range def {
		p := append(append(jsontext.Path{}, prefix...), jsontext.Key(k))
		cv, ok := cand[k]
		if !ok {
			text, err := jsontext.Set(s.text, p, dv, jsontext.Options{Indent: s.indent})
			if err != nil {
				return fmt.Errorf("fill default %s: %w", p.String(), err)
			}
			s.text = text
			continue
		}
		dm, dok := dv.(map[string]any)
		cm, cok := cv.(map[string]any)
		if dok && cok {
			if err := s.fillDefaults(p, dm, cm); err != nil {
				return err
			}
		}
	}
	return nil
}

// save assumes s.mu is held. The text cache is written via a temp file and
// rename so a crash mid-write cannot truncate the config, then the file is
// stat'ed so the watcher guard compares against the true on-disk time.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, s.text, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	fi, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	s.lastSave = fi.ModTime()

	event.PublishSync(event.Event{
		Type: event.ConfigSaved,
		Data: event.ConfigSavedData{Path: s.path},
	})
	return nil
}

// withReassignment runs fn with per-write persistence suppressed. The flag is
// restored on every exit path so a failure mid-merge cannot leave saving
// permanently disabled.
func (s *Store) withReassignment(fn func() error) error {
	s.reassigning = true
	defer func() { s.reassigning = false }()
	return fn()
}

// setPath is the write half of the interception layer: it patches the text
// cache, mutates the underlying value, and persists unless a bulk
// reassignment is in progress.
func (s *Store) setPath(p jsontext.Path, v any) error {
	if _, err := json.Marshal(v); err != nil {
		return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "not representable as JSON"}
	}

	text, err := jsontext.Set(s.text, p, v, jsontext.Options{Indent: s.indent})
	if err != nil {
		return err
	}
	s.text = text
	if err := applyValue(s.value, p, v); err != nil {
		return err
	}

	event.PublishSync(event.Event{
		Type: event.ConfigChanged,
		Data: event.ConfigChangedData{Path: s.path, AccessKey: p.String()},
	})

	if s.reassigning {
		return nil
	}
	return s.save()
}

// removePath deletes a path from both the text cache and the value.
func (s *Store) removePath(p jsontext.Path) (bool, error) {
	text, removed, err := jsontext.Remove(s.text, p)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}
	s.text = text
	removeValue(s.value, p)

	event.PublishSync(event.Event{
		Type: event.ConfigChanged,
		Data: event.ConfigChangedData{Path: s.path, AccessKey: p.String()},
	})

	if s.reassigning {
		return true, nil
	}
	return true, s.save()
}

// onFileChanged runs on the watcher goroutine after writes settle. Events
// whose modification time is not newer than the store's own last save are
// self-inflicted and ignored.
func (s *Store) onFileChanged() {
	fi, err := os.Stat(s.path)
	if err != nil {
		// Raced with a delete; the remove handler covers it.
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !fi.ModTime().After(s.lastSave) {
		s.log.Debug().Msg("ignoring self-inflicted file event")
		return
	}
	s.log.Info().Msg("external change detected, reloading")
	if err := s.load(); err != nil {
		s.log.Error().Err(err).Msg("reload after external change failed")
	}
}

// onFileRemoved always reloads: deletion has no meaningful mtime to compare,
// and loading an absent file restores the defaults on disk.
func (s *Store) onFileRemoved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info().Msg("file removed, restoring")
	if err := s.load(); err != nil {
		s.log.Error().Err(err).Msg("reload after removal failed")
	}
}
