package store

import (
	"sort"

	"github.com/livecfg/livecfg/internal/jsontext"
)

// Node is the change-interception wrapper over a store's value. It carries
// the owning store and an access-path prefix; reads that land on a container
// return a deeper Node so mutation at any depth stays observable, and writes
// are applied to the underlying value, patched into the file text, and
// persisted immediately.
//
// A Node stays valid across reloads: it re-resolves its path against the
// store's current value on every access.
type Node struct {
	store *Store
	path  jsontext.Path
}

// Path returns the node's access path from the document root.
func (n *Node) Path() jsontext.Path {
	return append(jsontext.Path{}, n.path...)
}

// Get returns the value under key. Containers come back wrapped as a deeper
// *Node; scalars come back as-is; a missing key yields nil.
func (n *Node) Get(key string) any {
	return n.child(jsontext.Key(key))
}

// Index returns the element at i, wrapped when it is a container. Out of
// range yields nil.
func (n *Node) Index(i int) any {
	return n.child(jsontext.Index(i))
}

func (n *Node) child(step jsontext.Step) any {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	v, ok := n.store.resolve(append(n.Path(), step))
	if !ok {
		return nil
	}
	switch v.(type) {
	case map[string]any, []any:
		return &Node{store: n.store, path: append(n.Path(), step)}
	}
	return v
}

// Set writes key to v, patches the file text, and saves unless the store is
// bulk-reassigning.
func (n *Node) Set(key string, v any) error {
	return n.write(jsontext.Key(key), v)
}

// SetIndex writes the element at i. Writing one past the end appends.
func (n *Node) SetIndex(i int, v any) error {
	return n.write(jsontext.Index(i), v)
}

// Append adds v after the last element of the array at this node.
func (n *Node) Append(v any) error {
	n.store.mu.RLock()
	cur, ok := n.store.resolve(n.path)
	arr, isArr := cur.([]any)
	n.store.mu.RUnlock()
	if !ok || !isArr {
		return &InvalidArgumentError{Op: "append " + n.path.String(), Value: cur, Msg: "not an array"}
	}
	return n.write(jsontext.Index(len(arr)), v)
}

func (n *Node) write(step jsontext.Step, v any) error {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	return n.store.setPath(append(n.Path(), step), v)
}

// Remove deletes key from this node and the file. Missing keys are a no-op.
func (n *Node) Remove(key string) (bool, error) {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()
	return n.store.removePath(append(n.Path(), jsontext.Key(key)))
}

// String returns the string under key, reporting whether it was present and
// a string.
func (n *Node) String(key string) (string, bool) {
	v := n.Get(key)
	s, ok := v.(string)
	return s, ok
}

// Float returns the number under key.
func (n *Node) Float(key string) (float64, bool) {
	v := n.Get(key)
	f, ok := v.(float64)
	return f, ok
}

// Int returns the number under key truncated to an int.
func (n *Node) Int(key string) (int, bool) {
	f, ok := n.Float(key)
	return int(f), ok
}

// Bool returns the boolean under key.
func (n *Node) Bool(key string) (bool, bool) {
	v := n.Get(key)
	b, ok := v.(bool)
	return b, ok
}

// Value returns a deep copy of the subtree under this node, detached from
// the store.
func (n *Node) Value() any {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	v, ok := n.store.resolve(n.path)
	if !ok {
		return nil
	}
	return deepCopy(v)
}

// Len returns the number of keys or elements under this node.
func (n *Node) Len() int {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	switch v, _ := n.store.resolve(n.path); t := v.(type) {
	case map[string]any:
		return len(t)
	case []any:
		return len(t)
	default:
		return 0
	}
}

// Keys returns the node's object keys in sorted order.
func (n *Node) Keys() []string {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	v, _ := n.store.resolve(n.path)
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// resolve walks the value tree to the given path. Assumes s.mu is held.
func (s *Store) resolve(p jsontext.Path) (any, bool) {
	var cur any = s.value
	for _, st := range p {
		switch t := cur.(type) {
		case map[string]any:
			if st.IsIndex {
				return nil, false
			}
			v, ok := t[st.Key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !st.IsIndex || st.Index < 0 || st.Index >= len(t) {
				return nil, false
			}
			cur = t[st.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// applyValue mutates the value tree at path, creating missing intermediate
// objects the same way the text editor does.
func applyValue(root map[string]any, p jsontext.Path, v any) error {
	if len(p) == 0 {
		return &InvalidArgumentError{Op: "set", Value: v, Msg: "empty path"}
	}

	var cur any = root
	for i := 0; i < len(p)-1; i++ {
		st := p[i]
		switch t := cur.(type) {
		case map[string]any:
			if st.IsIndex {
				return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "numeric index into object"}
			}
			next, ok := t[st.Key]
			if !ok {
				created := map[string]any{}
				t[st.Key] = created
				cur = created
				continue
			}
			cur = next
		case []any:
			if !st.IsIndex || st.Index < 0 || st.Index >= len(t) {
				return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "array index out of range"}
			}
			cur = t[st.Index]
		default:
			return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "parent is not a container"}
		}
	}

	last := p[len(p)-1]
	switch t := cur.(type) {
	case map[string]any:
		if last.IsIndex {
			return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "numeric index into object"}
		}
		t[last.Key] = deepCopy(v)
	case []any:
		if !last.IsIndex {
			return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "key into array"}
		}
		switch {
		case last.Index >= 0 && last.Index < len(t):
			t[last.Index] = deepCopy(v)
		case last.Index == len(t):
			// The slice header changes on append, so rewrite the parent slot.
			return appendValue(root, p, v)
		default:
			return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "array index out of range"}
		}
	default:
		return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "parent is not a container"}
	}
	return nil
}

// appendValue grows the array at p[:len-1] by one element.
func appendValue(root map[string]any, p jsontext.Path, v any) error {
	parentPath := p[:len(p)-1]
	if len(parentPath) == 0 {
		return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "document root is not an array"}
	}

	var cur any = root
	for i := 0; i < len(parentPath)-1; i++ {
		st := parentPath[i]
		switch t := cur.(type) {
		case map[string]any:
			cur = t[st.Key]
		case []any:
			cur = t[st.Index]
		}
	}

	last := parentPath[len(parentPath)-1]
	switch t := cur.(type) {
	case map[string]any:
		arr, _ := t[last.Key].([]any)
		t[last.Key] = append(arr, deepCopy(v))
	case []any:
		arr, _ := t[last.Index].([]any)
		t[last.Index] = append(arr, deepCopy(v))
	default:
		return &InvalidArgumentError{Op: "set " + p.String(), Value: v, Msg: "parent is not a container"}
	}
	return nil
}

// removeValue deletes the entry at path from the value tree, if present.
func removeValue(root map[string]any, p jsontext.Path) {
	if len(p) == 0 {
		return
	}
	var cur any = root
	for i := 0; i < len(p)-1; i++ {
		st := p[i]
		switch t := cur.(type) {
		case map[string]any:
			cur = t[st.Key]
		case []any:
			if !st.IsIndex || st.Index < 0 || st.Index >= len(t) {
				return
			}
			cur = t[st.Index]
		default:
			return
		}
	}

	last := p[len(p)-1]
	switch t := cur.(type) {
	case map[string]any:
		if !last.IsIndex {
			delete(t, last.Key)
		}
	case []any:
		if last.IsIndex && last.Index >= 0 && last.Index < len(t) {
			shrinkArray(root, p)
		}
	}
}

// shrinkArray removes the element at p's final index, rewriting the parent
// slot so the shortened slice replaces the old header.
func shrinkArray(root map[string]any, p jsontext.Path) {
	parentPath := p[:len(p)-1]
	if len(parentPath) == 0 {
		return
	}

	var cur any = root
	for i := 0; i < len(parentPath)-1; i++ {
		st := parentPath[i]
		switch t := cur.(type) {
		case map[string]any:
			cur = t[st.Key]
		case []any:
			cur = t[st.Index]
		}
	}

	idx := p[len(p)-1].Index
	last := parentPath[len(parentPath)-1]
	switch t := cur.(type) {
	case map[string]any:
		if arr, ok := t[last.Key].([]any); ok {
			t[last.Key] = append(arr[:idx], arr[idx+1:]...)
		}
	case []any:
		if arr, ok := t[last.Index].([]any); ok {
			t[last.Index] = append(arr[:idx], arr[idx+1:]...)
		}
	}
}
