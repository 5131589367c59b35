package store

// deepCopy clones a generic JSON value tree. Scalars are returned as-is.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, cv := range t {
			out[k] = deepCopy(cv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, cv := range t {
			out[i] = deepCopy(cv)
		}
		return out
	default:
		return v
	}
}

// overlay merges src into dst: object keys merge recursively, scalars and
// arrays replace wholesale, src wins on conflicts.
func overlay(dst, src map[string]any) {
	for k, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				overlay(dm, sm)
				continue
			}
		}
		dst[k] = deepCopy(sv)
	}
}
