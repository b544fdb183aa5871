// Package mapsafe provides typed access to loosely typed parameter maps.
package mapsafe

// Get retrieves a typed value from a map[string]any. Numeric values are
// converted between int and float64 since YAML and JSON decoders disagree
// on which one they produce. If the key is missing or the value cannot be
// converted, the default value is returned.
func Get[T any](m map[string]any, key string, defaultValue T) T {
	val, ok := m[key]
	if !ok {
		return defaultValue
	}

	switch any(defaultValue).(type) {
	case int:
		switch x := val.(type) {
		case int:
			return any(x).(T)
		case float64:
			return any(int(x)).(T)
		}
	case float64:
		switch x := val.(type) {
		case float64:
			return any(x).(T)
		case int:
			return any(float64(x)).(T)
		}
	}

	if v, ok := val.(T); ok {
		return v
	}

	return defaultValue
}
