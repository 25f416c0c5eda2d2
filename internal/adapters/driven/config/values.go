// Package config holds the value coercion shared by the ConfigStore adapters.
// TOML decodes integers as int64 and JSON decodes all numbers as float64, so
// the typed getters accept every numeric kind.
package config

// String returns v if it is a string, otherwise "".
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int converts integer and float values, truncating floats. Other kinds give 0.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float converts any numeric value. Other kinds give 0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
