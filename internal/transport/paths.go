package transport

import (
	"strconv"
	"strings"
)

// Lookup walks a decoded JSON value along a dotted path. Numeric segments
// index into arrays, so "images.0.url" reads the first image's url.
func Lookup(payload any, path string) (any, bool) {
	current := payload
	if path == "" {
		return current, current != nil
	}
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, current != nil
}

// FirstString evaluates paths in order and returns the first non-empty string
func FirstString(payload any, paths ...string) (string, bool) {
	for _, path := range paths {
		value, ok := Lookup(payload, path)
		if !ok {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// errorMessagePaths lists where providers put a human-readable failure message
var errorMessagePaths = []string{
	"error.message",
	"error",
	"detail.message",
	"detail.0.msg",
	"detail",
	"message",
}

// ErrorMessage extracts a provider error message from a decoded error body
func ErrorMessage(payload any) string {
	msg, _ := FirstString(payload, errorMessagePaths...)
	return msg
}
