package jsonpath

import (
	"regexp"
	"strconv"
	"strings"
)

// Strategy evaluates a path expression against one decoded JSON value.
// A nil value with a nil error means the path selected nothing.
type Strategy interface {
	Name() string
	Evaluate(value any, path string) (any, error)
}

var indexSegment = regexp.MustCompile(`^\d+$`)

// IsIdentity reports whether path selects the whole value
func IsIdentity(path string) bool {
	p := strings.TrimSpace(path)
	return p == "" || p == "."
}

// PathStrategy walks dotted segments directly: numeric segments index arrays,
// anything else reads an object key. It never fails.
type PathStrategy struct{}

// NewPathStrategy creates the direct traversal strategy
func NewPathStrategy() *PathStrategy {
	return &PathStrategy{}
}

func (ps *PathStrategy) Name() string {
	return "path"
}

func (ps *PathStrategy) Evaluate(value any, path string) (any, error) {
	if IsIdentity(path) {
		return value, nil
	}

	current := value
	for _, segment := range strings.Split(strings.TrimSpace(path), ".") {
		if current == nil {
			return nil, nil
		}
		if indexSegment.MatchString(segment) {
			arr, ok := current.([]any)
			if !ok {
				return nil, nil
			}
			idx, err := strconv.Atoi(segment)
			if err != nil || idx >= len(arr) {
				return nil, nil
			}
			current = arr[idx]
			continue
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, nil
		}
		next, exists := obj[segment]
		if !exists {
			return nil, nil
		}
		current = next
	}
	return current, nil
}
