package selection

import (
	"sort"
	"strings"

	"github.com/aleister1102/apiextract/internal/jsonpath"
	"github.com/aleister1102/apiextract/internal/models"
)

// RootPath selects the whole document
const RootPath = "."

// Suggestion is a candidate path to an array found in response content
type Suggestion struct {
	Path          string  `json:"path"`
	Occurrences   int     `json:"occurrences"`
	AverageLength float64 `json:"average_length"`
}

// Suggestions lists array-valued paths up to two levels deep across responses, most common
// first, then longest on average, then by path.
func Suggestions(responses []models.ApiResponse) []Suggestion {
	counts := make(map[string]int)
	totals := make(map[string]int)

	for _, r := range responses {
		for path, length := range arrayPaths(r.Content) {
			counts[path]++
			totals[path] += length
		}
	}

	suggestions := make([]Suggestion, 0, len(counts))
	for path, n := range counts {
		suggestions = append(suggestions, Suggestion{
			Path:          path,
			Occurrences:   n,
			AverageLength: float64(totals[path]) / float64(n),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.AverageLength != b.AverageLength {
			return a.AverageLength > b.AverageLength
		}
		return a.Path < b.Path
	})
	return suggestions
}

// SuggestPath returns the best candidate path, or "" when no response holds an array
func SuggestPath(responses []models.ApiResponse) string {
	suggestions := Suggestions(responses)
	if len(suggestions) == 0 {
		return ""
	}
	return suggestions[0].Path
}

// arrayPaths maps each array path of content to its length. A path is recorded once per document.
func arrayPaths(content any) map[string]int {
	found := make(map[string]int)

	switch v := content.(type) {
	case []any:
		found[RootPath] = len(v)
	case map[string]any:
		for key, child := range v {
			if !usableKey(key) {
				continue
			}
			switch c := child.(type) {
			case []any:
				found[key] = len(c)
			case map[string]any:
				for innerKey, inner := range c {
					if arr, ok := inner.([]any); ok && usableKey(innerKey) {
						found[key+"."+innerKey] = len(arr)
					}
				}
			}
		}
	}
	return found
}

// usableKey rejects keys a dotted path cannot address
func usableKey(key string) bool {
	return !strings.Contains(key, ".") && jsonpath.IsDottedPath(key)
}
