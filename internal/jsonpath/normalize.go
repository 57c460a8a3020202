package jsonpath

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	identifierSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// jqSyntax lists characters that only appear in jq expressions, never in a dotted path
	jqSyntax = " \t\r\n[]|(),\"'?*+/<>=!{}$;#"
)

// IsDottedPath reports whether path is a plain sequence of dot-separated segments
func IsDottedPath(path string) bool {
	if path == "" || strings.HasPrefix(path, ".") || strings.ContainsAny(path, jqSyntax) {
		return false
	}
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return false
		}
	}
	return true
}

// ToJQ rewrites path into a jq program. Dotted paths are translated segment by segment
// (a.c.1 becomes .a.c[1], x-y becomes .["x-y"]); other input only gains a leading dot.
func ToJQ(path string) string {
	p := strings.TrimSpace(path)
	if IsIdentity(p) {
		return "."
	}
	if !IsDottedPath(p) {
		if strings.HasPrefix(p, ".") {
			return p
		}
		return "." + p
	}

	var b strings.Builder
	for _, segment := range strings.Split(p, ".") {
		switch {
		case indexSegment.MatchString(segment):
			b.WriteString("[" + segment + "]")
		case identifierSegment.MatchString(segment):
			b.WriteString("." + segment)
		default:
			quoted, _ := json.Marshal(segment)
			b.WriteString(`.[` + string(quoted) + `]`)
		}
	}
	out := b.String()
	if strings.HasPrefix(out, "[") {
		out = "." + out
	}
	return out
}
