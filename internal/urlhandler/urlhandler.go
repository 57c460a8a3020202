package urlhandler

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// UnknownHost is reported for locations that do not parse as absolute URLs
const UnknownHost = "unknown"

// Regex for cleaning filenames
var (
	unsafeFilenameCharsRegex = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)
	multipleUnderscoresRegex = regexp.MustCompile(`_+`)
)

// Location is the host and path split out of a captured URL
type Location struct {
	Hostname string
	Pathname string
}

// ParseLocation splits an absolute URL into hostname and pathname.
// Anything that is not an absolute URL yields hostname "unknown" and the raw string as pathname.
func ParseLocation(rawURL string) Location {
	trimmed := strings.TrimSpace(rawURL)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || (parsed.Host == "" && parsed.Opaque == "") {
		return Location{Hostname: UnknownHost, Pathname: rawURL}
	}

	pathname := parsed.EscapedPath()
	if parsed.Opaque != "" {
		pathname = parsed.Opaque
	}
	if pathname == "" && isHierarchical(parsed.Scheme) {
		pathname = "/"
	}

	return Location{
		Hostname: strings.ToLower(parsed.Hostname()),
		Pathname: pathname,
	}
}

func isHierarchical(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https", "ws", "wss", "ftp":
		return true
	default:
		return false
	}
}

// RegistrableDomain returns the eTLD+1 of hostname ("example.co.uk" for "api.example.co.uk").
// Hosts without a registrable domain (IPs, localhost, "unknown") are returned lowercased as-is.
func RegistrableDomain(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// SanitizeFilename creates a safe filename string from a URL or any input string.
// It removes the protocol, replaces unsafe characters with underscores, and cleans up underscores.
func SanitizeFilename(input string) string {
	name := input
	if i := strings.Index(name, "://"); i != -1 {
		name = name[i+3:]
	}

	name = unsafeFilenameCharsRegex.ReplaceAllString(name, "_")
	name = multipleUnderscoresRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return "sanitized_empty_input"
	}
	return name
}
