package url

import (
	"fmt"
	"net/url"
	"strings"
)

// Sanitize() validates an API base URL and normalizes its path so endpoint
// paths can be appended with Join().
func Sanitize(uri string) (string, error) {
	// URL sanitanization for host argument
	parsedURI, err := url.ParseRequestURI(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse URI: %w", err)
	}
	if parsedURI.Scheme != "http" && parsedURI.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q (expected http or https)", parsedURI.Scheme)
	}
	if parsedURI.Host == "" {
		return "", fmt.Errorf("missing host in URI %q", uri)
	}
	// Collapse any doubled slashes
	for strings.Contains(parsedURI.Path, "//") {
		parsedURI.Path = strings.ReplaceAll(parsedURI.Path, "//", "/")
	}
	// Remove any trailing slashes
	parsedURI.Path = strings.TrimSuffix(parsedURI.Path, "/")
	parsedURI.RawPath = ""
	return parsedURI.String(), nil
}

// Join() appends path segments to base. Each segment is escaped so group
// names containing spaces or slashes stay a single path element.
func Join(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
