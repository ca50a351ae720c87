package render

import (
	"net/url"
	"regexp"
	"strings"
)

const minPartsForHandleMatch = 2

//nolint:gochecknoglobals // Compiled once, never mutated.
var handlePathRe = regexp.MustCompile(`(?:/users/|/profile/|/u/|@)([^/]+)`)

// DisplayHandle derives "@name" from a profile URL of the common shapes
// /users/<name>, /profile/<name>, /u/<name> and /@<name>. A URL that does not
// parse as absolute or has no such path yields fallbackName unchanged.
func DisplayHandle(authorURL string, fallbackName string) string {
	raw := strings.TrimSpace(authorURL)
	if raw == "" {
		return fallbackName
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fallbackName
	}

	m := handlePathRe.FindStringSubmatch(u.EscapedPath())
	if len(m) < minPartsForHandleMatch || m[1] == "" {
		return fallbackName
	}

	return "@" + m[1]
}
