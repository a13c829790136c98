package session

import (
	"net/url"
	"strings"
)

// TokenFromRedirect extracts the bearer token from an OAuth callback URL or
// fragment. It accepts a full URL carrying "#token=<value>", a bare
// "token=<value>" fragment, or either with the leading "#" kept. Returns ""
// when no token is present.
func TokenFromRedirect(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = raw[idx+1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}
	return values.Get("token")
}
