package urlutil

import (
	"net/url"
	"strings"
)

// FileScheme is the scheme used for local-mirror crawls.
const FileScheme = "file"

// FilePrefix is the literal prefix identifying local-file URLs.
const FilePrefix = "file://"

// IsValid reports whether a URL has both a scheme and a host.
// Local-file URLs are exempt from the host requirement; whether the
// path actually exists is the fetcher's concern, not the classifier's.
func IsValid(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Scheme == FileScheme
}

// IsFileURL reports whether a URL addresses the local filesystem.
func IsFileURL(raw string) bool {
	return strings.HasPrefix(raw, FilePrefix)
}

// Host returns the network location of a URL, or "" if it has none.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// SameScope reports whether candidate may be traversed from base:
// local-file URLs are always in scope, otherwise the candidate must be
// valid and share base's host exactly. Hosts are compared as raw
// strings with no normalization, so URLs differing only in case or an
// explicit default port stay distinct.
func SameScope(candidate, base string) bool {
	if IsFileURL(candidate) {
		return true
	}
	if !IsValid(candidate) {
		return false
	}
	h := Host(base)
	return h != "" && Host(candidate) == h
}

// Resolve joins a possibly-relative candidate against base, returning
// the absolute form. The second result is false when the candidate is
// not parseable as a URL reference.
func Resolve(base *url.URL, candidate string) (string, bool) {
	ref, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// FilePath converts a file:// URL to a local filesystem path. The
// second result is false for non-file URLs or an empty path.
func FilePath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != FileScheme || u.Path == "" {
		return "", false
	}
	return u.Path, true
}
