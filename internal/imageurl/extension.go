// Package imageurl derives storage extensions from image URLs.
package imageurl

import (
	"net/url"
	"path"
	"strings"
)

// Resolver maps a URL to one of a fixed set of accepted extensions.
type Resolver struct {
	accepted map[string]struct{}
	fallback string
}

// NewResolver returns a Resolver accepting the given extensions (with the
// leading dot). Extensions are matched case-insensitively.
func NewResolver(accepted []string, fallback string) *Resolver {
	r := &Resolver{accepted: make(map[string]struct{}, len(accepted)), fallback: strings.ToLower(fallback)}
	for _, ext := range accepted {
		r.accepted[strings.ToLower(ext)] = struct{}{}
	}
	return r
}

// Resolve returns the extension of the URL's path, or the fallback when the
// path has none or it is not accepted. defaulted reports the substitution.
func (r *Resolver) Resolve(rawURL string) (ext string, defaulted bool) {
	ext = Extension(rawURL)
	if _, ok := r.accepted[ext]; ok && ext != "" {
		return ext, false
	}
	return r.fallback, true
}

// Default returns the fallback extension.
func (r *Resolver) Default() string {
	return r.fallback
}

// Extension returns the lower-cased suffix after the last dot in the URL's
// path component, including the dot, or "" if there is none. The query and
// fragment are ignored.
func Extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(path.Ext(u.Path))
}
