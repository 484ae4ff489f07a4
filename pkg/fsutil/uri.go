package fsutil

import (
	"fmt"
	"strings"
)

// uriUnsafe lists the characters QuoteString escapes when flattening a URI.
const uriUnsafe = "\\|{}[]<>\"^~_=!@#$%^&*"

// QuoteString escapes every byte of s found in bad, plus control and
// non-ASCII bytes, as a lowercase %xx sequence.
func QuoteString(s, bad string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c >= 0x7f || strings.IndexByte(bad, c) >= 0 {
			fmt.Fprintf(&b, "%%%02x", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// URIToFileName flattens a URI into a single path component. The access
// scheme and any credentials are dropped so two mirrors that only differ in
// login map to the same cache entry.
func URIToFileName(uri string) string {
	rest := uri
	if i := strings.IndexByte(rest, ':'); i > 0 && !strings.ContainsRune(rest[:i], '/') {
		rest = rest[i+1:]
	}

	var host, path string
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			host, path = rest[:i], rest[i:]
		} else {
			host, path = rest, "/"
		}
		if at := strings.LastIndexByte(host, '@'); at >= 0 {
			host = host[at+1:]
		}
	} else {
		path = rest
	}
	if path == "" {
		path = "/"
	} else if path[0] != '/' && host != "" {
		path = "/" + path
	}

	return strings.ReplaceAll(QuoteString(host+path, uriUnsafe), "/", "_")
}

// Extension returns the text after the last '.' of name, or name itself when
// it has none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name
	}
	return name[i+1:]
}

// Basename returns the last '/'-separated element of a URI or path.
func Basename(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
