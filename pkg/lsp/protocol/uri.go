package protocol

import (
	"net/url"
	"path/filepath"
)

// Path returns the filesystem path of a file:// URI. A bare path is returned
// cleaned, and any other scheme yields "".
func (uri DocumentURI) Path() string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(string(uri))
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = string(uri)
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
	}
	return filepath.Clean(filepath.FromSlash(path))
}

// URIFromPath converts a filesystem path to a file:// URI.
func URIFromPath(path string) DocumentURI {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return DocumentURI(u.String())
}
