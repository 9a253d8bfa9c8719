// Package diagnostic runs the external WIT validator over a package directory
// and turns its error output into positioned diagnostics.
package diagnostic

import (
	"net/url"
	"path/filepath"
	"sort"

	"github.com/walteh/witls/pkg/position"
)

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	URI      string
	Range    position.Range
	Severity DiagnosticSeverity
	Message  string
	Source   string
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	SeverityError       DiagnosticSeverity = "error"
	SeverityWarning     DiagnosticSeverity = "warning"
	SeverityInformation DiagnosticSeverity = "information"
	SeverityHint        DiagnosticSeverity = "hint"
)

func severityFromKind(kind string) DiagnosticSeverity {
	switch kind {
	case "warning":
		return SeverityWarning
	case "note", "info":
		return SeverityInformation
	case "help":
		return SeverityHint
	}
	return SeverityError
}

// Report groups diagnostics by file URI. One validator run can report on
// several files of the same package.
type Report map[string][]Diagnostic

// URIs returns the files in the report in a stable order.
func (r Report) URIs() []string {
	uris := make([]string, 0, len(r))
	for uri := range r {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

func (r Report) Count() int {
	n := 0
	for _, diags := range r {
		n += len(diags)
	}
	return n
}

func (r Report) add(d Diagnostic) {
	r[d.URI] = append(r[d.URI], d)
}

// PathToURI converts a filesystem path to a file:// URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
