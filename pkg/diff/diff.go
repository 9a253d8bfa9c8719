// Package diff renders readable differences for test failures.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// Values pretty prints both values, exported fields only, and returns a line
// diff from got to want. Equal values give "".
func Values[T any](want, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	return Lines(printer.Sprint(want), printer.Sprint(got))
}

// Lines diffs two texts line by line. Equal texts give "".
func Lines(want, got string) string {
	if want == got {
		return ""
	}
	d := diff.Diff(got, want)
	if d == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\ngot -> want (+ add, - remove):\n\n")
	sb.WriteString(d)
	return sb.String()
}
