package diagnostic

import (
	"bufio"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"fortio.org/safecast"
	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/mattn/go-runewidth"
	"github.com/walteh/witls/pkg/position"
)

/*
The validator reports problems the way most Rust tools do:

	error: undefined type `type4`
	  --> world.wit:11:45
	   |
	11 |   export foo: func() -> tuple<type1, type2, type3, type4>;
	   |                                                     ^----

Chained causes put the located message further down, indented and numbered:

	Caused by:
	    0: failed to parse package: /pkg
	    1: name `type4` is not defined
	            --> /pkg/world.wit:11:45

Each located block needs a message, a locator and a marker. Anything else is
ignored, and a block missing one of the three is dropped.
*/

var (
	locatorRe = regexp.MustCompile(`^\s*-->\s*(.+):(\d+):(\d+)\s*$`)
	sourceRe  = regexp.MustCompile(`^\s*(\d+)\s*\| ?(.*)$`)
	markerRe  = regexp.MustCompile(`^\s*\|( *)([\^\-]+)\s*$`)
	gutterRe  = regexp.MustCompile(`^\s*\|\s*$`)
	kindRe    = regexp.MustCompile(`^(error|warning|note|help|info)(?:\[[^\]]*\])?:\s*(.*)$`)
	causeRe   = regexp.MustCompile(`^\d+:\s*(.*)$`)
)

type pendingBlock struct {
	file    string
	line    int
	column  int
	source  string
	hasLine bool
}

type parser struct {
	baseDir  string
	source   string
	report   Report
	message  string
	severity DiagnosticSeverity
	pending  *pendingBlock
}

// Parse extracts diagnostics from validator output. Relative paths resolve
// against baseDir. Output without a single complete block yields an empty
// report.
func Parse(output string, baseDir string, source string) Report {
	p := &parser{
		baseDir:  baseDir,
		source:   source,
		report:   Report{},
		severity: SeverityError,
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line(strings.TrimRight(scanner.Text(), "\r"))
	}

	return p.report
}

func (p *parser) line(text string) {
	trimmed := strings.TrimSpace(text)

	switch {
	case trimmed == "":
		return

	case strings.HasPrefix(trimmed, "-->"):
		p.pending = nil
		m := locatorRe.FindStringSubmatch(text)
		if m == nil {
			return
		}
		line, err1 := strconv.Atoi(m[2])
		col, err2 := strconv.Atoi(m[3])
		if err1 != nil || err2 != nil || line < 1 || col < 1 || p.message == "" {
			return
		}
		p.pending = &pendingBlock{file: strings.TrimSpace(m[1]), line: line, column: col}

	case gutterRe.MatchString(text):
		return

	case markerRe.MatchString(text):
		m := markerRe.FindStringSubmatch(text)
		if p.pending != nil {
			p.emit(len(m[2]))
		}
		p.pending = nil

	case sourceRe.MatchString(text):
		m := sourceRe.FindStringSubmatch(text)
		if p.pending != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n == p.pending.line {
				p.pending.source = m[2]
				p.pending.hasLine = true
			}
		}

	default:
		p.pending = nil
		p.setMessage(trimmed)
	}
}

func (p *parser) setMessage(trimmed string) {
	if strings.EqualFold(trimmed, "caused by:") {
		return
	}
	if m := kindRe.FindStringSubmatch(trimmed); m != nil {
		p.severity = severityFromKind(m[1])
		p.message = strings.TrimSpace(m[2])
		return
	}
	if m := causeRe.FindStringSubmatch(trimmed); m != nil {
		p.message = strings.TrimSpace(m[1])
		return
	}
	p.message = trimmed
}

func (p *parser) emit(markerWidth int) {
	b := p.pending

	path := b.file
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.baseDir, path)
	}

	start, end := markerColumns(b.source, b.hasLine, b.column-1, markerWidth)

	// positions past the LSP's uint32 range cannot be published
	line, lineErr := safecast.Conv[uint32](b.line - 1)
	from, fromErr := safecast.Conv[uint32](start)
	to, toErr := safecast.Conv[uint32](end)
	if lineErr != nil || fromErr != nil || toErr != nil {
		return
	}

	p.report.add(Diagnostic{
		URI: PathToURI(path),
		Range: position.Range{
			Start: position.Place{Line: line, Character: from},
			End:   position.Place{Line: line, Character: to},
		},
		Severity: p.severity,
		Message:  p.message,
		Source:   p.source,
	})
}

// markerColumns maps a zero-based character column and a marker run measured
// in terminal cells onto UTF-16 columns of the source line. Without the source
// line every character is assumed to be one cell and one unit wide.
func markerColumns(source string, hasLine bool, startChar, width int) (int, int) {
	if !hasLine {
		return startChar, startChar + width
	}

	runes := []rune(source)
	if startChar >= len(runes) {
		start := utf16Len(runes) + (startChar - len(runes))
		return start, start + width
	}

	start := utf16Len(runes[:startChar])
	end := start
	remaining := width

	scanner := bufio.NewScanner(strings.NewReader(string(runes[startChar:])))
	scanner.Split(textseg.ScanGraphemeClusters)
	for remaining > 0 && scanner.Scan() {
		cluster := scanner.Text()
		cells := runewidth.StringWidth(cluster)
		if cells < 1 {
			cells = 1
		}
		remaining -= cells
		end += utf16Len([]rune(cluster))
	}
	if remaining > 0 {
		end += remaining
	}

	return start, end
}

func utf16Len(runes []rune) int {
	return len(utf16.Encode(runes))
}
