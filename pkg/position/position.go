package position

import (
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	"gitlab.com/tozd/go/errors"
)

var ErrOutOfRange = errors.New("position out of range")

// Place is a zero-based line and column. Character is counted in UTF-16 code
// units, which is what editors speaking LSP expect.
type Place struct {
	Line      uint32
	Character uint32
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Before reports whether p sorts strictly before o.
func (p Place) Before(o Place) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

type Range struct {
	Start Place
	End   Place
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// SingleLine reports whether the range starts and ends on the same line.
func (r Range) SingleLine() bool {
	return r.Start.Line == r.End.Line
}

// Index maps character (rune) offsets of a text to line/column places and
// back. Building it is a single pass over the text; lookups binary search the
// line table.
type Index struct {
	text       string
	lineRunes  []int // rune offset of each line start
	lineBytes  []int // byte offset of each line start
	totalRunes int
}

func NewIndex(text string) *Index {
	idx := &Index{
		text:      text,
		lineRunes: []int{0},
		lineBytes: []int{0},
	}

	runes := 0
	for i, r := range text {
		runes++
		if r == '\n' {
			idx.lineRunes = append(idx.lineRunes, runes)
			idx.lineBytes = append(idx.lineBytes, i+1)
		}
	}
	idx.totalRunes = runes

	return idx
}

// Len is the number of characters in the indexed text.
func (me *Index) Len() int {
	return me.totalRunes
}

func (me *Index) LineCount() int {
	return len(me.lineRunes)
}

// LineText returns the text of a line without its trailing newline.
func (me *Index) LineText(line int) string {
	if line < 0 || line >= len(me.lineBytes) {
		return ""
	}
	start := me.lineBytes[line]
	end := len(me.text)
	if line+1 < len(me.lineBytes) {
		end = me.lineBytes[line+1] - 1
	}
	return me.text[start:end]
}

// PositionAt converts a character offset into a place. Offsets equal to Len
// are valid and address the end of the text.
func (me *Index) PositionAt(offset int) (Place, error) {
	if offset < 0 || offset > me.totalRunes {
		return Place{}, errors.Errorf("offset %d of %d: %w", offset, me.totalRunes, ErrOutOfRange)
	}

	line := sort.Search(len(me.lineRunes), func(i int) bool {
		return me.lineRunes[i] > offset
	}) - 1

	units := 0
	remaining := offset - me.lineRunes[line]
	for _, r := range me.text[me.lineBytes[line]:] {
		if remaining == 0 {
			break
		}
		units += runeUnits(r)
		remaining--
	}

	return newPlace(line, units)
}

// RangeOf converts a half-open [start, end) character span into a range.
func (me *Index) RangeOf(start, end int) (Range, error) {
	if end < start {
		return Range{}, errors.Errorf("span [%d, %d) is inverted: %w", start, end, ErrOutOfRange)
	}
	s, err := me.PositionAt(start)
	if err != nil {
		return Range{}, err
	}
	e, err := me.PositionAt(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// OffsetAt is the inverse of PositionAt. A character that lands in the middle
// of a surrogate pair resolves to the start of that rune.
func (me *Index) OffsetAt(p Place) (int, error) {
	line := int(p.Line)
	if line >= len(me.lineRunes) {
		return 0, errors.Errorf("line %d of %d: %w", p.Line, len(me.lineRunes), ErrOutOfRange)
	}

	want := int(p.Character)
	units := 0
	offset := me.lineRunes[line]
	for _, r := range me.LineText(line) {
		if units >= want {
			return offset, nil
		}
		n := runeUnits(r)
		if units+n > want {
			return offset, nil
		}
		units += n
		offset++
	}

	if units < want {
		return 0, errors.Errorf("character %d past end of line %d: %w", p.Character, p.Line, ErrOutOfRange)
	}

	return offset, nil
}

// LineEnd is the place just past the last character of a line, before its
// newline.
func (me *Index) LineEnd(line uint32) (Place, error) {
	if int(line) >= len(me.lineRunes) {
		return Place{}, errors.Errorf("line %d of %d: %w", line, len(me.lineRunes), ErrOutOfRange)
	}
	units := 0
	for _, r := range me.LineText(int(line)) {
		units += runeUnits(r)
	}
	return newPlace(int(line), units)
}

func runeUnits(r rune) int {
	if r == utf8.RuneError {
		return 1
	}
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

func newPlace(line, character int) (Place, error) {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		return Place{}, errors.Errorf("line %d: %w", line, err)
	}
	c, err := safecast.Conv[uint32](character)
	if err != nil {
		return Place{}, errors.Errorf("character %d: %w", character, err)
	}
	return Place{Line: l, Character: c}, nil
}
