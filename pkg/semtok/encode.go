package semtok

import (
	"github.com/walteh/witls/pkg/position"
	"github.com/walteh/witls/pkg/wit"
	"gitlab.com/tozd/go/errors"
)

var ErrOutOfOrder = errors.New("semantic token out of order")

// Record is one wire-level semantic token.
type Record struct {
	DeltaLine  uint32
	DeltaStart uint32
	Length     uint32
	TokenType  TokenType
	Modifiers  TokenModifier
}

// Builder accumulates records. Positions pushed must not go backwards.
type Builder struct {
	prevLine uint32
	prevChar uint32
	records  []Record
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Push appends a single-line token starting at start.
func (b *Builder) Push(start position.Place, length uint32, typ TokenType, mods TokenModifier) error {
	if start.Before(position.Place{Line: b.prevLine, Character: b.prevChar}) {
		return errors.Errorf("token at %s after %d:%d: %w", start, b.prevLine, b.prevChar, ErrOutOfOrder)
	}

	deltaLine := start.Line - b.prevLine
	deltaStart := start.Character
	if deltaLine == 0 {
		deltaStart = start.Character - b.prevChar
	}

	b.records = append(b.records, Record{
		DeltaLine:  deltaLine,
		DeltaStart: deltaStart,
		Length:     length,
		TokenType:  typ,
		Modifiers:  mods,
	})

	b.prevLine = start.Line
	b.prevChar = start.Character

	return nil
}

func (b *Builder) Records() []Record {
	return b.records
}

// Data flattens the records into the five-integer wire layout.
func (b *Builder) Data() []uint32 {
	return Flatten(b.records)
}

func Flatten(records []Record) []uint32 {
	data := make([]uint32, 0, len(records)*5)
	for _, r := range records {
		data = append(data, r.DeltaLine, r.DeltaStart, r.Length, uint32(r.TokenType), uint32(r.Modifiers))
	}
	return data
}

// Encode builds records for tokens in ascending span order. Whitespace and
// unknown text are not emitted; tokens whose span falls outside idx are
// skipped, as are tokens that would go backwards.
func Encode(idx *position.Index, tokens []wit.Token) []Record {
	b := NewBuilder()
	for _, tok := range tokens {
		category, ok := Classify(tok.Kind)
		if !ok {
			continue
		}
		typ, ok := category.TokenType()
		if !ok {
			continue
		}

		rng, err := idx.RangeOf(tok.Span.Start, tok.Span.End)
		if err != nil {
			continue
		}

		end := rng.End
		if !rng.SingleLine() {
			end, err = idx.LineEnd(rng.Start.Line)
			if err != nil {
				continue
			}
		}
		if end.Character <= rng.Start.Character {
			continue
		}

		if err := b.Push(rng.Start, end.Character-rng.Start.Character, typ, 0); err != nil {
			continue
		}
	}
	return b.Records()
}

// EncodeText tokenizes and encodes text. A lexing failure yields no records
// along with the error.
func EncodeText(text string) ([]Record, error) {
	tokens, err := wit.Tokenize(text)
	if err != nil {
		return nil, errors.Errorf("tokenizing: %w", err)
	}
	return Encode(position.NewIndex(text), tokens), nil
}

// Absolute is a decoded record with its position restored.
type Absolute struct {
	Line      uint32
	Start     uint32
	Length    uint32
	TokenType TokenType
	Modifiers TokenModifier
}

// Decode reverses the delta encoding of a flattened stream. A trailing
// partial record is ignored.
func Decode(data []uint32) []Absolute {
	out := make([]Absolute, 0, len(data)/5)
	var line, start uint32
	for i := 0; i+5 <= len(data); i += 5 {
		if data[i] > 0 {
			line += data[i]
			start = data[i+1]
		} else {
			start += data[i+1]
		}
		out = append(out, Absolute{
			Line:      line,
			Start:     start,
			Length:    data[i+2],
			TokenType: TokenType(data[i+3]),
			Modifiers: TokenModifier(data[i+4]),
		})
	}
	return out
}
