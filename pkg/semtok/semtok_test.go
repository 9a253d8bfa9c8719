package semtok_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/witls/pkg/diff"
	"github.com/walteh/witls/pkg/position"
	"github.com/walteh/witls/pkg/semtok"
	"github.com/walteh/witls/pkg/wit"
)

func TestClassifyIsTotal(t *testing.T) {
	for _, k := range wit.Kinds() {
		category, ok := semtok.Classify(k)
		require.True(t, ok, "token kind %q has no category", k)
		require.NotEqual(t, "invalid", category.String())
	}

	_, ok := semtok.Classify(wit.TokenKind(len(wit.Kinds())))
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		kind wit.TokenKind
		want semtok.Category
	}{
		{wit.KindWhitespace, semtok.CategoryWhitespace},
		{wit.KindDocComment, semtok.CategoryComment},
		{wit.KindComment, semtok.CategoryComment},
		{wit.KindWorld, semtok.CategoryKeyword},
		{wit.KindShared, semtok.CategoryKeyword},
		{wit.KindFrom, semtok.CategoryKeyword},
		{wit.KindFloat64, semtok.CategoryType},
		{wit.KindTuple, semtok.CategoryType},
		{wit.KindArrow, semtok.CategoryOperator},
		{wit.KindSemicolon, semtok.CategoryOperator},
		{wit.KindIdentifier, semtok.CategoryIdentifier},
		{wit.KindNamespace, semtok.CategoryNamespace},
		{wit.KindInteger, semtok.CategoryNumber},
		{wit.KindUnknown, semtok.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, ok := semtok.Classify(tt.kind)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLegend(t *testing.T) {
	legend := semtok.NewLegend()

	require.Len(t, legend.TokenTypes, 23)
	require.Len(t, legend.TokenModifiers, 10)
	assert.Equal(t, "keyword", legend.TokenTypes[semtok.TypeKeyword])
	assert.Equal(t, "namespace", legend.TokenTypes[semtok.TypeNamespace])
	assert.Equal(t, "type", legend.TokenTypes[semtok.TypeType])
	assert.Equal(t, "variable", legend.TokenTypes[semtok.TypeVariable])
	assert.Equal(t, "operator", legend.TokenTypes[semtok.TypeOperator])
	assert.Equal(t, "comment", legend.TokenTypes[semtok.TypeComment])
	assert.Equal(t, "number", legend.TokenTypes[semtok.TypeNumber])
	assert.Equal(t, "decorator", legend.TokenTypes[len(legend.TokenTypes)-1])

	legend.TokenTypes[0] = "mutated"
	assert.Equal(t, "keyword", semtok.NewLegend().TokenTypes[0])
}

func TestEncodeText(t *testing.T) {
	text := "package a:b;\n\nworld w {\n  import f: func();\n}\n"

	records, err := semtok.EncodeText(text)
	require.NoError(t, err)

	got := semtok.Flatten(records)
	want := []uint32{
		0, 0, 7, uint32(semtok.TypeKeyword), 0, // package
		0, 8, 3, uint32(semtok.TypeNamespace), 0, // a:b
		0, 3, 1, uint32(semtok.TypeOperator), 0, // ;
		2, 0, 5, uint32(semtok.TypeKeyword), 0, // world
		0, 6, 1, uint32(semtok.TypeVariable), 0, // w
		0, 2, 1, uint32(semtok.TypeOperator), 0, // {
		1, 2, 6, uint32(semtok.TypeKeyword), 0, // import
		0, 7, 1, uint32(semtok.TypeVariable), 0, // f
		0, 1, 1, uint32(semtok.TypeOperator), 0, // :
		0, 2, 4, uint32(semtok.TypeKeyword), 0, // func
		0, 4, 1, uint32(semtok.TypeOperator), 0, // (
		0, 1, 1, uint32(semtok.TypeOperator), 0, // )
		0, 1, 1, uint32(semtok.TypeOperator), 0, // ;
		1, 0, 1, uint32(semtok.TypeOperator), 0, // }
	}
	assert.Equal(t, want, got)
}

func TestDecodeReproducesTokens(t *testing.T) {
	text := "/// ünïcödé docs 😀\ninterface greet {\n  /* multi\n  line */ hello: func(n: u32) -> string;\n\n  x: list<tuple<s8, 7>>;\n}\n"

	tokens, err := wit.Tokenize(text)
	require.NoError(t, err)

	idx := position.NewIndex(text)
	decoded := semtok.Decode(semtok.Flatten(semtok.Encode(idx, tokens)))

	var want []semtok.Absolute
	for _, tok := range tokens {
		category, _ := semtok.Classify(tok.Kind)
		typ, ok := category.TokenType()
		if !ok {
			continue
		}
		rng, err := idx.RangeOf(tok.Span.Start, tok.Span.End)
		require.NoError(t, err)
		end := rng.End
		if !rng.SingleLine() {
			end, err = idx.LineEnd(rng.Start.Line)
			require.NoError(t, err)
		}
		want = append(want, semtok.Absolute{
			Line:      rng.Start.Line,
			Start:     rng.Start.Character,
			Length:    end.Character - rng.Start.Character,
			TokenType: typ,
		})
	}

	if d := diff.Values(want, decoded); d != "" {
		t.Fatal(d)
	}
}

func TestEncodeMultiLineTokenTruncated(t *testing.T) {
	text := "/* one\ntwo */ world"

	records, err := semtok.EncodeText(text)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, semtok.Record{DeltaLine: 0, DeltaStart: 0, Length: 6, TokenType: semtok.TypeComment}, records[0])
	assert.Equal(t, semtok.Record{DeltaLine: 1, DeltaStart: 7, Length: 5, TokenType: semtok.TypeKeyword}, records[1])
}

func TestEncodeSkipsStaleTokens(t *testing.T) {
	tokens, err := wit.Tokenize("world w { }")
	require.NoError(t, err)

	// the buffer shrank after tokenizing
	idx := position.NewIndex("world")
	records := semtok.Encode(idx, tokens)

	require.Len(t, records, 1)
	assert.Equal(t, uint32(5), records[0].Length)
}

func TestEncodeSkipsUnknown(t *testing.T) {
	records, err := semtok.EncodeText("# u8 ~")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, semtok.Record{DeltaLine: 0, DeltaStart: 2, Length: 2, TokenType: semtok.TypeType}, records[0])
}

func TestEncodeTextLexError(t *testing.T) {
	records, err := semtok.EncodeText("world \xff")
	require.ErrorIs(t, err, wit.ErrLex)
	assert.Empty(t, records)
}

func TestBuilderRejectsBackwards(t *testing.T) {
	b := semtok.NewBuilder()
	require.NoError(t, b.Push(position.Place{Line: 2, Character: 4}, 1, semtok.TypeKeyword, 0))
	require.NoError(t, b.Push(position.Place{Line: 2, Character: 4}, 1, semtok.TypeKeyword, 0))
	err := b.Push(position.Place{Line: 2, Character: 3}, 1, semtok.TypeKeyword, 0)
	require.ErrorIs(t, err, semtok.ErrOutOfOrder)
	assert.Len(t, b.Records(), 2)
	assert.Equal(t, []uint32{2, 4, 1, 0, 0, 0, 0, 1, 0, 0}, b.Data())
}

func TestDecodeIgnoresPartialRecord(t *testing.T) {
	decoded := semtok.Decode([]uint32{1, 2, 3, 4, 0, 9, 9})
	require.Len(t, decoded, 1)
	assert.Equal(t, semtok.Absolute{Line: 1, Start: 2, Length: 3, TokenType: 4}, decoded[0])
}
