package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/witls/pkg/position"
)

func TestPositionAt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   position.Place
	}{
		{
			name:   "empty text",
			text:   "",
			offset: 0,
			want:   position.Place{Line: 0, Character: 0},
		},
		{
			name:   "single line",
			text:   "package foo:bar;",
			offset: 8,
			want:   position.Place{Line: 0, Character: 8},
		},
		{
			name:   "second line start",
			text:   "world w {\n  import x;\n}",
			offset: 10,
			want:   position.Place{Line: 1, Character: 0},
		},
		{
			name:   "newline character belongs to its line",
			text:   "ab\ncd",
			offset: 2,
			want:   position.Place{Line: 0, Character: 2},
		},
		{
			name:   "end of text",
			text:   "ab\ncd",
			offset: 5,
			want:   position.Place{Line: 1, Character: 2},
		},
		{
			name:   "multi-byte characters count once",
			text:   "// héllo\nworld",
			offset: 8,
			want:   position.Place{Line: 0, Character: 8},
		},
		{
			name:   "astral characters take two utf16 units",
			text:   "/// 😀 x",
			offset: 6,
			want:   position.Place{Line: 0, Character: 7},
		},
		{
			name:   "offset after astral character on second line",
			text:   "a\n😀😀b",
			offset: 4,
			want:   position.Place{Line: 1, Character: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := position.NewIndex(tt.text)
			got, err := idx.PositionAt(tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPositionAtOutOfRange(t *testing.T) {
	idx := position.NewIndex("héllo")

	_, err := idx.PositionAt(6)
	require.ErrorIs(t, err, position.ErrOutOfRange)

	_, err = idx.PositionAt(-1)
	require.ErrorIs(t, err, position.ErrOutOfRange)

	_, err = idx.RangeOf(3, 2)
	require.ErrorIs(t, err, position.ErrOutOfRange)
}

func TestOffsetAtRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"package local:demo;\n\ninterface greet {\n  hello: func(name: string) -> string;\n}\n",
		"// こんにちは\nworld w {}\n",
		"/// 😀 emoji\r\ntype t = u8;",
		"\n\n\n",
	}

	for _, text := range texts {
		idx := position.NewIndex(text)
		for o := 0; o <= idx.Len(); o++ {
			place, err := idx.PositionAt(o)
			require.NoError(t, err, "offset %d in %q", o, text)

			back, err := idx.OffsetAt(place)
			require.NoError(t, err, "place %s in %q", place, text)
			assert.Equal(t, o, back, "round trip of offset %d in %q", o, text)
		}
	}
}

func TestOffsetAt(t *testing.T) {
	idx := position.NewIndex("ab\n😀c")

	t.Run("inside surrogate pair rounds down", func(t *testing.T) {
		got, err := idx.OffsetAt(position.Place{Line: 1, Character: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("past end of line", func(t *testing.T) {
		_, err := idx.OffsetAt(position.Place{Line: 0, Character: 3})
		require.ErrorIs(t, err, position.ErrOutOfRange)
	})

	t.Run("past last line", func(t *testing.T) {
		_, err := idx.OffsetAt(position.Place{Line: 2, Character: 0})
		require.ErrorIs(t, err, position.ErrOutOfRange)
	})
}

func TestRangeOf(t *testing.T) {
	idx := position.NewIndex("/* a\nb */ x")

	rng, err := idx.RangeOf(0, 9)
	require.NoError(t, err)
	assert.Equal(t, position.Range{
		Start: position.Place{Line: 0, Character: 0},
		End:   position.Place{Line: 1, Character: 4},
	}, rng)
	assert.False(t, rng.SingleLine())
}

func TestLineText(t *testing.T) {
	idx := position.NewIndex("first\nsecond\n")

	assert.Equal(t, 3, idx.LineCount())
	assert.Equal(t, "first", idx.LineText(0))
	assert.Equal(t, "second", idx.LineText(1))
	assert.Equal(t, "", idx.LineText(2))
	assert.Equal(t, "", idx.LineText(7))
}
