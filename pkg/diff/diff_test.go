package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/witls/pkg/diff"
	"github.com/walteh/witls/pkg/position"
)

func TestValues(t *testing.T) {
	a := position.Range{Start: position.Place{Line: 1, Character: 2}, End: position.Place{Line: 1, Character: 4}}
	assert.Empty(t, diff.Values(a, a))

	b := a
	b.End.Character = 9
	out := diff.Values(a, b)
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "+")
	assert.Contains(t, out, "Character")
}

func TestLines(t *testing.T) {
	assert.Empty(t, diff.Lines("a\nb\n", "a\nb\n"))

	out := diff.Lines("a\nb\n", "a\nc\n")
	assert.Contains(t, out, "-c")
	assert.Contains(t, out, "+b")
}
