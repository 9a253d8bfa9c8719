// Package hover resolves the token under the cursor to its documentation.
package hover

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/witls/pkg/position"
	"github.com/walteh/witls/pkg/wit"
)

//go:embed docs/*.md
var docsFS embed.FS

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content is the markdown content to display, one paragraph per entry
	Content []string
	// Range is the extent of the token the hover applies to
	Range position.Range
}

// Resolve tokenizes text and documents the first non-whitespace token whose
// span contains at. It returns nil when nothing is under the cursor or the
// text cannot be tokenized.
func Resolve(ctx context.Context, text string, at position.Place) *HoverInfo {
	logger := zerolog.Ctx(ctx)

	idx := position.NewIndex(text)
	offset, err := idx.OffsetAt(at)
	if err != nil {
		logger.Debug().Err(err).Str("place", at.String()).Msg("hover position outside document")
		return nil
	}

	for tok, err := range wit.Tokens(text) {
		if err != nil {
			logger.Debug().Err(err).Msg("unable to tokenize document for hover")
			return nil
		}
		if tok.Span.Start > offset {
			break
		}
		if tok.Kind == wit.KindWhitespace || !tok.Span.Contains(offset) {
			continue
		}

		content := ForToken(tok)
		if content == "" {
			return nil
		}

		rng, err := idx.RangeOf(tok.Span.Start, tok.Span.End)
		if err != nil {
			logger.Debug().Err(err).Msg("token span outside document")
			return nil
		}

		return &HoverInfo{
			Content: []string{content},
			Range:   rng,
		}
	}

	return nil
}

// ForToken returns the markdown documentation for a single token.
func ForToken(tok wit.Token) string {
	switch tok.Kind {
	case wit.KindDocComment:
		return strings.TrimSpace(strings.TrimPrefix(tok.Text, "///"))
	case wit.KindComment:
		return commentText(tok.Text)
	case wit.KindIdentifier, wit.KindExplicitIdentifier, wit.KindUnderscore:
		return tok.Text
	case wit.KindNamespace:
		return namespaceDoc(tok.Text)
	}

	if name, ok := keywordDocs[tok.Kind]; ok {
		return mustDoc(name)
	}

	return oneLiners[tok.Kind]
}

func commentText(text string) string {
	if strings.HasPrefix(text, "/*") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.TrimPrefix(text, "//"))
}

func namespaceDoc(text string) string {
	pkg, err := wit.ParsePackageName(text)
	if err != nil {
		return text
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Package `%s:%s`", pkg.Namespace, pkg.Name)
	if len(pkg.Path) > 0 {
		fmt.Fprintf(&sb, ", item `%s`", strings.Join(pkg.Path, "/"))
	}
	if pkg.Version != "" {
		fmt.Fprintf(&sb, ", version `%s`", pkg.Version)
	}
	return sb.String()
}

var keywordDocs = map[wit.TokenKind]string{
	wit.KindPackage:   "package",
	wit.KindWorld:     "world",
	wit.KindInterface: "interface",
	wit.KindType:      "type",
	wit.KindRecord:    "record",
	wit.KindFunc:      "func",
	wit.KindUse:       "use",
}

func mustDoc(name string) string {
	data, err := docsFS.ReadFile("docs/" + name + ".md")
	if err != nil {
		panic(fmt.Sprintf("missing embedded doc %q: %v", name, err))
	}
	return strings.TrimSpace(string(data))
}

var oneLiners = map[wit.TokenKind]string{
	wit.KindImport:      "The import keyword. Declares something a world needs from its host.",
	wit.KindExport:      "The export keyword. Declares something a world provides.",
	wit.KindResource:    "The resource keyword. Declares a handle type with methods.",
	wit.KindFlags:       "The flags keyword. Declares a set of named boolean flags.",
	wit.KindVariant:     "The variant keyword. Declares a tagged union whose cases may carry a payload.",
	wit.KindEnum:        "The enum keyword. Declares a variant whose cases carry no payload.",
	wit.KindUnion:       "The union keyword.",
	wit.KindShared:      "The shared keyword.",
	wit.KindStatic:      "The static keyword. Marks a resource function that takes no handle.",
	wit.KindAs:          "The as keyword.",
	wit.KindFrom:        "The from keyword.",
	wit.KindInclude:     "The include keyword. Merges another world into this one.",
	wit.KindWith:        "The with keyword. Renames items pulled in by include.",
	wit.KindConstructor: "The constructor keyword. Declares how a resource is created.",

	wit.KindU8:      "An unsigned 8-bit integer.",
	wit.KindU16:     "An unsigned 16-bit integer.",
	wit.KindU32:     "An unsigned 32-bit integer.",
	wit.KindU64:     "An unsigned 64-bit integer.",
	wit.KindS8:      "A signed 8-bit integer.",
	wit.KindS16:     "A signed 16-bit integer.",
	wit.KindS32:     "A signed 32-bit integer.",
	wit.KindS64:     "A signed 64-bit integer.",
	wit.KindF32:     "A 32-bit floating point number.",
	wit.KindF64:     "A 64-bit floating point number.",
	wit.KindFloat32: "A 32-bit floating point number.",
	wit.KindFloat64: "A 64-bit floating point number.",
	wit.KindChar:    "A single Unicode scalar value.",
	wit.KindBool:    "A boolean value.",
	wit.KindString:  "A UTF-8 encoded string.",
	wit.KindOption:  "A type that may or may not contain a value.",
	wit.KindResult:  "A type that holds either a value or an error.",
	wit.KindFuture:  "A value that becomes available later.",
	wit.KindStream:  "A stream of values.",
	wit.KindList:    "A list of values.",
	wit.KindTuple:   "A fixed-size sequence of values of possibly different types.",
	wit.KindBorrow:  "A borrowed handle to a resource.",
	wit.KindOwn:     "An owned handle to a resource.",

	wit.KindArrow:       "The right arrow operator.",
	wit.KindEquals:      "The equals operator.",
	wit.KindComma:       "The comma operator.",
	wit.KindColon:       "The colon operator.",
	wit.KindPeriod:      "The period operator.",
	wit.KindSemicolon:   "The semicolon operator.",
	wit.KindLeftParen:   "The left parenthesis operator.",
	wit.KindRightParen:  "The right parenthesis operator.",
	wit.KindLeftBrace:   "The left brace operator.",
	wit.KindRightBrace:  "The right brace operator.",
	wit.KindLessThan:    "The less than operator.",
	wit.KindGreaterThan: "The greater than operator.",
	wit.KindStar:        "The star operator.",
	wit.KindAt:          "The at operator.",
	wit.KindSlash:       "The slash operator.",
	wit.KindPlus:        "The plus operator.",
	wit.KindMinus:       "The minus operator.",

	wit.KindInteger: "An integer literal.",
}
