// Package wit tokenizes WebAssembly Interface Type documents.
package wit

import (
	"iter"
	"regexp"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

var ErrLex = errors.New("unable to tokenize document")

var (
	// LexerRules covers every possible input: the final rule matches any
	// single character, so unrecognized text still surfaces as a token.
	LexerRules = lexer.Rules{
		"Root": {
			{"DocComment", `///[^\r\n]*`, nil},
			{"BlockComment", `/\*[\s\S]*?\*/`, nil},
			{"LineComment", `//[^\r\n]*`, nil},
			{"Whitespace", `[ \t\r\n]+`, nil},
			{"ExplicitIdent", `%[a-zA-Z][a-zA-Z0-9]*(?:-[a-zA-Z0-9]+)*`, nil},
			{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*(?:-[a-zA-Z0-9_]+)*`, nil},
			{"Integer", `[0-9]+`, nil},
			{"Arrow", `->`, nil},
			{"Punct", `[=,:.;(){}<>*@/+\-]`, nil},
			{"Unknown", `.`, nil},
		},
	}

	WitLexer = lexer.MustStateful(LexerRules)

	// packagePath is a `namespace:name[/item][@version]` reference. It is only
	// tried right after a keyword that takes one, so `x:u32` in a record stays
	// three tokens.
	packagePath = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*:[a-zA-Z][a-zA-Z0-9-]*(?:/[a-zA-Z%][a-zA-Z0-9-]*)*(?:@[0-9]+\.[0-9]+\.[0-9]+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?)?`)

	takesPackagePath = map[TokenKind]bool{
		KindPackage: true,
		KindUse:     true,
		KindImport:  true,
		KindExport:  true,
		KindInclude: true,
	}

	symbolNames = func() map[lexer.TokenType]string {
		m := map[lexer.TokenType]string{}
		for name, typ := range WitLexer.Symbols() {
			m[typ] = name
		}
		return m
	}()
)

// Span is a half-open [Start, End) range of character offsets.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether offset falls inside the half-open span.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

type Token struct {
	Span Span
	Kind TokenKind
	Text string
}

// Tokens lexes text lazily. The returned sequence can be ranged over any
// number of times; each pass lexes from the start. A lexing failure is
// yielded once as ErrLex and ends the sequence.
func Tokens(text string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		if !utf8.ValidString(text) {
			yield(Token{}, errors.Errorf("%w: invalid utf-8", ErrLex))
			return
		}

		lex, err := WitLexer.LexString("", text)
		if err != nil {
			yield(Token{}, errors.Errorf("%w: %v", ErrLex, err))
			return
		}

		offset := 0
		prev := KindWhitespace
		emit := func(kind TokenKind, value string) bool {
			n := utf8.RuneCountInString(value)
			out := Token{
				Span: Span{Start: offset, End: offset + n},
				Kind: kind,
				Text: value,
			}
			offset += n
			switch kind {
			case KindWhitespace, KindComment, KindDocComment:
			default:
				prev = kind
			}
			return yield(out, nil)
		}

		for {
			tok, err := lex.Next()
			if err != nil {
				yield(Token{}, errors.Errorf("%w: %v", ErrLex, err))
				return
			}
			if tok.EOF() {
				return
			}

			kind := kindOf(symbolNames[tok.Type], tok.Value)
			if kind != KindIdentifier || !takesPackagePath[prev] {
				if !emit(kind, tok.Value) {
					return
				}
				continue
			}

			path, read, err := readPackagePath(lex, text, tok)
			if err != nil {
				yield(Token{}, errors.Errorf("%w: %v", ErrLex, err))
				return
			}
			if path != "" {
				if !emit(KindNamespace, path) {
					return
				}
				continue
			}
			for _, t := range read {
				if !emit(kindOf(symbolNames[t.Type], t.Value), t.Value) {
					return
				}
			}
		}
	}
}

// readPackagePath tries to read a package path starting at first. On success
// it returns the path text, having consumed exactly the lexer tokens it spans.
// Otherwise it returns every token it had to read, first included, so the
// caller can emit them one by one. A path whose namespace or name is a
// reserved word is rejected, as is one that ends inside a lexer token.
func readPackagePath(lex lexer.Lexer, text string, first lexer.Token) (string, []lexer.Token, error) {
	read := []lexer.Token{first}

	match := packagePath.FindString(text[first.Pos.Offset:])
	if match == "" {
		return "", read, nil
	}
	name, err := ParsePackageName(match)
	if err != nil {
		return "", read, nil
	}
	if _, reserved := words[name.Namespace]; reserved {
		return "", read, nil
	}
	if _, reserved := words[name.Name]; reserved {
		return "", read, nil
	}

	end := first.Pos.Offset + len(match)
	covered := first.Pos.Offset + len(first.Value)
	for covered < end {
		tok, err := lex.Next()
		if err != nil {
			return "", nil, err
		}
		if tok.EOF() {
			return "", read, nil
		}
		read = append(read, tok)
		covered = tok.Pos.Offset + len(tok.Value)
	}
	if covered != end {
		return "", read, nil
	}
	return match, nil, nil
}

// Tokenize collects Tokens into a slice.
func Tokenize(text string) ([]Token, error) {
	var out []Token
	for tok, err := range Tokens(text) {
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	return out, nil
}

func kindOf(rule, value string) TokenKind {
	switch rule {
	case "DocComment":
		return KindDocComment
	case "BlockComment", "LineComment":
		return KindComment
	case "Whitespace":
		return KindWhitespace
	case "ExplicitIdent":
		return KindExplicitIdentifier
	case "Ident":
		if k, ok := words[value]; ok {
			return k
		}
		return KindIdentifier
	case "Integer":
		return KindInteger
	case "Arrow", "Punct":
		if k, ok := punctuation[value]; ok {
			return k
		}
	}
	return KindUnknown
}
