package wit

// TokenKind is the closed set of lexical kinds the tokenizer produces. Adding
// a kind means adding it to kindNames as well; a missing entry compiles as ""
// and TestKindNames fails.
type TokenKind int

const (
	KindWhitespace TokenKind = iota
	KindComment
	KindDocComment

	// keywords
	KindPackage
	KindWorld
	KindInterface
	KindImport
	KindExport
	KindUse
	KindType
	KindFunc
	KindResource
	KindRecord
	KindFlags
	KindVariant
	KindEnum
	KindUnion
	KindShared
	KindStatic
	KindAs
	KindFrom
	KindInclude
	KindWith
	KindConstructor

	// primitive and generic types
	KindU8
	KindU16
	KindU32
	KindU64
	KindS8
	KindS16
	KindS32
	KindS64
	KindF32
	KindF64
	KindFloat32
	KindFloat64
	KindChar
	KindBool
	KindString
	KindOption
	KindResult
	KindFuture
	KindStream
	KindList
	KindTuple
	KindBorrow
	KindOwn

	// punctuation
	KindArrow
	KindEquals
	KindComma
	KindColon
	KindPeriod
	KindSemicolon
	KindLeftParen
	KindRightParen
	KindLeftBrace
	KindRightBrace
	KindLessThan
	KindGreaterThan
	KindStar
	KindAt
	KindSlash
	KindPlus
	KindMinus

	KindUnderscore
	KindIdentifier
	KindExplicitIdentifier
	KindNamespace
	KindInteger
	KindUnknown

	kindCount
)

var kindNames = [kindCount]string{
	KindWhitespace: "whitespace",
	KindComment:    "comment",
	KindDocComment: "doc-comment",

	KindPackage:     "package",
	KindWorld:       "world",
	KindInterface:   "interface",
	KindImport:      "import",
	KindExport:      "export",
	KindUse:         "use",
	KindType:        "type",
	KindFunc:        "func",
	KindResource:    "resource",
	KindRecord:      "record",
	KindFlags:       "flags",
	KindVariant:     "variant",
	KindEnum:        "enum",
	KindUnion:       "union",
	KindShared:      "shared",
	KindStatic:      "static",
	KindAs:          "as",
	KindFrom:        "from",
	KindInclude:     "include",
	KindWith:        "with",
	KindConstructor: "constructor",

	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindS8:      "s8",
	KindS16:     "s16",
	KindS32:     "s32",
	KindS64:     "s64",
	KindF32:     "f32",
	KindF64:     "f64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindChar:    "char",
	KindBool:    "bool",
	KindString:  "string",
	KindOption:  "option",
	KindResult:  "result",
	KindFuture:  "future",
	KindStream:  "stream",
	KindList:    "list",
	KindTuple:   "tuple",
	KindBorrow:  "borrow",
	KindOwn:     "own",

	KindArrow:       "->",
	KindEquals:      "=",
	KindComma:       ",",
	KindColon:       ":",
	KindPeriod:      ".",
	KindSemicolon:   ";",
	KindLeftParen:   "(",
	KindRightParen:  ")",
	KindLeftBrace:   "{",
	KindRightBrace:  "}",
	KindLessThan:    "<",
	KindGreaterThan: ">",
	KindStar:        "*",
	KindAt:          "@",
	KindSlash:       "/",
	KindPlus:        "+",
	KindMinus:       "-",

	KindUnderscore:         "_",
	KindIdentifier:         "identifier",
	KindExplicitIdentifier: "explicit-identifier",
	KindNamespace:          "namespace",
	KindInteger:            "integer",
	KindUnknown:            "unknown",
}

func (k TokenKind) String() string {
	if k < 0 || k >= kindCount {
		return "invalid"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the enumerated kinds.
func (k TokenKind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Kinds lists every enumerated kind in declaration order.
func Kinds() []TokenKind {
	kinds := make([]TokenKind, 0, kindCount)
	for k := TokenKind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// words maps reserved identifiers (keywords and built-in types) to their kind.
var words = func() map[string]TokenKind {
	m := map[string]TokenKind{}
	for k := KindPackage; k <= KindOwn; k++ {
		m[kindNames[k]] = k
	}
	m["_"] = KindUnderscore
	return m
}()

// punctuation maps the single and double character operators to their kind.
var punctuation = func() map[string]TokenKind {
	m := map[string]TokenKind{}
	for k := KindArrow; k <= KindMinus; k++ {
		m[kindNames[k]] = k
	}
	return m
}()
