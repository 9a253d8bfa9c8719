package semtok

import (
	"github.com/walteh/witls/pkg/wit"
)

// Category is the small set of highlighting classes that token kinds fall into.
type Category int

const (
	CategoryWhitespace Category = iota
	CategoryKeyword
	CategoryNamespace
	CategoryType
	CategoryIdentifier
	CategoryOperator
	CategoryComment
	CategoryNumber
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryWhitespace:
		return "whitespace"
	case CategoryKeyword:
		return "keyword"
	case CategoryNamespace:
		return "namespace"
	case CategoryType:
		return "type"
	case CategoryIdentifier:
		return "identifier"
	case CategoryOperator:
		return "operator"
	case CategoryComment:
		return "comment"
	case CategoryNumber:
		return "number"
	case CategoryUnknown:
		return "unknown"
	}
	return "invalid"
}

// TokenType returns the legend entry for the category. Whitespace and unknown
// text have none and are never emitted.
func (c Category) TokenType() (TokenType, bool) {
	switch c {
	case CategoryKeyword:
		return TypeKeyword, true
	case CategoryNamespace:
		return TypeNamespace, true
	case CategoryType:
		return TypeType, true
	case CategoryIdentifier:
		return TypeVariable, true
	case CategoryOperator:
		return TypeOperator, true
	case CategoryComment:
		return TypeComment, true
	case CategoryNumber:
		return TypeNumber, true
	}
	return 0, false
}

// Classify maps every token kind to exactly one category. A kind missing
// from the switch reports ok == false.
func Classify(k wit.TokenKind) (Category, bool) {
	switch k {
	case wit.KindWhitespace:
		return CategoryWhitespace, true

	case wit.KindComment, wit.KindDocComment:
		return CategoryComment, true

	case wit.KindPackage, wit.KindWorld, wit.KindInterface, wit.KindImport,
		wit.KindExport, wit.KindUse, wit.KindType, wit.KindFunc,
		wit.KindResource, wit.KindRecord, wit.KindFlags, wit.KindVariant,
		wit.KindEnum, wit.KindUnion, wit.KindShared, wit.KindStatic,
		wit.KindAs, wit.KindFrom, wit.KindInclude, wit.KindWith,
		wit.KindConstructor:
		return CategoryKeyword, true

	case wit.KindU8, wit.KindU16, wit.KindU32, wit.KindU64,
		wit.KindS8, wit.KindS16, wit.KindS32, wit.KindS64,
		wit.KindF32, wit.KindF64, wit.KindFloat32, wit.KindFloat64,
		wit.KindChar, wit.KindBool, wit.KindString,
		wit.KindOption, wit.KindResult, wit.KindFuture, wit.KindStream,
		wit.KindList, wit.KindTuple, wit.KindBorrow, wit.KindOwn:
		return CategoryType, true

	case wit.KindArrow, wit.KindEquals, wit.KindComma, wit.KindColon,
		wit.KindPeriod, wit.KindSemicolon, wit.KindLeftParen, wit.KindRightParen,
		wit.KindLeftBrace, wit.KindRightBrace, wit.KindLessThan, wit.KindGreaterThan,
		wit.KindStar, wit.KindAt, wit.KindSlash, wit.KindPlus, wit.KindMinus:
		return CategoryOperator, true

	case wit.KindUnderscore, wit.KindIdentifier, wit.KindExplicitIdentifier:
		return CategoryIdentifier, true

	case wit.KindNamespace:
		return CategoryNamespace, true

	case wit.KindInteger:
		return CategoryNumber, true

	case wit.KindUnknown:
		return CategoryUnknown, true
	}
	return CategoryUnknown, false
}
