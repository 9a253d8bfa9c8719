package semtok

// TokenType is an index into the advertised legend. The numeric value is what
// goes on the wire, so the order here is fixed.
type TokenType uint32

const (
	TypeKeyword TokenType = iota
	TypeNamespace
	TypeProperty
	TypeType
	TypeVariable
	TypeOperator
	TypeComment
	TypeEnum
	TypeInterface
	TypeStruct
	TypeClass
	TypeTypeParameter
	TypeParameter
	TypeEnumMember
	TypeEvent
	TypeFunction
	TypeMethod
	TypeMacro
	TypeModifier
	TypeString
	TypeNumber
	TypeRegexp
	TypeDecorator

	tokenTypeCount
)

var tokenTypeNames = [tokenTypeCount]string{
	TypeKeyword:       "keyword",
	TypeNamespace:     "namespace",
	TypeProperty:      "property",
	TypeType:          "type",
	TypeVariable:      "variable",
	TypeOperator:      "operator",
	TypeComment:       "comment",
	TypeEnum:          "enum",
	TypeInterface:     "interface",
	TypeStruct:        "struct",
	TypeClass:         "class",
	TypeTypeParameter: "typeParameter",
	TypeParameter:     "parameter",
	TypeEnumMember:    "enumMember",
	TypeEvent:         "event",
	TypeFunction:      "function",
	TypeMethod:        "method",
	TypeMacro:         "macro",
	TypeModifier:      "modifier",
	TypeString:        "string",
	TypeNumber:        "number",
	TypeRegexp:        "regexp",
	TypeDecorator:     "decorator",
}

func (t TokenType) String() string {
	if t >= tokenTypeCount {
		return "unknown"
	}
	return tokenTypeNames[t]
}

// TokenModifier is a bit in the modifier bitset. Nothing sets these yet; they
// are advertised so clients accept the legend.
type TokenModifier uint32

const (
	ModifierDeclaration TokenModifier = 1 << iota
	ModifierDefinition
	ModifierReadonly
	ModifierStatic
	ModifierDeprecated
	ModifierAbstract
	ModifierAsync
	ModifierModification
	ModifierDocumentation
	ModifierDefaultLibrary
)

var modifierNames = []string{
	"declaration",
	"definition",
	"readonly",
	"static",
	"deprecated",
	"abstract",
	"async",
	"modification",
	"documentation",
	"defaultLibrary",
}

type Legend struct {
	TokenTypes     []string
	TokenModifiers []string
}

// NewLegend returns a fresh copy of the legend advertised during initialize.
func NewLegend() Legend {
	types := make([]string, len(tokenTypeNames))
	copy(types, tokenTypeNames[:])
	mods := make([]string, len(modifierNames))
	copy(mods, modifierNames)
	return Legend{TokenTypes: types, TokenModifiers: mods}
}
