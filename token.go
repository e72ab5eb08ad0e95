package cinterp

// TokenKind classifies a lexeme produced by the Lexer.
type TokenKind int

const (
	TokKeywordType    TokenKind = iota // char int float double void
	TokKeywordControl                  // if else while do for return break continue
	TokKeywordStruct                   // struct
	TokIdentifier
	TokIntegerConst
	TokCharConst
	TokStringConst
	TokOperator
	TokPunct
	TokHash // '#'
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokKeywordType:
		return "type"
	case TokKeywordControl:
		return "control"
	case TokKeywordStruct:
		return "struct"
	case TokIdentifier:
		return "identifier"
	case TokIntegerConst:
		return "integer"
	case TokCharConst:
		return "char"
	case TokStringConst:
		return "string"
	case TokOperator:
		return "operator"
	case TokPunct:
		return "punct"
	case TokHash:
		return "hash"
	case TokEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Token is an immutable lexeme with its source position.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Pos    Position
}

var typeKeywords = map[string]bool{
	"char": true, "int": true, "float": true, "double": true, "void": true,
}

var controlKeywords = map[string]bool{
	"if": true, "else": true, "while": true, "do": true, "for": true,
	"return": true, "break": true, "continue": true,
}

// operators recognized by the lexer, longest-match first so that e.g.
// "==" is not split into two "=" tokens.
var operators = []string{
	"++", "--", "+=", "-=", "*=", "/=",
	"==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "=", "<", ">",
	"&", "|", "^", "!", "?", ":", ",", ";", "(", ")", "{", "}",
}
