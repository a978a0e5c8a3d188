// Package token defines the lexical tokens produced by pkg/lexer and
// consumed by pkg/cast's parser.
package token

import "fmt"

// Type identifies the lexical category of a Token. Unlike an enum of
// small integers, keeping Type as a string lets error messages print
// the expected token directly without a separate lookup table.
type Type string

const (
	// EOF marks the end of the token stream. The lexer never returns an
	// error after EOF; it just keeps returning EOF tokens.
	EOF Type = "EOF"
	// ERROR carries a lexical error; Literal holds a human readable message.
	ERROR Type = "ERROR"

	IDENT    Type = "IDENT"
	CONSTANT Type = "CONSTANT"

	KeywordInt    Type = "int"
	KeywordVoid   Type = "void"
	KeywordReturn Type = "return"

	LParen     Type = "("
	RParen     Type = ")"
	LBrace     Type = "{"
	RBrace     Type = "}"
	Semicolon  Type = ";"
	Tilde      Type = "~"
	Minus      Type = "-"
	MinusMinus Type = "--" // reserved, never a valid expression prefix
)

// keywords maps the reserved identifiers to their Type. Anything not in
// this table that lexes as an identifier run is a plain IDENT.
var keywords = map[string]Type{
	"int":    KeywordInt,
	"void":   KeywordVoid,
	"return": KeywordReturn,
}

// LookupKeyword reports whether literal is a reserved keyword and, if so,
// which Type it maps to. Classification only happens once the full
// identifier run has been read, so a keyword can never shadow a prefix of
// a longer identifier (e.g. "integer" never lexes as KeywordInt).
func LookupKeyword(literal string) (Type, bool) {
	t, ok := keywords[literal]
	return t, ok
}

// Token is a single lexical unit: its Type and the exact source text it
// was lexed from.
type Token struct {
	Type    Type
	Literal string
}

// String renders the token the way it appeared (or would appear) in
// source, used both for re-lexing round-trips and for parser error
// messages.
func (t Token) String() string {
	if t.Type == EOF {
		return "<EOF>"
	}
	return t.Literal
}

// GoString gives a debug-oriented representation for log dumps.
func (t Token) GoString() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
