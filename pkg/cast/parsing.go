package cast

import (
	"fmt"
	"strconv"

	"github.com/hmny-labs/tinycc/pkg/token"
)

// Lexer is the subset of *lexer.Lexer the parser needs. Declaring it
// locally (rather than importing pkg/lexer directly) keeps the parser
// testable against a canned token stream.
type Lexer interface {
	NextToken() token.Token
}

// Parser is a recursive-descent parser over the grammar:
//
//	program     ::= function_def
//	function_def ::= "int" identifier "(" "void" ")" "{" statement "}"
//	statement    ::= "return" expression ";"
//	expression   ::= "~" expression | "-" expression | "(" expression ")" | constant
//
// It keeps a two-token lookahead window (cur, peek), read ahead by one at
// construction time, the same window every hand-written parser in this
// repo's lineage uses.
type Parser struct {
	lex  Lexer
	cur  token.Token
	peek token.Token
}

// NewParser builds a Parser primed with the first two tokens of lex.
func NewParser(lex Lexer) *Parser {
	p := &Parser{lex: lex}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

// Parse consumes the whole token stream and returns the Program it
// describes, or the first parse error encountered. Trailing tokens after
// a complete function definition are themselves an error: the grammar has
// no "top level list of declarations" construct.
func (p *Parser) Parse() (*Program, error) {
	fn, err := p.parseFunction()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != token.EOF {
		return nil, fmt.Errorf("parser: unexpected trailing token %s after function definition", p.cur)
	}
	return &Program{Function: fn}, nil
}

// expectNext errors unless the current token has type want; on success it
// advances past it. The error message mirrors the original compiler's
// "Expect `X`, found Y" style.
func (p *Parser) expectNext(want token.Type) error {
	if p.cur.Type == token.EOF {
		return fmt.Errorf("parser: expected %q, found no tokens left", want)
	}
	if p.cur.Type != want {
		return fmt.Errorf("parser: expected %q, found %s", want, p.cur)
	}
	p.advance()
	return nil
}

func (p *Parser) parseFunction() (Function, error) {
	if err := p.expectNext(token.KeywordInt); err != nil {
		return Function{}, err
	}

	name, err := p.parseIdentifier()
	if err != nil {
		return Function{}, err
	}

	if err := p.expectNext(token.LParen); err != nil {
		return Function{}, err
	}
	if err := p.expectNext(token.KeywordVoid); err != nil {
		return Function{}, err
	}
	if err := p.expectNext(token.RParen); err != nil {
		return Function{}, err
	}
	if err := p.expectNext(token.LBrace); err != nil {
		return Function{}, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return Function{}, err
	}

	if err := p.expectNext(token.RBrace); err != nil {
		return Function{}, err
	}

	return Function{Name: name, Body: body}, nil
}

func (p *Parser) parseIdentifier() (string, error) {
	if p.cur.Type != token.IDENT {
		if p.cur.Type == token.EOF {
			return "", fmt.Errorf("parser: expected identifier, found no tokens left")
		}
		return "", fmt.Errorf("parser: expected identifier, found %s", p.cur)
	}
	name := p.cur.Literal
	p.advance()
	return name, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	if err := p.expectNext(token.KeywordReturn); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expectNext(token.Semicolon); err != nil {
		return nil, err
	}

	return ReturnStatement{Expression: expr}, nil
}

// parseExpression handles the two unary prefixes, a parenthesized
// sub-expression, and a bare constant. "--" lexes as a single
// token.MinusMinus and matches none of these cases, so "--5" is rejected
// here (not misread as two unary minuses).
func (p *Parser) parseExpression() (Expression, error) {
	switch p.cur.Type {
	case token.CONSTANT:
		lit := p.cur.Literal
		p.advance()
		v, err := strconv.ParseUint(lit, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parser: invalid integer constant %q: %w", lit, err)
		}
		return ConstantExpression{Value: uint32(v)}, nil

	case token.Tilde:
		p.advance()
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return UnaryExpression{Operator: Complement, Operand: operand}, nil

	case token.Minus:
		p.advance()
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return UnaryExpression{Operator: Negate, Operand: operand}, nil

	case token.LParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectNext(token.RParen); err != nil {
			return nil, err
		}
		return inner, nil

	case token.EOF:
		return nil, fmt.Errorf("parser: expected expression, found no tokens left")

	default:
		return nil, fmt.Errorf("parser: expected expression, found %s", p.cur)
	}
}
