package lexer

import (
	"strings"
	"testing"

	"github.com/hmny-labs/tinycc/pkg/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()

	l, err := New(src)
	if err != nil {
		t.Fatalf("New(%q) returned error: %v", src, err)
	}

	var out []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ERROR {
			t.Fatalf("unexpected lex error on %q: %s", src, tok.Literal)
		}
		if tok.Type == token.EOF {
			return out
		}
		out = append(out, tok)
	}
}

func TestNextTokenProgram(t *testing.T) {
	src := "int main(void) {\n  return ~(-2);\n}\n"

	want := []token.Token{
		{Type: token.KeywordInt, Literal: "int"},
		{Type: token.IDENT, Literal: "main"},
		{Type: token.LParen, Literal: "("},
		{Type: token.KeywordVoid, Literal: "void"},
		{Type: token.RParen, Literal: ")"},
		{Type: token.LBrace, Literal: "{"},
		{Type: token.KeywordReturn, Literal: "return"},
		{Type: token.Tilde, Literal: "~"},
		{Type: token.LParen, Literal: "("},
		{Type: token.Minus, Literal: "-"},
		{Type: token.CONSTANT, Literal: "2"},
		{Type: token.RParen, Literal: ")"},
		{Type: token.Semicolon, Literal: ";"},
		{Type: token.RBrace, Literal: "}"},
	}

	got := tokenize(t, src)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNextTokenMinusMinusIsOneToken(t *testing.T) {
	got := tokenize(t, "--5")
	want := []token.Token{
		{Type: token.MinusMinus, Literal: "--"},
		{Type: token.CONSTANT, Literal: "5"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNextTokenDigitRunFollowedByLetterIsOneError(t *testing.T) {
	l, err := New("123abc")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	tok := l.NextToken()
	if tok.Type != token.ERROR {
		t.Fatalf("got %+v, want a single ERROR token", tok)
	}
	if !strings.Contains(tok.Literal, "123abc") {
		t.Errorf("error message %q should mention the full offending run", tok.Literal)
	}

	// Nothing else should follow: the whole run was consumed as one token.
	next := l.NextToken()
	if next.Type != token.EOF {
		t.Errorf("got a second token %+v after the error, want EOF", next)
	}
}

func TestNextTokenOverflowingConstant(t *testing.T) {
	l, err := New("4294967296") // 2^32, one past the 32-bit unsigned max
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	tok := l.NextToken()
	if tok.Type != token.ERROR {
		t.Fatalf("got %+v, want ERROR for an out-of-range constant", tok)
	}
}

func TestNextTokenRejectsNonASCII(t *testing.T) {
	if _, err := New("int mañana(void) {}"); err == nil {
		t.Fatal("expected New to reject non-ASCII input")
	}
}

func TestRoundTripReLexing(t *testing.T) {
	src := "int main(void) { return -(~42); }"
	tokens := tokenize(t, src)

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.String())
	}

	relexed := tokenize(t, b.String())
	if len(relexed) != len(tokens) {
		t.Fatalf("re-lexed to %d tokens, want %d", len(relexed), len(tokens))
	}
	for i := range tokens {
		if relexed[i] != tokens[i] {
			t.Errorf("token %d: re-lexed %+v, want %+v", i, relexed[i], tokens[i])
		}
	}
}

func TestNextTokenEmptyInput(t *testing.T) {
	got := tokenize(t, "   \n\t ")
	if len(got) != 0 {
		t.Fatalf("got %v, want no tokens", got)
	}
}
