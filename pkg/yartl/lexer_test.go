package yartl

import (
	"errors"
	"testing"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func sameKinds(a, b []TokenKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeTextAndDirective(t *testing.T) {
	src := "Hi {{ name.first }}!"
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	want := []Token{
		{TokenText, 0, "Hi "},
		{TokenOpen, 3, "{{"},
		{TokenIdent, 6, "name"},
		{TokenDot, 10, "."},
		{TokenIdent, 11, "first"},
		{TokenClose, 17, "}}"},
		{TokenText, 19, "!"},
		{TokenEOF, 20, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("token %d: got %+v, want %+v", i, toks[i], want[i])
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize("{{ a==b != !c && d || e }}")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	want := []TokenKind{
		TokenOpen, TokenIdent, TokenEq, TokenIdent, TokenNotEq, TokenBang, TokenIdent,
		TokenAnd, TokenIdent, TokenOr, TokenIdent, TokenClose, TokenEOF,
	}
	if got := kinds(toks); !sameKinds(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	cases := []struct {
		src  string
		want []TokenKind
	}{
		{"{{ for x in xs }}", []TokenKind{TokenOpen, TokenFor, TokenIdent, TokenIn, TokenIdent, TokenClose, TokenEOF}},
		{"{{ if a }}{{ else }}{{ end }}", []TokenKind{TokenOpen, TokenIf, TokenIdent, TokenClose, TokenOpen, TokenElse, TokenClose, TokenOpen, TokenEnd, TokenClose, TokenEOF}},
		// Keywords are case-sensitive and must match the whole word.
		{"{{ For format end_1 iffy }}", []TokenKind{TokenOpen, TokenIdent, TokenIdent, TokenIdent, TokenIdent, TokenClose, TokenEOF}},
	}
	for _, tc := range cases {
		toks, err := Tokenize(tc.src)
		if err != nil {
			t.Fatalf("%q: tokenize error: %v", tc.src, err)
		}
		if got := kinds(toks); !sameKinds(got, tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestTokenizeTextOnly(t *testing.T) {
	for _, src := range []string{"", "plain", "a } b }} c { d"} {
		toks, err := Tokenize(src)
		if err != nil {
			t.Fatalf("%q: tokenize error: %v", src, err)
		}
		if src == "" {
			if len(toks) != 1 || toks[0].Kind != TokenEOF {
				t.Fatalf("empty source: got %v", toks)
			}
			continue
		}
		if len(toks) != 2 || toks[0].Kind != TokenText || toks[0].Val != src {
			t.Fatalf("%q: got %v", src, toks)
		}
	}
}

func TestTokenizeStringLiteral(t *testing.T) {
	toks, err := Tokenize(`{{ "a\"b" }}`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	if toks[1].Kind != TokenString || toks[1].Val != `"a\"b"` {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		src string
		pos int
		err error
	}{
		{"{{ a + b }}", 5, ErrInvalidCharacter},
		{"{{ 1 }}", 3, ErrInvalidCharacter},
		{"{{ a & b }}", 5, ErrInvalidCharacter},
		{`{{ "abc`, 3, ErrUnterminatedString},
		{`{{ "abc\" }}`, 3, ErrUnterminatedString},
	}
	for _, tc := range cases {
		_, err := Tokenize(tc.src)
		var le *LexError
		if !errors.As(err, &le) {
			t.Fatalf("%q: want *LexError, got %v", tc.src, err)
		}
		if !errors.Is(err, tc.err) || le.Pos != tc.pos {
			t.Fatalf("%q: got %v at %d, want %v at %d", tc.src, le.Err, le.Pos, tc.err, tc.pos)
		}
	}
}

func TestLexerRepeatsEOF(t *testing.T) {
	l := NewLexer("x")
	for i := 0; i < 3; i++ {
		if _, err := l.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	tok, err := l.Next()
	if err != nil || tok.Kind != TokenEOF || tok.Pos != 1 {
		t.Fatalf("got %+v, %v", tok, err)
	}
}
