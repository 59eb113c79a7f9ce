package yartl

// The lexer scans template source in two modes. Outside directives it emits
// runs of template text; inside {{ }} it emits keywords, identifiers, string
// literals and operators.

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenText
	TokenOpen  // {{
	TokenClose // }}
	TokenFor
	TokenIn
	TokenIf
	TokenElse
	TokenEnd
	TokenIdent
	TokenString
	TokenDot    // .
	TokenEq     // ==
	TokenNotEq  // !=
	TokenBang   // !
	TokenAnd    // &&
	TokenOr     // ||
)

var tokenNames = [...]string{
	TokenEOF:    "end of input",
	TokenText:   "template text",
	TokenOpen:   "'{{'",
	TokenClose:  "'}}'",
	TokenFor:    "'for'",
	TokenIn:     "'in'",
	TokenIf:     "'if'",
	TokenElse:   "'else'",
	TokenEnd:    "'end'",
	TokenIdent:  "identifier",
	TokenString: "string literal",
	TokenDot:    "'.'",
	TokenEq:     "'=='",
	TokenNotEq:  "'!='",
	TokenBang:   "'!'",
	TokenAnd:    "'&&'",
	TokenOr:     "'||'",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "unknown token"
}

var keywords = map[string]TokenKind{
	"for":  TokenFor,
	"in":   TokenIn,
	"if":   TokenIf,
	"else": TokenElse,
	"end":  TokenEnd,
}

// operators is tried in order; two-byte operators precede their one-byte
// prefixes.
var operators = []struct {
	text string
	kind TokenKind
}{
	{"{{", TokenOpen},
	{"}}", TokenClose},
	{".", TokenDot},
	{"==", TokenEq},
	{"!=", TokenNotEq},
	{"!", TokenBang},
	{"&&", TokenAnd},
	{"||", TokenOr},
}

// Token is a single lexeme. Val is a substring of the source, not a copy.
type Token struct {
	Kind TokenKind
	Pos  int // byte offset in source
	Val  string
}

func (t Token) End() int { return t.Pos + len(t.Val) }

// Lexer produces tokens one at a time. It only tracks its cursor and mode.
type Lexer struct {
	src       string
	i         int
	directive bool
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Next returns the next token. Once the input is exhausted it keeps
// returning TokenEOF.
func (l *Lexer) Next() (Token, error) {
	if !l.directive {
		return l.nextText(), nil
	}
	return l.nextDirective()
}

func (l *Lexer) tok(kind TokenKind, start int) Token {
	return Token{Kind: kind, Pos: start, Val: l.src[start:l.i]}
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.src)-l.i >= len(s) && l.src[l.i:l.i+len(s)] == s
}

// nextText emits the text run up to the next "{{", or the "{{" itself when
// the run would be empty.
func (l *Lexer) nextText() Token {
	start := l.i
	for l.i < len(l.src) {
		if l.hasPrefix("{{") {
			if l.i > start {
				return l.tok(TokenText, start)
			}
			l.i += 2
			l.directive = true
			return l.tok(TokenOpen, start)
		}
		l.i++
	}
	if l.i > start {
		return l.tok(TokenText, start)
	}
	return Token{Kind: TokenEOF, Pos: l.i}
}

func (l *Lexer) nextDirective() (Token, error) {
	for l.i < len(l.src) && isSpace(l.src[l.i]) {
		l.i++
	}
	if l.i >= len(l.src) {
		return Token{Kind: TokenEOF, Pos: l.i}, nil
	}
	start := l.i
	for _, op := range operators {
		if !l.hasPrefix(op.text) {
			continue
		}
		l.i += len(op.text)
		switch op.kind {
		case TokenOpen:
			l.directive = true
		case TokenClose:
			l.directive = false
		}
		return l.tok(op.kind, start), nil
	}
	c := l.src[l.i]
	switch {
	case isAlpha(c):
		l.i++
		for l.i < len(l.src) && (isAlpha(l.src[l.i]) || isDigit(l.src[l.i]) || l.src[l.i] == '_') {
			l.i++
		}
		t := l.tok(TokenIdent, start)
		if kw, ok := keywords[t.Val]; ok {
			t.Kind = kw
		}
		return t, nil
	case c == '"':
		return l.scanString()
	}
	return Token{}, &LexError{Pos: start, Err: ErrInvalidCharacter}
}

// scanString scans a double-quoted literal. A backslash only escapes the
// closing quote; every other byte is taken as is.
func (l *Lexer) scanString() (Token, error) {
	start := l.i
	l.i++ // opening quote
	for l.i < len(l.src) {
		switch {
		case l.src[l.i] == '\\' && l.i+1 < len(l.src) && l.src[l.i+1] == '"':
			l.i += 2
		case l.src[l.i] == '"':
			l.i++
			return l.tok(TokenString, start), nil
		default:
			l.i++
		}
	}
	return Token{}, &LexError{Pos: start, Err: ErrUnterminatedString}
}

// Tokenize lexes src to the end and returns every token, including the
// trailing TokenEOF.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var toks []Token
	for {
		t, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, t)
		if t.Kind == TokenEOF {
			return toks, nil
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
