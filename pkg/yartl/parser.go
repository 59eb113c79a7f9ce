package yartl

import "slices"

// DefaultMaxDepth bounds how deeply for/if blocks, property chains and
// operator chains may nest.
const DefaultMaxDepth = 256

type ParseOption func(*parser)

// WithMaxDepth overrides DefaultMaxDepth. Values below 1 are ignored.
func WithMaxDepth(n int) ParseOption {
	return func(p *parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

// Parse parses a template into a Document. It recognizes template text,
// expression directives, and for/if blocks closed by {{ end }}.
func Parse(src string, opts ...ParseOption) (*Document, error) {
	p := &parser{lx: NewLexer(src), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokenEOF {
		// parseBody only stops early on a stray {{ end }} or {{ else }}.
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		return nil, &ParseError{Pos: next.Pos, Expected: TokenEOF, Found: next.Kind, Err: ErrUnexpectedToken}
	}
	return &Document{Source: src, Body: body}, nil
}

type parser struct {
	lx *Lexer

	tok      Token
	ahead    Token
	hasAhead bool

	depth    int
	maxDepth int
}

func (p *parser) advance() error {
	if p.hasAhead {
		p.tok = p.ahead
		p.hasAhead = false
		return nil
	}
	t, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// peek returns the token after the current one without consuming it.
func (p *parser) peek() (Token, error) {
	if !p.hasAhead {
		t, err := p.lx.Next()
		if err != nil {
			return Token{}, err
		}
		p.ahead = t
		p.hasAhead = true
	}
	return p.ahead, nil
}

func (p *parser) mismatch(expected TokenKind) error {
	err := ErrUnexpectedToken
	if p.tok.Kind == TokenEOF {
		err = ErrUnexpectedEOF
	}
	return &ParseError{Pos: p.tok.Pos, Expected: expected, Found: p.tok.Kind, Err: err}
}

// expect consumes the current token if it has the given kind.
func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.tok
	if t.Kind != kind {
		return t, p.mismatch(kind)
	}
	return t, p.advance()
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return &ParseError{Pos: p.tok.Pos, Found: p.tok.Kind, Err: ErrMaxDepth}
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// parseBody parses statements until end of input or until the current
// token is a '{{' followed by 'end' or 'else'. Neither token is consumed.
func (p *parser) parseBody() ([]Stmt, error) {
	var body []Stmt
	for {
		switch p.tok.Kind {
		case TokenEOF:
			return body, nil
		case TokenText:
			body = append(body, &ExprStmt{X: &TemplateLiteral{TextPos: p.tok.Pos, Text: p.tok.Val}})
			if err := p.advance(); err != nil {
				return nil, err
			}
		case TokenOpen:
			next, err := p.peek()
			if err != nil {
				return nil, err
			}
			var s Stmt
			switch next.Kind {
			case TokenEnd, TokenElse:
				return body, nil
			case TokenFor:
				s, err = p.parseFor()
			case TokenIf:
				s, err = p.parseIf()
			default:
				s, err = p.parseExprStmt()
			}
			if err != nil {
				return nil, err
			}
			body = append(body, s)
		default:
			return nil, p.mismatch(TokenOpen)
		}
	}
}

func (p *parser) parseExprStmt() (Stmt, error) {
	if _, err := p.expect(TokenOpen); err != nil {
		return nil, err
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenClose); err != nil {
		return nil, err
	}
	return &ExprStmt{X: x}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if _, err := p.expect(TokenOpen); err != nil {
		return nil, err
	}
	forTok, err := p.expect(TokenFor)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenIn); err != nil {
		return nil, err
	}
	iterable, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenClose); err != nil {
		return nil, err
	}
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if err := p.parseEnd(); err != nil {
		return nil, err
	}
	return &ForStmt{ForPos: forTok.Pos, Var: name.Val, Iterable: iterable, Body: body}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if _, err := p.expect(TokenOpen); err != nil {
		return nil, err
	}
	ifTok, err := p.expect(TokenIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenClose); err != nil {
		return nil, err
	}
	n := &IfStmt{IfPos: ifTok.Pos, Cond: cond}
	if n.Then, err = p.parseBody(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenOpen); err != nil {
		return nil, err
	}
	if p.tok.Kind == TokenElse {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenClose); err != nil {
			return nil, err
		}
		if n.Else, err = p.parseBody(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenOpen); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenEnd); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenClose); err != nil {
		return nil, err
	}
	return n, nil
}

// parseEnd consumes '{{' 'end' '}}'.
func (p *parser) parseEnd() error {
	for _, kind := range []TokenKind{TokenOpen, TokenEnd, TokenClose} {
		if _, err := p.expect(kind); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	return p.parseBinary(p.parseAnd, TokenOr)
}

func (p *parser) parseAnd() (Expr, error) {
	return p.parseBinary(p.parseEquality, TokenAnd)
}

func (p *parser) parseEquality() (Expr, error) {
	return p.parseBinary(p.parseUnary, TokenEq, TokenNotEq)
}

// parseBinary parses a left-associative chain of operands joined by any of
// ops.
func (p *parser) parseBinary(operand func() (Expr, error), ops ...TokenKind) (Expr, error) {
	x, err := operand()
	if err != nil {
		return nil, err
	}
	// Chains nest to the left, so each operator deepens the tree by one.
	entered := 0
	defer func() { p.depth -= entered }()
	for slices.Contains(ops, p.tok.Kind) {
		entered++
		if err := p.enter(); err != nil {
			return nil, err
		}
		op := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := operand()
		if err != nil {
			return nil, err
		}
		x = &Binary{OpPos: op.Pos, Op: op.Kind, Left: x, Right: y}
	}
	return x, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.Kind != TokenBang {
		return p.parseCall()
	}
	op := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	x, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	return &Unary{OpPos: op.Pos, Op: op.Kind, X: x}, nil
}

// parseCall parses an identifier with optional dotted property access, or
// a string literal.
func (p *parser) parseCall() (Expr, error) {
	switch p.tok.Kind {
	case TokenString:
		t := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &Literal{ValuePos: t.Pos, Value: t.Val[1 : len(t.Val)-1]}, nil
	case TokenIdent:
	default:
		return nil, p.mismatch(TokenIdent)
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	var x Expr = &Variable{NamePos: t.Pos, Name: t.Val}
	entered := 0
	defer func() { p.depth -= entered }()
	for p.tok.Kind == TokenDot {
		entered++
		if err := p.enter(); err != nil {
			return nil, err
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		prop, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		x = &Call{Callee: x, PropPos: prop.Pos, Property: prop.Val}
	}
	return x, nil
}
