package yartl

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTextAndOutput(t *testing.T) {
	doc, err := Parse("Hello {{ name }}!")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(doc.Body) != 3 {
		t.Fatalf("want 3 statements, got %d", len(doc.Body))
	}
	if s, ok := doc.Body[0].(*ExprStmt); !ok || s.X.(*TemplateLiteral).Text != "Hello " {
		t.Fatalf("stmt0 not Text('Hello '): %#v", doc.Body[0])
	}
	if s, ok := doc.Body[1].(*ExprStmt); !ok || s.X.(*Variable).Name != "name" || s.Pos() != 9 {
		t.Fatalf("stmt1 not Variable(name) at 9: %#v", doc.Body[1])
	}
	if s, ok := doc.Body[2].(*ExprStmt); !ok || s.X.(*TemplateLiteral).Text != "!" {
		t.Fatalf("stmt2 not Text('!'): %#v", doc.Body[2])
	}
}

func TestParsePrecedence(t *testing.T) {
	cases := map[string]string{
		"{{ a || b && c == d }}": "(a || (b && (c == d)))",
		"{{ a && b || c }}":      "((a && b) || c)",
		"{{ a == b == c }}":      "((a == b) == c)",
		"{{ !a == b }}":          "((!a) == b)",
		`{{ !p.q.r != "x" }}`:    `((!((p.q).r)) != "x")`,
	}
	for src, want := range cases {
		doc, err := Parse(src)
		if err != nil {
			t.Fatalf("%q: parse error: %v", src, err)
		}
		got := sexpr(doc.Body[0].(*ExprStmt).X)
		if got != want {
			t.Fatalf("%q: got %s, want %s", src, got, want)
		}
	}
}

func sexpr(x Expr) string {
	switch t := x.(type) {
	case *Call:
		return "(" + sexpr(t.Callee) + "." + t.Property + ")"
	case *Unary:
		return "(!" + sexpr(t.X) + ")"
	case *Binary:
		return "(" + sexpr(t.Left) + " " + strings.Trim(t.Op.String(), "'") + " " + sexpr(t.Right) + ")"
	}
	return ExprString(x)
}

func TestParseBlocks(t *testing.T) {
	doc, err := Parse("{{ for i in xs }}[{{ if i.ok }}y{{ else }}n{{ end }}]{{ end }}")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	f, ok := doc.Body[0].(*ForStmt)
	if !ok || f.Var != "i" || len(f.Body) != 3 {
		t.Fatalf("unexpected for: %#v", doc.Body[0])
	}
	ifs, ok := f.Body[1].(*IfStmt)
	if !ok || len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Fatalf("unexpected if: %#v", f.Body[1])
	}
	if _, err := Parse(`{{ for c in "abc" }}{{ end }}`); err != nil {
		t.Fatalf("string literal iterable: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src      string
		pos      int
		expected TokenKind
		found    TokenKind
		err      error
	}{
		{"{{ end }}", 3, TokenEOF, TokenEnd, ErrUnexpectedToken},
		{"a{{ else }}", 4, TokenEOF, TokenElse, ErrUnexpectedToken},
		{"{{ a b }}", 5, TokenClose, TokenIdent, ErrUnexpectedToken},
		{"{{ }}", 3, TokenIdent, TokenClose, ErrUnexpectedToken},
		{"{{ a. }}", 6, TokenIdent, TokenClose, ErrUnexpectedToken},
		{"{{ for x xs }}{{ end }}", 9, TokenIn, TokenIdent, ErrUnexpectedToken},
		{"{{ for x in !a }}{{ end }}", 12, TokenIdent, TokenBang, ErrUnexpectedToken},
		{"{{ if a }}{{ else }}{{ else }}{{ end }}", 23, TokenEnd, TokenElse, ErrUnexpectedToken},
		{"{{ for x in xs }}body", 21, TokenOpen, TokenEOF, ErrUnexpectedEOF},
		{"{{ if a }}x", 11, TokenOpen, TokenEOF, ErrUnexpectedEOF},
		{"{{ a", 4, TokenClose, TokenEOF, ErrUnexpectedEOF},
	}
	for _, tc := range cases {
		_, err := Parse(tc.src)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%q: want *ParseError, got %v", tc.src, err)
		}
		if !errors.Is(err, tc.err) || pe.Pos != tc.pos || pe.Expected != tc.expected || pe.Found != tc.found {
			t.Fatalf("%q: got %+v", tc.src, pe)
		}
	}
}

func TestParseLexErrorPropagates(t *testing.T) {
	_, err := Parse("ok {{ a # b }}")
	if !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("got %v", err)
	}
}

func TestParseMaxDepth(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("{{ if a }}", n) + strings.Repeat("{{ end }}", n)
	}
	if _, err := Parse(nested(3), WithMaxDepth(3)); err != nil {
		t.Fatalf("depth 3: %v", err)
	}
	_, err := Parse(nested(4), WithMaxDepth(3))
	if !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("depth 4: got %v", err)
	}
	if _, err := Parse(nested(DefaultMaxDepth + 1)); !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("default depth: got %v", err)
	}
}

func TestParseMaxDepthChains(t *testing.T) {
	cases := []struct {
		src string
		ok  bool
	}{
		{"{{ a.b.c.d }}", true},
		{"{{ a.b.c.d.e }}", false},
		{"{{ a == b != c == d }}", true},
		{"{{ a && b && c && d && e }}", false},
		{"{{ if x.y }}{{ a.b.c }}{{ end }}", true},
		{"{{ if x }}{{ a.b.c.d }}{{ end }}", false},
		{"{{ a.b.c.d }}{{ e.f.g.h }}", true},
		{"{{ a.b.c == d.e.f }}", true},
	}
	for _, tc := range cases {
		_, err := Parse(tc.src, WithMaxDepth(3))
		if tc.ok && err != nil {
			t.Fatalf("%q: %v", tc.src, err)
		}
		if !tc.ok && !errors.Is(err, ErrMaxDepth) {
			t.Fatalf("%q: want ErrMaxDepth, got %v", tc.src, err)
		}
	}

	long := "{{ a" + strings.Repeat(".a", 1_000_000) + " }}"
	_, err := Parse(long)
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("long chain: got %v", err)
	}
	if want := 4 + 2*DefaultMaxDepth; pe.Pos != want {
		t.Fatalf("long chain: error at %d, want %d", pe.Pos, want)
	}
	if _, err := Render("{{ a"+strings.Repeat(" || a", 1_000_000)+" }}", nil); !errors.Is(err, ErrMaxDepth) {
		t.Fatalf("long operator chain: got %v", err)
	}
}

func TestParseKeepsSourceText(t *testing.T) {
	src := `x {{ "lit" }}`
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	lit := doc.Body[1].(*ExprStmt).X.(*Literal)
	if lit.Value != "lit" || src[lit.Pos()+1:lit.Pos()+4] != "lit" {
		t.Fatalf("got %+v", lit)
	}
	if doc.Source != src {
		t.Fatalf("source not retained")
	}
}

func TestPretty(t *testing.T) {
	doc, err := Parse(`A{{ for x in xs }}{{ x.n }}{{ end }}{{ if !a || b == "y" }}T{{ else }}F{{ end }}`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := `Document
  Text("A")
  For(x in xs)
    Output(x.n)
  If(!a || b == "y")
    Text("T")
  Else
    Text("F")
`
	if got := Pretty(doc); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWalkCountsNodes(t *testing.T) {
	doc, err := Parse(`{{ for x in a.b }}{{ x == "1" }}{{ end }}`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var names []string
	for _, s := range doc.Body {
		err := Walk(VisitorFunc(func(n Node) error {
			if v, ok := n.(*Variable); ok {
				names = append(names, v.Name)
			}
			return nil
		}), s)
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
	}
	if strings.Join(names, ",") != "a,x" {
		t.Fatalf("got %v", names)
	}
}

func TestVariables(t *testing.T) {
	doc, err := Parse(`{{ b.c }}{{ for x in items }}{{ x.n == a }}{{ end }}{{ if !a }}{{ "lit" }}{{ end }}`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := strings.Join(Variables(doc), ","); got != "a,b,items" {
		t.Fatalf("got %q", got)
	}
	doc, err = Parse("plain text")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := Variables(doc); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
