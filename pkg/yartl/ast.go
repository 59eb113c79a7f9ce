package yartl

// Node is any AST node in a parsed template. Pos is the byte offset of the
// token the node was built from.
type Node interface {
	Pos() int
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Document is the root produced by Parse. It keeps the source so that
// offsets in errors can be mapped back to lines.
type Document struct {
	Source string
	Body   []Stmt
}

// Variable looks a name up in the context stack: {{ name }}
type Variable struct {
	NamePos int
	Name    string
}

// TemplateLiteral is raw text between directives.
type TemplateLiteral struct {
	TextPos int
	Text    string
}

// Call is dotted property access: {{ person.name }}
type Call struct {
	Callee   Expr
	PropPos  int
	Property string
}

// Unary is a prefix operator. Only '!' exists.
type Unary struct {
	OpPos int
	Op    TokenKind
	X     Expr
}

// Binary is one of '==', '!=', '&&', '||'.
type Binary struct {
	OpPos int
	Op    TokenKind
	Left  Expr
	Right Expr
}

// Literal is a quoted string; Value excludes the quotes.
type Literal struct {
	ValuePos int
	Value    string
}

func (x *Variable) Pos() int        { return x.NamePos }
func (x *TemplateLiteral) Pos() int { return x.TextPos }
func (x *Call) Pos() int            { return x.PropPos }
func (x *Unary) Pos() int           { return x.OpPos }
func (x *Binary) Pos() int          { return x.OpPos }
func (x *Literal) Pos() int         { return x.ValuePos }

func (*Variable) expr()        {}
func (*TemplateLiteral) expr() {}
func (*Call) expr()            {}
func (*Unary) expr()           {}
func (*Binary) expr()          {}
func (*Literal) expr()         {}

// ExprStmt renders the value of an expression, or a run of template text.
type ExprStmt struct {
	X Expr
}

// ForStmt represents {{ for Var in Iterable }} Body {{ end }}
type ForStmt struct {
	ForPos   int
	Var      string
	Iterable Expr
	Body     []Stmt
}

// IfStmt represents {{ if Cond }} Then {{ else }} Else {{ end }}. An empty
// Else means there was no else clause.
type IfStmt struct {
	IfPos int
	Cond  Expr
	Then  []Stmt
	Else  []Stmt
}

func (s *ExprStmt) Pos() int { return s.X.Pos() }
func (s *ForStmt) Pos() int  { return s.ForPos }
func (s *IfStmt) Pos() int   { return s.IfPos }

func (*ExprStmt) stmt() {}
func (*ForStmt) stmt()  {}
func (*IfStmt) stmt()   {}
