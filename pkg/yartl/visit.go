package yartl

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

type Visitor interface {
	Visit(n Node) error
}

// Walk calls v.Visit for n and then for every node beneath it, depth first
// in source order. It stops at the first error.
func Walk(v Visitor, n Node) error {
	if err := v.Visit(n); err != nil {
		return err
	}
	switch t := n.(type) {
	case *ExprStmt:
		return Walk(v, t.X)
	case *ForStmt:
		if err := Walk(v, t.Iterable); err != nil {
			return err
		}
		return walkBody(v, t.Body)
	case *IfStmt:
		if err := Walk(v, t.Cond); err != nil {
			return err
		}
		if err := walkBody(v, t.Then); err != nil {
			return err
		}
		return walkBody(v, t.Else)
	case *Call:
		return Walk(v, t.Callee)
	case *Unary:
		return Walk(v, t.X)
	case *Binary:
		if err := Walk(v, t.Left); err != nil {
			return err
		}
		return Walk(v, t.Right)
	}
	return nil
}

func walkBody(v Visitor, body []Stmt) error {
	for _, s := range body {
		if err := Walk(v, s); err != nil {
			return err
		}
	}
	return nil
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(n Node) error

func (f VisitorFunc) Visit(n Node) error { return f(n) }

// Variables returns the sorted, distinct names a document reads from its
// context. Names used as a for loop variable anywhere in the document are
// left out.
func Variables(doc *Document) []string {
	refs := map[string]bool{}
	bound := map[string]bool{}
	collect := VisitorFunc(func(n Node) error {
		switch t := n.(type) {
		case *Variable:
			refs[t.Name] = true
		case *ForStmt:
			bound[t.Var] = true
		}
		return nil
	})
	for _, s := range doc.Body {
		_ = Walk(collect, s)
	}
	var names []string
	for name := range refs {
		if !bound[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Pretty returns a line-oriented string representation of the AST.
func Pretty(doc *Document) string {
	var buf bytes.Buffer
	buf.WriteString("Document\n")
	for _, s := range doc.Body {
		ppStmt(&buf, 2, s)
	}
	return buf.String()
}

func ppStmt(buf *bytes.Buffer, indent int, s Stmt) {
	ind := strings.Repeat(" ", indent)
	switch t := s.(type) {
	case *ExprStmt:
		if lit, ok := t.X.(*TemplateLiteral); ok {
			fmt.Fprintf(buf, "%sText(%q)\n", ind, lit.Text)
			return
		}
		fmt.Fprintf(buf, "%sOutput(%s)\n", ind, ExprString(t.X))
	case *ForStmt:
		fmt.Fprintf(buf, "%sFor(%s in %s)\n", ind, t.Var, ExprString(t.Iterable))
		for _, c := range t.Body {
			ppStmt(buf, indent+2, c)
		}
	case *IfStmt:
		fmt.Fprintf(buf, "%sIf(%s)\n", ind, ExprString(t.Cond))
		for _, c := range t.Then {
			ppStmt(buf, indent+2, c)
		}
		if len(t.Else) > 0 {
			fmt.Fprintf(buf, "%sElse\n", ind)
			for _, c := range t.Else {
				ppStmt(buf, indent+2, c)
			}
		}
	}
}

// ExprString prints an expression in template syntax.
func ExprString(x Expr) string {
	switch t := x.(type) {
	case *Variable:
		return t.Name
	case *TemplateLiteral:
		return t.Text
	case *Literal:
		return `"` + t.Value + `"`
	case *Call:
		return ExprString(t.Callee) + "." + t.Property
	case *Unary:
		return "!" + ExprString(t.X)
	case *Binary:
		return ExprString(t.Left) + " " + strings.Trim(t.Op.String(), "'") + " " + ExprString(t.Right)
	}
	return fmt.Sprintf("%T", x)
}

// Print converts doc back into template source. Parsing the result yields
// an equivalent tree.
func Print(doc *Document) string {
	var buf bytes.Buffer
	printBody(&buf, doc.Body)
	return buf.String()
}

func printBody(buf *bytes.Buffer, body []Stmt) {
	for _, s := range body {
		switch t := s.(type) {
		case *ExprStmt:
			if lit, ok := t.X.(*TemplateLiteral); ok {
				buf.WriteString(lit.Text)
				continue
			}
			fmt.Fprintf(buf, "{{ %s }}", ExprString(t.X))
		case *ForStmt:
			fmt.Fprintf(buf, "{{ for %s in %s }}", t.Var, ExprString(t.Iterable))
			printBody(buf, t.Body)
			buf.WriteString("{{ end }}")
		case *IfStmt:
			fmt.Fprintf(buf, "{{ if %s }}", ExprString(t.Cond))
			printBody(buf, t.Then)
			if len(t.Else) > 0 {
				buf.WriteString("{{ else }}")
				printBody(buf, t.Else)
			}
			buf.WriteString("{{ end }}")
		}
	}
}
