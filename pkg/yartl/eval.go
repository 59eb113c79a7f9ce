package yartl

import (
	"bytes"
	"errors"
)

// evaluator walks statements against a stack of context frames, innermost
// last. One evaluator serves exactly one render call.
type evaluator struct {
	stack []Value
}

func newEvaluator(root Value) *evaluator {
	if root == nil {
		root = Null
	}
	return &evaluator{stack: []Value{root}}
}

func (e *evaluator) push(frame Value) { e.stack = append(e.stack, frame) }

func (e *evaluator) pop() {
	e.stack[len(e.stack)-1] = nil
	e.stack = e.stack[:len(e.stack)-1]
}

// lookup returns the first non-null binding of name, searching from the
// innermost frame outwards. Frames that are not objects bind nothing.
func (e *evaluator) lookup(name string) Value {
	for i := len(e.stack) - 1; i >= 0; i-- {
		obj, ok := e.stack[i].(ObjectValue)
		if !ok {
			continue
		}
		if v := obj.Get(name); !isNull(v) {
			return v
		}
	}
	return Null
}

func (e *evaluator) exec(buf *bytes.Buffer, body []Stmt) error {
	for _, s := range body {
		switch t := s.(type) {
		case *ExprStmt:
			if lit, ok := t.X.(*TemplateLiteral); ok {
				buf.WriteString(lit.Text)
				continue
			}
			v, err := e.eval(t.X)
			if err != nil {
				return err
			}
			str, err := Stringify(v)
			if err != nil {
				var ee *EvalError
				if errors.As(err, &ee) {
					ee.Pos = t.Pos()
				}
				return err
			}
			buf.WriteString(str)
		case *ForStmt:
			if err := e.execFor(buf, t); err != nil {
				return err
			}
		case *IfStmt:
			cond, err := e.eval(t.Cond)
			if err != nil {
				return err
			}
			branch := t.Else
			if cond.Truth() {
				branch = t.Then
			}
			if err := e.exec(buf, branch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *evaluator) execFor(buf *bytes.Buffer, s *ForStmt) error {
	v, err := e.eval(s.Iterable)
	if err != nil {
		return err
	}
	items, ok := v.(ArrayValue)
	if !ok {
		return &EvalError{Pos: s.Iterable.Pos(), Name: s.Var, Kind: v.Kind(), Err: ErrNotAnArray}
	}
	for _, it := range items {
		if err := e.iterate(buf, s, it); err != nil {
			return err
		}
	}
	return nil
}

// iterate renders one loop body with elem bound to the loop variable. The
// frame is popped on every return path.
func (e *evaluator) iterate(buf *bytes.Buffer, s *ForStmt, elem Value) error {
	if elem == nil {
		elem = Null
	}
	e.push(ObjectValue{s.Var: elem})
	defer e.pop()
	return e.exec(buf, s.Body)
}

func (e *evaluator) eval(x Expr) (Value, error) {
	switch t := x.(type) {
	case *Variable:
		return e.lookup(t.Name), nil
	case *TemplateLiteral:
		return StringValue(t.Text), nil
	case *Literal:
		return StringValue(t.Value), nil
	case *Call:
		recv, err := e.eval(t.Callee)
		if err != nil {
			return nil, err
		}
		obj, ok := recv.(ObjectValue)
		if !ok {
			return nil, &EvalError{Pos: t.PropPos, Name: t.Property, Kind: recv.Kind(), Err: ErrUndefinedProperty}
		}
		return obj.Get(t.Property), nil
	case *Unary:
		v, err := e.eval(t.X)
		if err != nil {
			return nil, err
		}
		return BoolValue(!v.Truth()), nil
	case *Binary:
		// Both operands are always evaluated, including for && and ||.
		l, err := e.eval(t.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.eval(t.Right)
		if err != nil {
			return nil, err
		}
		switch t.Op {
		case TokenEq:
			return BoolValue(Equal(l, r)), nil
		case TokenNotEq:
			return BoolValue(!Equal(l, r)), nil
		case TokenAnd:
			return BoolValue(l.Truth() && r.Truth()), nil
		case TokenOr:
			return BoolValue(l.Truth() || r.Truth()), nil
		}
		panic("yartl: unknown binary operator " + t.Op.String())
	}
	panic("yartl: unknown expression node")
}
