package yartl

import (
	"bytes"
	"fmt"
)

// Loader resolves a template name to its source text.
type Loader interface {
	Load(name string) (string, error)
}

type Renderer struct {
	Loader   Loader
	MaxDepth int
}

func NewRenderer(loader Loader) *Renderer {
	return &Renderer{Loader: loader, MaxDepth: DefaultMaxDepth}
}

// Render evaluates doc with ctx as the outermost context frame. A Document
// may be rendered any number of times, concurrently, with no state carried
// between calls.
func (r *Renderer) Render(doc *Document, ctx Value) (string, error) {
	var buf bytes.Buffer
	if err := newEvaluator(ctx).exec(&buf, doc.Body); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Parse parses src using the renderer's depth limit.
func (r *Renderer) Parse(src string) (*Document, error) {
	return Parse(src, WithMaxDepth(r.MaxDepth))
}

// RenderFile loads name through the renderer's Loader, then parses and
// renders it.
func (r *Renderer) RenderFile(name string, ctx Value) (string, error) {
	if r.Loader == nil {
		return "", fmt.Errorf("rendering %s: no loader configured", name)
	}
	src, err := r.Loader.Load(name)
	if err != nil {
		return "", err
	}
	doc, err := r.Parse(src)
	if err != nil {
		return "", err
	}
	return r.Render(doc, ctx)
}

// Render parses and renders src in one step.
func Render(src string, ctx Value) (string, error) {
	doc, err := Parse(src)
	if err != nil {
		return "", err
	}
	return NewRenderer(nil).Render(doc, ctx)
}
