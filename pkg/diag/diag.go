// Package diag maps byte offsets in template source to line/column
// positions and renders caret-annotated messages.
package diag

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Location is a 1-based line and column plus the text of that line.
type Location struct {
	Line   int
	Column int
	Text   string
}

// Locate resolves offset within src. Offsets outside the source are
// clamped to its bounds. Columns count runes, not bytes.
func Locate(src string, offset int) Location {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEnd := strings.IndexByte(src[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(src)
	} else {
		lineEnd += offset
	}
	return Location{
		Line:   strings.Count(src[:lineStart], "\n") + 1,
		Column: utf8.RuneCountInString(src[lineStart:offset]) + 1,
		Text:   strings.TrimSuffix(src[lineStart:lineEnd], "\r"),
	}
}

const linePrefix = "Line: "

// caret returns the padding that puts a marker under column col of text.
// Tabs in the line are repeated so the marker stays aligned.
func caret(text string, col int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", len(linePrefix)))
	n := 0
	for _, r := range text {
		if n >= col-1 {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		n++
	}
	for ; n < col-1; n++ {
		b.WriteByte(' ')
	}
	return b.String()
}

// Formatter renders messages, optionally highlighting the location lines.
type Formatter struct {
	Color bool
}

// Format renders msg followed by the line and column of offset, the
// offending line and a caret under the column:
//
//	unexpected 'end' at offset 8
//	Line number: 1, Column number: 9
//	Line: text {{ end }}
//	              ^
func (f Formatter) Format(src string, offset int, msg string) string {
	loc := Locate(src, offset)

	header := fmt.Sprintf("Line number: %d, Column number: %d", loc.Line, loc.Column)
	marker := "^"
	if f.Color {
		msg = paint(msg, color.FgRed, color.Bold)
		header = paint(header, color.Faint)
		marker = paint(marker, color.FgGreen, color.Bold)
	}
	return fmt.Sprintf("%s\n%s\n%s%s\n%s%s", msg, header, linePrefix, loc.Text, caret(loc.Text, loc.Column), marker)
}

// paint colours s even when stdout is not a terminal; the caller has
// already decided that colour is wanted.
func paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// Format renders without colour.
func Format(src string, offset int, msg string) string {
	return Formatter{}.Format(src, offset, msg)
}

// Error is an error decorated with its position in a named source.
type Error struct {
	Name   string
	Source string
	Offset int
	Err    error
	color  bool
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Name != "" {
		msg = e.Name + ": " + msg
	}
	return Formatter{Color: e.color}.Format(e.Source, e.Offset, msg)
}

func (e *Error) Unwrap() error { return e.Err }

type offsetter interface {
	Offset() int
}

// Wrap decorates err with a source excerpt if anything in its chain
// reports an offset. Other errors are returned unchanged.
func (f Formatter) Wrap(err error, name, src string) error {
	if err == nil {
		return nil
	}
	var o offsetter
	if !errors.As(err, &o) {
		return err
	}
	return &Error{Name: name, Source: src, Offset: o.Offset(), Err: err, color: f.Color}
}

// Wrap is Formatter{}.Wrap.
func Wrap(err error, name, src string) error {
	return Formatter{}.Wrap(err, name, src)
}
