package yartl

import "errors"

var ErrTemplateNotFound = errors.New("template not found")

// MemoryLoader serves templates from a map, keyed by name.
type MemoryLoader map[string]string

func (m MemoryLoader) Load(name string) (string, error) {
	if s, ok := m[name]; ok {
		return s, nil
	}
	return "", &NotFoundError{Name: name}
}

type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return "template not found: " + e.Name }

func (e *NotFoundError) Unwrap() error { return ErrTemplateNotFound }
