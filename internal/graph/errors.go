package graph

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGraph    = errors.New("invalid module graph")
	ErrDuplicateModule = errors.New("duplicate module id")
	ErrUnknownModule   = errors.New("unknown module id")
	ErrMissingVersion  = errors.New("module has no version")
)

// Error wraps a graph failure with the module it concerns.
type Error struct {
	Kind     error
	ModuleID string
	Msg      string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.ModuleID != "" {
		msg = fmt.Sprintf("%s %q", msg, e.ModuleID)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// UnknownModule returns the error raised when an id is absent from the graph.
func UnknownModule(id, context string) error {
	return &Error{Kind: ErrUnknownModule, ModuleID: id, Msg: context}
}
