// Package host describes the capabilities the review screen borrows from
// whatever is hosting it: a confirmation prompt and navigation.
package host

import "context"

// Confirmer asks the reviewer a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// Always returns a Confirmer that answers every prompt with answer.
func Always(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return answer })
}

// Navigator moves the reviewer to another screen.
type Navigator interface {
	GoTo(ctx context.Context, path string) error
}

// NavigateFunc adapts a function to Navigator.
type NavigateFunc func(ctx context.Context, path string) error

func (f NavigateFunc) GoTo(ctx context.Context, path string) error { return f(ctx, path) }
