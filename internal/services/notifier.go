package services

import (
	"context"
	"time"

	"paytrack/internal/core"
)

// Change describes a committed mutation.
type Change struct {
	Operation string
	Month     string
	Totals    core.Totals
	At        time.Time
}

// Notifier receives a refresh signal after every committed mutation.
// Implementations must not fail the mutation; they log their own errors.
type Notifier interface {
	Notify(ctx context.Context, c Change)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, c Change)

func (f NotifierFunc) Notify(ctx context.Context, c Change) { f(ctx, c) }
