package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: document bytes -> text.
//
// A non-nil error is always recoverable at the pipeline level: Result.Text
// is guaranteed to be a valid (possibly empty) string, so callers may treat
// a failed parse as an empty document and continue.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text"
	Duration time.Duration
	Warnings []string
}
