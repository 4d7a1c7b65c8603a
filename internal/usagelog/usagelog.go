// Package usagelog appends one line per extraction attempt to a CSV file.
// The pipeline only writes it; it is an operational sink, never read back
// by the application.
package usagelog

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

const (
	OutcomeSuccess = "success"
	OutcomeFail    = "fail"
)

// Record is one extraction attempt.
type Record struct {
	Timestamp    time.Time
	DocumentID   string
	CostEstimate int // approximate, word count of the raw model response
	Outcome      string
}

type Logger struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one CSV line: timestamp,document_id,cost_estimate,outcome.
func (l *Logger) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.DocumentID,
		strconv.Itoa(rec.CostEstimate),
		rec.Outcome,
	}); err != nil {
		_ = f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
