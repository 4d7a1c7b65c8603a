package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts plain text from PDF bytes, page by page, in page
// order. It is a pure function of its input: no temp files, no subprocesses.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (res Result, err error) {
	start := time.Now()
	res.Method = "pdf-text"

	// The parser panics on some malformed files; convert that to the same
	// recoverable error a failed open produces.
	defer func() {
		if r := recover(); r != nil {
			res = Result{Method: "pdf-text", Duration: time.Since(start)}
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("open pdf: %w", err)
	}

	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// keep going; a single bad page should not sink the document
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, err))
			e.logger.Warn("extract.pdf.page_failed", "page", i, "error", err)
			continue
		}
		buf.WriteString(text)
	}

	res.Text = strings.TrimSpace(buf.String())
	res.Pages = numPages
	res.Duration = time.Since(start)
	e.logger.Debug("extract.pdf.ok",
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
