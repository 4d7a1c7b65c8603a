// Package pipeline coordinates invoice data extraction: fetch document
// bytes, extract text, consult the result cache, call the structured
// extractor on a miss, record spend, and coerce the result for merging.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/MIDevJourney/invoice-analyzer/constants"
	"github.com/MIDevJourney/invoice-analyzer/internal/extract"
	"github.com/MIDevJourney/invoice-analyzer/internal/extractcache"
	"github.com/MIDevJourney/invoice-analyzer/internal/filestore"
	"github.com/MIDevJourney/invoice-analyzer/internal/llm"
	"github.com/MIDevJourney/invoice-analyzer/internal/usagelog"
)

// ErrSourceNotFound is the only failure Process surfaces: the document bytes
// could not be located. Every other failure mode degrades to an empty or
// partial FieldSet.
var ErrSourceNotFound = errors.New("document source not found")

// DocumentRef identifies the source document: a stable opaque ID plus the
// key its bytes live under in the file store. Owned by the caller.
type DocumentRef struct {
	ID   string
	Path string
}

// FieldSet is the caller-facing structured result. Each field is
// independently optional; nil means "nothing learned", and the caller's
// merge must leave the existing value untouched.
type FieldSet struct {
	Vendor      *string  `json:"vendor"`
	Amount      *float64 `json:"amount"`
	InvoiceDate *string  `json:"invoice_date"`
	Category    *string  `json:"category"`
}

// Empty reports whether no field was extracted.
func (fs FieldSet) Empty() bool {
	return fs.Vendor == nil && fs.Amount == nil && fs.InvoiceDate == nil && fs.Category == nil
}

// ResultCache is the slice of extractcache.Cache the orchestrator needs.
type ResultCache interface {
	Get(key extractcache.Key) (llm.InvoiceFields, bool)
	Put(key extractcache.Key, fields llm.InvoiceFields) error
}

// UsageRecorder is the slice of usagelog.Logger the orchestrator needs.
type UsageRecorder interface {
	Append(rec usagelog.Record) error
}

// Orchestrator wires the pipeline stages together. It holds no per-call
// state; the cache and usage log are the only cross-call stores and both
// are append/overwrite-only, so concurrent Process calls need no
// coordination.
type Orchestrator struct {
	logger    *slog.Logger
	files     filestore.Store
	text      extract.TextExtractor
	cache     ResultCache
	extractor llm.FieldExtractor
	usage     UsageRecorder
}

func NewOrchestrator(
	logger *slog.Logger,
	files filestore.Store,
	text extract.TextExtractor,
	cache ResultCache,
	extractor llm.FieldExtractor,
	usage UsageRecorder,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		logger:    logger,
		files:     files,
		text:      text,
		cache:     cache,
		extractor: extractor,
		usage:     usage,
	}
}

// Process runs the extraction state machine for one document and returns a
// validated FieldSet. Extraction is best-effort enrichment: a failed text
// parse or a failed remote call produce an empty result, not an error.
func (o *Orchestrator) Process(ctx context.Context, ref DocumentRef) (FieldSet, error) {
	// 1) Fetch
	rc, err := o.files.Open(ctx, ref.Path)
	if err != nil {
		o.logger.Error("pipeline.fetch.failed", "document_id", ref.ID, "path", ref.Path, "error", err)
		return FieldSet{}, fmt.Errorf("%w: %s", ErrSourceNotFound, ref.Path)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		o.logger.Error("pipeline.fetch.read_failed", "document_id", ref.ID, "error", err)
		return FieldSet{}, fmt.Errorf("%w: %s", ErrSourceNotFound, ref.Path)
	}

	// 2) TextExtract — always proceeds; a failed parse degrades to empty text.
	res, err := o.text.Extract(ctx, data)
	if err != nil {
		o.logger.Warn("pipeline.text.degraded", "document_id", ref.ID, "error", err)
	}
	text := res.Text

	// 3) CacheLookup
	key := extractcache.NewKey(ref.ID, text)
	if cached, ok := o.cache.Get(key); ok {
		o.logger.Info("pipeline.cache.hit", "document_id", ref.ID, "key", key.TextHash)
		return o.coerce(ref.ID, cached), nil
	}

	// 4) RemoteExtract — single attempt; failure degrades to empty fields.
	fields, raw, err := o.extractor.ExtractFields(ctx, llm.ExtractRequest{
		Text:              text,
		FilenameHint:      path.Base(ref.Path),
		AllowedCategories: constants.AsStringSlice(),
	})
	cost := 0
	if err != nil {
		o.logger.Warn("pipeline.remote.degraded", "document_id", ref.ID, "error", err)
		fields = llm.InvoiceFields{}
	} else {
		cost = len(strings.Fields(string(raw)))
		// 5) CacheStore — only attempted results get cached; a write failure
		// must not alter the outcome.
		if perr := o.cache.Put(key, fields); perr != nil {
			o.logger.Warn("pipeline.cache.write_failed", "document_id", ref.ID, "error", perr)
		}
	}

	// 6) LogUsage — best-effort; a logging failure is swallowed.
	outcome := usagelog.OutcomeFail
	if fields.Vendor != "" {
		outcome = usagelog.OutcomeSuccess
	}
	if lerr := o.usage.Append(usagelog.Record{
		Timestamp:    time.Now(),
		DocumentID:   ref.ID,
		CostEstimate: cost,
		Outcome:      outcome,
	}); lerr != nil {
		o.logger.Warn("pipeline.usage.write_failed", "document_id", ref.ID, "error", lerr)
	}

	// 7) FieldCoercion + done
	return o.coerce(ref.ID, fields), nil
}

// coerce converts the wire-shaped fields into the typed FieldSet. It runs
// for cached and fresh results alike, so stale entries written before a
// rule change still pass through the same gate.
func (o *Orchestrator) coerce(documentID string, fields llm.InvoiceFields) FieldSet {
	return Coerce(fields, o.logger.With("document_id", documentID))
}
