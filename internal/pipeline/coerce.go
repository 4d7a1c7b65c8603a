package pipeline

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/MIDevJourney/invoice-analyzer/constants"
	"github.com/MIDevJourney/invoice-analyzer/internal/llm"
)

// Coerce turns the model's string-shaped fields into the typed FieldSet
// callers merge from. An amount that cannot be read as a decimal is dropped,
// never an error; an off-vocabulary category canonicalizes to Other.
func Coerce(fields llm.InvoiceFields, logger *slog.Logger) FieldSet {
	if logger == nil {
		logger = slog.Default()
	}
	var out FieldSet

	if v := strings.TrimSpace(fields.Vendor); v != "" {
		out.Vendor = &v
	}
	if d := strings.TrimSpace(fields.InvoiceDate); d != "" {
		out.InvoiceDate = &d
	}
	if c := strings.TrimSpace(fields.Category); c != "" {
		canon, ok := constants.Canonicalize(c)
		if !ok {
			logger.Warn("pipeline.coerce.category_unknown", "label", c)
		}
		s := string(canon)
		out.Category = &s
	}
	if a := strings.TrimSpace(fields.Amount); a != "" {
		if amount, ok := parseAmount(a); ok {
			out.Amount = &amount
		} else {
			logger.Warn("pipeline.coerce.amount_dropped", "value", a)
		}
	}
	return out
}

// parseAmount reads a decimal amount, tolerating a currency-symbol prefix
// and thousands separators the model sometimes leaves in.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
