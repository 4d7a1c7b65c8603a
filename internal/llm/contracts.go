package llm

import "context"

// InvoiceFields is the normalized shape we want from the model. All four
// fields are independently optional; partial results are valid outcomes.
type InvoiceFields struct {
	Vendor      string `json:"vendor,omitempty"`
	Amount      string `json:"amount,omitempty"`       // decimal, no currency symbol
	InvoiceDate string `json:"invoice_date,omitempty"` // YYYY-MM-DD
	Category    string `json:"category,omitempty"`     // must match AllowedCategories if provided
}

// Empty reports whether no field was extracted at all.
func (f InvoiceFields) Empty() bool {
	return f == InvoiceFields{}
}

type ExtractRequest struct {
	Text              string
	FilenameHint      string
	AllowedCategories []string
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
