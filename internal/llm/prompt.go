package llm

import (
	"strings"
)

const maxPromptTextLen = 6000

// BuildSystemPrompt composes the fixed instruction: the four fields we want,
// the closed category vocabulary, and strict formatting rules.
func BuildSystemPrompt(req ExtractRequest) string {
	var catLine string
	if len(req.AllowedCategories) > 0 {
		catLine = "If a category is identifiable it MUST be exactly one of the allowed enum; " +
			"if uncertain, choose 'Other'. Allowed categories (enum): " + strings.Join(req.AllowedCategories, ", ") + "."
	} else {
		catLine = "If a category is identifiable it must be a short, sensible label."
	}

	parts := []string{
		"You are an invoice parsing assistant. Extract fields from the invoice text and return ONLY a single JSON object with the keys: vendor, amount, invoice_date, category.",
		"Use ISO-8601 dates (YYYY-MM-DD) for invoice_date.",
		"amount is the invoice total as a plain decimal number without currency symbols or thousands separators.",
		catLine,
		"Never output null. If a field is not present in the text, omit the key entirely.",
		"Do not add any keys beyond the four listed.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document text plus a filename hint.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("Filename: ")
		b.WriteString(filename)
		b.WriteString("\n")
	}
	text := strings.TrimSpace(req.Text)
	b.WriteString("\nInvoice text (first ~6k chars):\n")
	if len(text) > maxPromptTextLen {
		b.WriteString(text[:maxPromptTextLen])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
