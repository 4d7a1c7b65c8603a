package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass it to the model as a structured-output constraint and
// also use it locally to validate the response shape.
//
// Every field is optional: a partial or empty object is a valid outcome.
// Amount is validated as a string here because sanitization normalizes
// numeric amounts to strings before validation; numeric coercion (and the
// decision to drop an unparseable amount) happens at merge time, not here.
func BuildInvoiceJSONSchema(allowedCategories []string) map[string]any {
	props := map[string]any{
		"vendor":       map[string]any{"type": "string", "minLength": 1},
		"amount":       map[string]any{"type": "string", "minLength": 1},
		"invoice_date": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"category":     map[string]any{"type": "string", "minLength": 1},
	}

	// Constrain category if a taxonomy is provided.
	if len(allowedCategories) > 0 {
		props["category"] = map[string]any{
			"type": "string",
			"enum": allowedCategories,
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{},
	}
}
