package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (vendor_name -> vendor, total_amount -> amount, date -> invoice_date)
// - Drops null/empty values
// - Coerces numeric amount -> string
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite an existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	renamed("vendor_name", "vendor")
	renamed("merchant", "vendor")
	renamed("merchant_name", "vendor")
	renamed("total", "amount")
	renamed("total_amount", "amount")
	renamed("date", "invoice_date")
	renamed("tx_date", "invoice_date")

	// 2) coerce amount to a string; drop null / empty / unusable types
	if v, ok := m["amount"]; ok {
		switch t := v.(type) {
		case float64:
			if t == float64(int64(t)) {
				m["amount"] = fmt.Sprintf("%d", int64(t))
			} else {
				m["amount"] = fmt.Sprintf("%.2f", t)
			}
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, "amount")
				dropped = append(dropped, "amount(empty)")
			} else {
				m["amount"] = s
			}
		case nil:
			delete(m, "amount")
			dropped = append(dropped, "amount(null)")
		default:
			delete(m, "amount")
			dropped = append(dropped, "amount(type)")
		}
	}

	// 3) remove unknown keys
	allowed := map[string]struct{}{
		"vendor": {}, "amount": {}, "invoice_date": {}, "category": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 4) trim string fields; empty after trim means absent
	for _, k := range []string{"vendor", "invoice_date", "category"} {
		if v, ok := m[k]; ok {
			s, isStr := v.(string)
			if !isStr {
				delete(m, k)
				dropped = append(dropped, k+"(type)")
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}

	if len(dropped) > 0 {
		logger.Debug("llm.sanitize.adjusted", "changes", dropped)
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
