package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MIDevJourney/invoice-analyzer/internal/llm"
)

// ExtractFields implements llm.FieldExtractor using text-only chat/completions.
// A single attempt: transport errors, non-2xx statuses and unparseable
// responses all come back as errors for the caller to degrade on.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
		"allowed_categories", len(req.AllowedCategories),
	)

	schema := llm.BuildInvoiceJSONSchema(req.AllowedCategories)
	sys := llm.BuildSystemPrompt(req)
	user := llm.BuildUserPrompt(req)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": user + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, raw, fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	rawContent := []byte(content)

	// Normalize first (synonym keys, numeric amounts, nulls), then validate
	// strictly. Anything that still fails validation maps to the empty
	// FieldSet failure mode upstream.
	cleaned, dropped, sErr := llm.NormalizeAndSanitizeJSON(rawContent, c.log)
	if sErr != nil {
		c.log.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", sErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, rawContent, fmt.Errorf("sanitize response: %w", sErr)
	}
	if len(dropped) > 0 {
		c.log.Warn("llm.extract.sanitize_applied", "req_id", rid, "changes", dropped)
	}
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, rawContent, fmt.Errorf("schema validation failed: %w", err)
	}

	var out llm.InvoiceFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, rawContent, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"vendor", out.Vendor,
		"amount", out.Amount,
		"date", out.InvoiceDate,
		"category", out.Category,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, raw, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
