package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDevJourney/invoice-analyzer/internal/llm"
)

func completionWith(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestExtractFieldsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionWith(`{"vendor": "Acme Corp", "amount": "123.45", "invoice_date": "2024-03-01", "category": "Services"}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	fields, raw, err := c.ExtractFields(context.Background(), llm.ExtractRequest{
		Text:              "invoice text",
		AllowedCategories: []string{"Services", "Other"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", fields.Vendor)
	assert.Equal(t, "123.45", fields.Amount)
	assert.Equal(t, "2024-03-01", fields.InvoiceDate)
	assert.Equal(t, "Services", fields.Category)
	assert.NotEmpty(t, raw)
}

func TestExtractFieldsSanitizesSynonyms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionWith(`{"vendor_name": "Acme", "total": 99.5, "notes": "n/a"}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	fields, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "t"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", fields.Vendor)
	assert.Equal(t, "99.50", fields.Amount)
}

func TestExtractFieldsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestExtractFieldsNonJSONContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionWith("I could not find any fields, sorry!")))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "t"})
	require.Error(t, err)
}

func TestExtractFieldsNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
