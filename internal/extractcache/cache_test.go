package extractcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDevJourney/invoice-analyzer/internal/llm"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New(t.TempDir(), nil)
	key := NewKey("doc-1", "invoice text")
	fields := llm.InvoiceFields{Vendor: "Acme Corp", Amount: "123.45", InvoiceDate: "2024-03-01", Category: "Services"}

	_, ok := c.Get(key)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Put(key, fields))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, fields, got)
}

func TestCacheKeyPartitioning(t *testing.T) {
	c := New(t.TempDir(), nil)
	fields := llm.InvoiceFields{Vendor: "Acme Corp"}
	require.NoError(t, c.Put(NewKey("doc-1", "same text"), fields))

	// Same text, different document: separate partition.
	_, ok := c.Get(NewKey("doc-2", "same text"))
	assert.False(t, ok)

	// Same document, different text: separate entry.
	_, ok = c.Get(NewKey("doc-1", "other text"))
	assert.False(t, ok)
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, nil)
	key := NewKey("doc-1", "text")
	require.NoError(t, c.Put(key, llm.InvoiceFields{Vendor: "Acme"}))

	path := filepath.Join(dir, key.DocumentID, key.TextHash+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := c.Get(key)
	assert.False(t, ok, "corrupt entry must behave as a miss")
}

func TestCacheOverwrite(t *testing.T) {
	c := New(t.TempDir(), nil)
	key := NewKey("doc-1", "text")
	require.NoError(t, c.Put(key, llm.InvoiceFields{Vendor: "First"}))
	require.NoError(t, c.Put(key, llm.InvoiceFields{Vendor: "Second"}))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "Second", got.Vendor)
}

func TestNewKeyStable(t *testing.T) {
	a := NewKey("doc-1", "hello")
	b := NewKey("doc-1", "hello")
	assert.Equal(t, a, b)
	assert.Len(t, a.TextHash, hashPrefixLen)
}
