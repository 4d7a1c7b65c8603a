// Package extractcache persists structured-field extraction results on disk,
// keyed by document identity plus a fingerprint of the extracted text. An
// entry is written once and never mutated; re-extraction after a text change
// lands under a new key, superseding the old entry. Entries never expire.
package extractcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MIDevJourney/invoice-analyzer/internal/llm"
)

// hashPrefixLen is the number of hex characters of the text hash kept in the
// key: 16 chars = 64 bits, negligible collision odds within one document's
// partition.
const hashPrefixLen = 16

// Key identifies one cache entry. The document ID partitions the cache so
// two documents with identical text never share an entry.
type Key struct {
	DocumentID string
	TextHash   string
}

// NewKey fingerprints the extracted text for a document.
func NewKey(documentID, text string) Key {
	sum := sha256.Sum256([]byte(text))
	return Key{
		DocumentID: documentID,
		TextHash:   hex.EncodeToString(sum[:])[:hashPrefixLen],
	}
}

type Cache struct {
	dir    string
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, logger: logger}
}

func (c *Cache) path(key Key) string {
	return filepath.Join(c.dir, key.DocumentID, key.TextHash+".json")
}

// Get returns the cached fields for key. Any read or decode problem is a
// miss, never an error: a corrupt entry must not block re-extraction.
func (c *Cache) Get(key Key) (llm.InvoiceFields, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("extractcache.read_failed", "document_id", key.DocumentID, "error", err)
		}
		return llm.InvoiceFields{}, false
	}
	var fields llm.InvoiceFields
	if err := json.Unmarshal(data, &fields); err != nil {
		c.logger.Warn("extractcache.corrupt_entry", "document_id", key.DocumentID, "key", key.TextHash, "error", err)
		return llm.InvoiceFields{}, false
	}
	return fields, true
}

// Put writes the entry via temp file + rename so concurrent writers of the
// same key are each atomic. Overwrites with identical content are harmless.
func (c *Cache) Put(key Key, fields llm.InvoiceFields) error {
	dir := filepath.Join(c.dir, key.DocumentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(dir, key.TextHash+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}
