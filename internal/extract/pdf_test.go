package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	e := NewPDFExtractor(nil)

	res, err := e.Extract(context.Background(), []byte("this is not a pdf"))
	require.Error(t, err)
	assert.Empty(t, res.Text, "failed parse must yield empty text")
}

func TestPDFExtractorEmptyInput(t *testing.T) {
	e := NewPDFExtractor(nil)

	res, err := e.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, res.Text)
}

func TestPDFExtractorCancelledContext(t *testing.T) {
	e := NewPDFExtractor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, []byte("%PDF-1.4 truncated"))
	require.Error(t, err)
}
