package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Category
		wantOK bool
	}{
		{"exact match", "Travel", Travel, true},
		{"case insensitive", "travel", Travel, true},
		{"whitespace trimmed", "  Utilities  ", Utilities, true},
		{"synonym hotel", "hotel", Travel, true},
		{"synonym consultant", "consultant", Consulting, true},
		{"unknown falls back to Other", "llama grooming", Other, false},
		{"empty falls back to Other", "", Other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Canonicalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestAsStringSlice(t *testing.T) {
	cats := AsStringSlice()
	assert.Contains(t, cats, "Services")
	assert.Contains(t, cats, "Other")
	assert.Len(t, cats, 7)
}
