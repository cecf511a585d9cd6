package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()

	assert.Equal(t, []string{"text/plain"}, n.SupportedMIMETypes())
	assert.Equal(t, 5, n.Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		content  []byte
		wantID   string
		wantText string
	}{
		{"simple", "/docs/notes.txt", []byte("hello world"), "notes", "hello world"},
		{"crlf", "/docs/win.txt", []byte("a\r\nb\r\n"), "win", "a\nb\n"},
		{"invalid utf8", "/docs/bad.txt", []byte{'o', 'k', 0xff}, "bad", "ok�"},
		{"dotted name", "/docs/v1.2.txt", []byte("x"), "v1.2", "x"},
		{"whitespace kept", "/a.txt", []byte("  padded  "), "a", "  padded  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawDocument{URI: tt.uri, MIMEType: "text/plain", Content: tt.content}

			result, err := New().Normalise(context.Background(), raw)

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, result.Document.DocID)
			assert.Equal(t, tt.wantText, result.Document.Text)
			assert.Equal(t, tt.uri, result.Document.Source)
		})
	}
}
