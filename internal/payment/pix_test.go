// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package payment

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixKeyIsBRCode(t *testing.T) {
	key := PixKey()
	assert.True(t, strings.HasPrefix(key, "000201"))
	assert.Contains(t, key, "br.gov.bcb.pix")
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG(256)
	require.NoError(t, err)

	// PNG magic bytes
	require.True(t, len(png) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestQRCodePNGDefaultSize(t *testing.T) {
	png, err := QRCodePNG(0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestReceiptStoreSave(t *testing.T) {
	dataDir := t.TempDir()
	store := NewReceiptStore(dataDir)

	path, err := store.Save("comprovante.jpg", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataDir, "receipts"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_comprovante.jpg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "plain name kept",
			in:       "receipt.jpg",
			expected: "receipt.jpg",
		},
		{
			name:     "path components stripped",
			in:       "../../etc/passwd",
			expected: "passwd",
		},
		{
			name:     "unsafe runes replaced",
			in:       "meu comprovante (1).png",
			expected: "meu_comprovante__1_.png",
		},
		{
			name:     "empty name gets fallback",
			in:       "",
			expected: "receipt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeFilename(tt.in))
		})
	}
}
