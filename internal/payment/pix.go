// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

// Package payment holds the PIX presentation data and the receipt intake.
// There is no payment processor behind this: the caller shows the QR code,
// the user uploads a receipt, and premium is granted on trust.
package payment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
)

// pixKey is the static PIX "copia e cola" payload shown to users.
const pixKey = "00020126360014br.gov.bcb.pix0114+557199724722852040000530398654041.005802BR5925Maxwel De Oliveira Figuei6009Sao Paulo62290525REC6920D7EDA18B824741864063040970"

// PixKey returns the PIX payload for copy-paste display.
func PixKey() string {
	return pixKey
}

// QRCodePNG renders the PIX payload as a PNG of the given pixel size.
func QRCodePNG(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}

	png, err := qrcode.Encode(pixKey, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode pix qr code")
	}
	return png, nil
}

// ReceiptStore keeps uploaded payment receipts on disk for manual review.
type ReceiptStore struct {
	dir string
}

func NewReceiptStore(dataDir string) *ReceiptStore {
	return &ReceiptStore{dir: filepath.Join(dataDir, "receipts")}
}

// Save writes one uploaded receipt under the data directory and returns the
// stored path. Filenames are timestamped; the original name is kept as a
// sanitized suffix.
func (s *ReceiptStore) Save(filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create receipts directory")
	}

	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102-150405"), sanitizeFilename(filename))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create receipt file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "failed to write receipt file")
	}

	log.Info().Str("path", path).Msg("Payment receipt stored for review")

	return path, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "receipt"
	}
	return name
}
