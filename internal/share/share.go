// Package share builds deep links to tour waypoints and renders them as QR
// codes.
package share

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

var ErrEmptyLink = errors.New("empty link")

// Link returns base with its fragment replaced by anchor. An empty anchor
// drops the fragment.
func Link(base, anchor string) string {
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	anchor = strings.TrimPrefix(anchor, "#")
	if anchor == "" {
		return base
	}
	return base + "#" + anchor
}

// WriteQR writes link as a PNG QR code of size pixels to path.
func WriteQR(link, path string, size int) error {
	if link == "" {
		return ErrEmptyLink
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	if err := qrcode.WriteFile(link, qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("ошибка записи QR-кода %s: %w", path, err)
	}
	return nil
}

// PNG encodes link as a QR code in memory.
func PNG(link string, size int) ([]byte, error) {
	if link == "" {
		return nil, ErrEmptyLink
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(link, qrcode.Medium, size)
}
