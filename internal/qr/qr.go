// Package qr renders attendance session tokens as QR code images.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 300

// EncodePNG renders the literal token into a PNG QR code. The token is
// encoded as-is: whatever the scanner decodes is submitted back verbatim.
func EncodePNG(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	png, err := qrcode.Encode(token, qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
