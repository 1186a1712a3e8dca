package services

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 500

// RenderQRCode encodes content as a 500px PNG at error-correction level H.
func RenderQRCode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Highest, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}
