package document

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the pixel size of the generated PNG. It is scaled down when placed.
const QRSize = 256

// QREncoder turns content into a PNG image.
type QREncoder func(content string, size int) ([]byte, error)

// EncodeQR uses the highest error correction level so a worn printout still scans.
func EncodeQR(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr content is empty")
	}

	code, err := qrcode.New(content, qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}

	return png, nil
}
