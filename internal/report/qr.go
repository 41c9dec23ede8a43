package report

import (
	"os"

	"example.com/billgate/internal/bill"
	"example.com/billgate/internal/payload"
)

// PayloadToQR renders the Swiss QR code PNG for a validated bill.
func PayloadToQR(b *bill.Bill, size int) ([]byte, error) {
	text, err := payload.Build(b)
	if err != nil {
		return nil, err
	}
	return payload.EncodePNG(text, size)
}

// SavePayloadPNG writes the bill's QR code PNG to a file.
func SavePayloadPNG(b *bill.Bill, size int, out string) error {
	png, err := PayloadToQR(b, size)
	if err != nil {
		return err
	}
	return os.WriteFile(out, png, 0644)
}
