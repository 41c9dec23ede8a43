// Package payload assembles the data text embedded in the Swiss QR code.
// The symbol encoding itself is delegated to the QR code library.
package payload

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"example.com/billgate/internal/bill"
)

const (
	qrType    = "SPC"
	version   = "0200"
	codingUTF = "1"
	trailer   = "EPD"
)

// Build assembles the QR code data text for a validated bill. Fields are
// separated by CR+LF as required by the payment standard. The bill must
// already be cleaned and checked; Build only guards against structurally
// unusable input.
func Build(b *bill.Bill) (string, error) {
	if b == nil {
		return "", errors.New("nil bill")
	}
	if b.Account == "" {
		return "", errors.New("bill has no account")
	}
	if b.Creditor.Name == "" {
		return "", errors.New("bill has no creditor")
	}

	fields := make([]string, 0, 32)
	fields = append(fields, qrType, version, codingUTF)
	fields = append(fields, b.Account)
	fields = append(fields, addressFields(&b.Creditor)...)
	// ultimate creditor, reserved for future use
	fields = append(fields, emptyAddress()...)
	fields = append(fields, amountField(b.Amount), b.Currency)
	fields = append(fields, addressFields(b.Debtor)...)
	fields = append(fields, string(bill.ReferenceType(b.Reference)), b.Reference)
	fields = append(fields, b.UnstructuredMessage, trailer, b.BillInformation)

	return strings.Join(fields, "\r\n"), nil
}

func addressFields(a *bill.Address) []string {
	if a == nil {
		return emptyAddress()
	}
	return []string{"S", a.Name, a.Street, a.HouseNo, a.PostalCode, a.Town, a.CountryCode}
}

func emptyAddress() []string {
	return []string{"", "", "", "", "", "", ""}
}

func amountField(amount *float64) string {
	if amount == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *amount)
}

// EncodePNG renders the payload text as a QR code PNG of the given pixel
// size. Error correction level M is prescribed by the payment standard.
func EncodePNG(text string, size int) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("payload is empty")
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(text, qrcode.Medium, size)
}
