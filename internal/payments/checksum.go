package payments

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrInvalidCharacter is returned when a reference contains a character
	// outside the ASCII letter/digit repertoire.
	ErrInvalidCharacter = errors.New("invalid character in reference")
)

// CalculateMod97 computes the modulo 97 checksum defined by ISO 7064
// (MOD 97-10), as used by the IBAN and ISO 11649 standards. The reference
// may only contain ASCII digits and letters; letters are case insensitive.
// The reference must be at least 4 characters long.
func CalculateMod97(reference string) (int, error) {
	if len(reference) < 4 {
		return 0, fmt.Errorf("reference too short: %q", reference)
	}
	rearranged := reference[4:] + reference[:4]
	sum := 0
	for i := 0; i < len(rearranged); i++ {
		ch := rearranged[i]
		switch {
		case ch >= '0' && ch <= '9':
			sum = sum*10 + int(ch-'0')
		case ch >= 'A' && ch <= 'Z':
			sum = sum*100 + int(ch-'A') + 10
		case ch >= 'a' && ch <= 'z':
			sum = sum*100 + int(ch-'a') + 10
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidCharacter, ch)
		}
		if sum > 9999999 {
			sum %= 97
		}
	}
	return sum % 97, nil
}

func hasValidMod97CheckDigits(value string) bool {
	mod, err := CalculateMod97(value)
	return err == nil && mod == 1
}

// IsValidIBAN reports whether the value is a structurally valid IBAN with a
// correct check digit pair. All whitespace must have been removed before
// calling.
func IsValidIBAN(iban string) bool {
	if len(iban) < 5 {
		return false
	}
	if !isAlphaNumeric(iban) {
		return false
	}
	if !isLetterAt(iban, 0) || !isLetterAt(iban, 1) || !isDigitAt(iban, 2) || !isDigitAt(iban, 3) {
		return false
	}
	return hasValidMod97CheckDigits(iban)
}

// IsQRIBAN reports whether the IBAN carries a QR-IID, i.e. an institution
// identifier in the range reserved for QR bill accounts (30000 to 31999).
func IsQRIBAN(iban string) bool {
	if len(iban) < 9 {
		return false
	}
	iid, err := strconv.Atoi(iban[4:9])
	if err != nil {
		return false
	}
	return iid >= 30000 && iid <= 31999
}

// IsValidISO11649Reference reports whether the value is a valid ISO 11649
// creditor reference ("RF" prefix, check digit pair and payload). All
// whitespace must have been removed before calling.
func IsValidISO11649Reference(reference string) bool {
	if len(reference) < 5 || len(reference) > 25 {
		return false
	}
	if !isAlphaNumeric(reference) {
		return false
	}
	if !isDigitAt(reference, 2) || !isDigitAt(reference, 3) {
		return false
	}
	return hasValidMod97CheckDigits(reference)
}

// CreateISO11649Reference derives a creditor reference from a raw
// alphanumeric payload by prefixing it with "RF" and the modulo 97 check
// digit pair. Whitespace in the payload is removed first.
func CreateISO11649Reference(rawReference string) (string, error) {
	payload := removeWhitespace(rawReference)
	if len(payload) == 0 || len(payload) > 21 {
		return "", fmt.Errorf("payload length %d outside 1..21", len(payload))
	}
	modulo, err := CalculateMod97("RF00" + payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RF%02d%s", 98-modulo, payload), nil
}

// mod10Table is the substitution table of the recursive modulo 10 checksum
// used by QR (formerly ISR) reference numbers.
var mod10Table = [10]int{0, 9, 4, 6, 8, 2, 7, 1, 3, 5}

// IsValidQRReference reports whether the value is a valid 27-digit QR
// reference number. All whitespace must have been removed before calling.
func IsValidQRReference(reference string) bool {
	if len(reference) != 27 {
		return false
	}
	if !isNumeric(reference) {
		return false
	}
	carry := 0
	for i := 0; i < len(reference); i++ {
		digit := int(reference[i] - '0')
		carry = mod10Table[(carry+digit)%10]
	}
	return carry == 0
}

// QRReferenceCheckDigit computes the trailing check digit for a 26-digit QR
// reference payload.
func QRReferenceCheckDigit(payload string) (byte, error) {
	if !isNumeric(payload) {
		return 0, fmt.Errorf("%w: payload must be numeric", ErrInvalidCharacter)
	}
	carry := 0
	for i := 0; i < len(payload); i++ {
		digit := int(payload[i] - '0')
		carry = mod10Table[(carry+digit)%10]
	}
	return byte('0' + (10-carry)%10), nil
}

// CreateQRReference derives a full 27-digit QR reference from a raw numeric
// payload of at most 26 digits. The payload is stripped of whitespace and
// left-padded with zeros before the check digit is appended.
func CreateQRReference(rawReference string) (string, error) {
	payload := removeWhitespace(rawReference)
	if !isNumeric(payload) {
		return "", fmt.Errorf("%w: payload must be numeric", ErrInvalidCharacter)
	}
	if len(payload) > 26 {
		return "", fmt.Errorf("payload too long: %d digits", len(payload))
	}
	payload = strings.Repeat("0", 26-len(payload)) + payload
	check, err := QRReferenceCheckDigit(payload)
	if err != nil {
		return "", err
	}
	return payload + string(check), nil
}

// FormatIBAN formats an IBAN or creditor reference by inserting a space
// after every group of 4 characters. A shorter final group stays at the
// end. The value must not contain whitespace.
func FormatIBAN(iban string) string {
	var sb strings.Builder
	sb.Grow(len(iban) + len(iban)/4)
	for pos := 0; pos < len(iban); pos += 4 {
		end := pos + 4
		if end > len(iban) {
			end = len(iban)
		}
		sb.WriteString(iban[pos:end])
		if end != len(iban) {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// FormatQRReference formats a QR reference number into groups of 5 digits.
// A shorter group, if needed, appears at the start. The value must not
// contain whitespace.
func FormatQRReference(reference string) string {
	var sb strings.Builder
	sb.Grow(len(reference) + len(reference)/5)
	pos := 0
	for pos < len(reference) {
		end := pos + (len(reference)-pos-1)%5 + 1
		if pos != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(reference[pos:end])
		pos = end
	}
	return sb.String()
}

func isNumeric(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func isAlphaNumeric(value string) bool {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch >= '0' && ch <= '9' {
			continue
		}
		if ch >= 'A' && ch <= 'Z' {
			continue
		}
		if ch >= 'a' && ch <= 'z' {
			continue
		}
		return false
	}
	return true
}

func isLetterAt(value string, i int) bool {
	ch := value[i]
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func isDigitAt(value string, i int) bool {
	ch := value[i]
	return ch >= '0' && ch <= '9'
}

func removeWhitespace(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}
