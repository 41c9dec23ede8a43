package payments

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// CleanText scrubs a free-text field down to the character repertoire of the
// Swiss payment standard. Unsupported whitespace is replaced with a single
// space (runs collapse to one), every other unsupported character with a
// dot. Leading and trailing spaces are removed.
//
// If a character beyond 0xff is encountered and the string is not yet in
// NFC, the whole string is normalized once and rescanned, so that accented
// letters expressed as base letter plus combining mark can merge into a
// single, possibly valid, code point.
//
// The returned flag is true if at least one character was replaced. An
// input that cleans down to nothing yields the empty string.
func CleanText(value string) (string, bool) {
	normalized := false
	for {
		cleaned, modified, renormalize := scanText(value, normalized)
		if !renormalize {
			return cleaned, modified
		}
		value = norm.NFC.String(value)
		normalized = true
	}
}

func scanText(value string, isNormalized bool) (cleaned string, modified bool, renormalize bool) {
	// Iterate runs of valid characters that can be copied wholesale. The
	// builder is only materialized once a replacement becomes necessary.
	var sb *strings.Builder
	justProcessedSpace := false
	lastCopied := 0

	pos := 0
	for pos < len(value) {
		ch, size := utf8.DecodeRuneInString(value[pos:])
		invalidBytes := ch == utf8.RuneError && size == 1

		if !invalidBytes && isValidCharacter(ch) {
			justProcessedSpace = ch == ' '
			pos += size
			continue
		}

		if !invalidBytes && ch > 0xff && !isNormalized {
			isNormalized = norm.NFC.IsNormalString(value)
			if !isNormalized {
				return "", false, true
			}
		}

		if sb == nil {
			sb = &strings.Builder{}
			sb.Grow(len(value))
		}
		if pos > lastCopied {
			sb.WriteString(value[lastCopied:pos])
		}

		switch {
		case invalidBytes:
			// Malformed encoding (stray surrogate halves and the like):
			// swallow the whole run and emit a single dot.
			end := pos + size
			for end < len(value) {
				r, s := utf8.DecodeRuneInString(value[end:])
				if r != utf8.RuneError || s != 1 {
					break
				}
				end++
			}
			size = end - pos
			sb.WriteByte('.')
			justProcessedSpace = false
		case ch > 0xffff:
			// A code point outside the BMP is one replacement at most.
			// Spacing combining marks are dropped outright.
			if !unicode.Is(unicode.Mc, ch) {
				sb.WriteByte('.')
			}
			justProcessedSpace = false
		case unicode.IsSpace(ch):
			if !justProcessedSpace {
				sb.WriteByte(' ')
			}
			justProcessedSpace = true
		default:
			sb.WriteByte('.')
			justProcessedSpace = false
		}
		pos += size
		lastCopied = pos
	}

	if sb == nil {
		return strings.Trim(value, " "), false, false
	}
	if lastCopied < len(value) {
		sb.WriteString(value[lastCopied:])
	}
	return strings.Trim(sb.String(), " "), true, false
}
