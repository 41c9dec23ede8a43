package payments

// isValidCharacter reports whether ch belongs to the character repertoire
// admitted by the Swiss Payment Standards (2018, ch. 2.4.1 and appendix D).
// The repertoire is the printable ASCII range without the caret, plus a
// hand-picked subset of the Latin-1 supplement.
func isValidCharacter(ch rune) bool {
	if ch < 0x20 {
		return false
	}
	if ch == 0x5e {
		return false
	}
	if ch <= 0x7e {
		return true
	}
	if ch == 0xa3 || ch == 0xb4 {
		return true
	}
	if ch < 0xc0 || ch > 0xfd {
		return false
	}
	switch ch {
	case 0xc3, 0xc5, 0xc6,
		0xd0, 0xd5, 0xd7, 0xd8,
		0xdd, 0xde,
		0xe3, 0xe5, 0xe6,
		0xf0, 0xf5, 0xf8:
		return false
	}
	return true
}
