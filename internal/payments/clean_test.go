package payments

import (
	"strings"
	"testing"
)

func TestCleanTextKeepsValidText(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain ascii", "Robert Schneider AG"},
		{"precomposed accents", "Café Müller"},
		{"pound and acute", "£100 ´"},
		{"full printable range", "!\"#$%&'()*+,-./:;<=>?@[\\]_`{|}~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, modified := CleanText(tt.input)
			if cleaned != tt.input {
				t.Fatalf("CleanText(%q) = %q, want unchanged", tt.input, cleaned)
			}
			if modified {
				t.Fatalf("CleanText(%q) reported modification", tt.input)
			}
		})
	}
}

func TestCleanTextReplacesUnsupportedCharacters(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		modified bool
	}{
		{"caret", "Café^ Müller", "Café. Müller", true},
		{"excluded latin1 a tilde", "SÃo Paulo", "S.o Paulo", true},
		{"excluded latin1 ring", "Åland", ".land", true},
		{"control character", "abc\x01def", "abc.def", true},
		{"cyrillic", "Москва", "......", true},
		{"emoji single dot", "a\U0001F600b", "a.b", true},
		{"spacing mark dropped", "a\U0001D16Db", "ab", true},
		{"tab becomes space", "a\tb", "a b", true},
		{"newline run collapses", "a\r\n\tb", "a b", true},
		{"nbsp run collapses", "a  b", "a b", true},
		{"valid space suppresses nbsp", "a  b", "a b", true},
		{"leading trailing trimmed", "\tVisible\t", "Visible", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, modified := CleanText(tt.input)
			if cleaned != tt.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tt.input, cleaned, tt.want)
			}
			if modified != tt.modified {
				t.Fatalf("CleanText(%q) modified = %v, want %v", tt.input, modified, tt.modified)
			}
		})
	}
}

func TestCleanTextNormalizesDecomposedAccents(t *testing.T) {
	// e plus combining acute accent merges into a valid precomposed é,
	// so no replacement happens.
	cleaned, modified := CleanText("Café Müller")
	if cleaned != "Café Müller" {
		t.Fatalf("CleanText = %q, want %q", cleaned, "Café Müller")
	}
	if modified {
		t.Fatalf("normalization alone must not count as modification")
	}
}

func TestCleanTextNormalizedButStillInvalid(t *testing.T) {
	// a plus combining tilde composes to ã (0xe3), which is excluded.
	cleaned, modified := CleanText("ã")
	if cleaned != "." {
		t.Fatalf("CleanText = %q, want %q", cleaned, ".")
	}
	if !modified {
		t.Fatalf("expected modification flag")
	}
}

func TestCleanTextEmptyResults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		modified bool
	}{
		{"empty", "", false},
		{"spaces only", "   ", false},
		{"invalid whitespace only", "\t\r\n", true},
		{"mixed whitespace only", "   \t ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, modified := CleanText(tt.input)
			if cleaned != "" {
				t.Fatalf("CleanText(%q) = %q, want empty", tt.input, cleaned)
			}
			if modified != tt.modified {
				t.Fatalf("CleanText(%q) modified = %v, want %v", tt.input, modified, tt.modified)
			}
		})
	}
}

func TestCleanTextMalformedEncoding(t *testing.T) {
	// A lone surrogate half encoded as raw bytes is not valid UTF-8; the
	// whole malformed run collapses to one dot.
	input := "ab" + string([]byte{0xed, 0xa0, 0xbd}) + "cd"
	cleaned, modified := CleanText(input)
	if cleaned != "ab.cd" {
		t.Fatalf("CleanText = %q, want %q", cleaned, "ab.cd")
	}
	if !modified {
		t.Fatalf("expected modification flag")
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"Café^ Müller",
		"a  b",
		"\tGrüezi mitenand\t",
		"Москва \U0001F600",
		"Café",
		"plain",
	}
	for _, input := range inputs {
		first, _ := CleanText(input)
		second, modified := CleanText(first)
		if second != first {
			t.Errorf("CleanText not idempotent for %q: %q then %q", input, first, second)
		}
		if modified {
			t.Errorf("second pass over %q reported modification", input)
		}
	}
}

func TestCleanTextLongValidRun(t *testing.T) {
	input := strings.Repeat("Valid text ", 50) + "^"
	cleaned, modified := CleanText(input)
	want := strings.Repeat("Valid text ", 50) + "."
	if cleaned != want {
		t.Fatalf("unexpected cleaned value")
	}
	if !modified {
		t.Fatalf("expected modification flag")
	}
}
