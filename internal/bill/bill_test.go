package bill

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReferenceType(t *testing.T) {
	tests := []struct {
		reference string
		want      RefType
	}{
		{"", RefNone},
		{"RF18539007547034", RefCreditor},
		{"210000000003139471430009017", RefQR},
	}
	for _, tt := range tests {
		if got := ReferenceType(tt.reference); got != tt.want {
			t.Errorf("ReferenceType(%q) = %s, want %s", tt.reference, got, tt.want)
		}
	}
}

func TestLoadBill(t *testing.T) {
	raw := `account: CH44 3199 9123 0008 8901 2
currency: chf
amount: 199.95
reference: "210000000003139471430009017"
creditor:
  name: Robert Schneider AG
  street: Rue du Lac
  houseNo: "1268"
  postalCode: "2501"
  town: Biel
  countryCode: CH
debtor:
  name: Pia-Maria Rutschmann-Schnyder
  postalCode: "9400"
  town: Rorschach
  countryCode: CH
`
	path := filepath.Join(t.TempDir(), "bill.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Account != "CH44 3199 9123 0008 8901 2" {
		t.Fatalf("unexpected account: %q", b.Account)
	}
	if b.Amount == nil || *b.Amount != 199.95 {
		t.Fatalf("unexpected amount: %v", b.Amount)
	}
	if b.Debtor == nil || b.Debtor.Town != "Rorschach" {
		t.Fatalf("unexpected debtor: %+v", b.Debtor)
	}
}

func TestLoadBillMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCloneIsDeep(t *testing.T) {
	amount := 12.5
	b := Bill{Amount: &amount, Debtor: &Address{Name: "X"}}
	c := b.Clone()
	*c.Amount = 99
	c.Debtor.Name = "Y"
	if *b.Amount != 12.5 || b.Debtor.Name != "X" {
		t.Fatalf("Clone shares state with original")
	}
}
