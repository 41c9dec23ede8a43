package payload

import (
	"strings"
	"testing"

	"example.com/billgate/internal/bill"
)

func testBill() *bill.Bill {
	amount := 1949.75
	return &bill.Bill{
		Account:   "CH4431999123000889012",
		Currency:  "CHF",
		Amount:    &amount,
		Reference: "210000000003139471430009019",
		Creditor: bill.Address{
			Name:        "Robert Schneider AG",
			Street:      "Rue du Lac",
			HouseNo:     "1268",
			PostalCode:  "2501",
			Town:        "Biel",
			CountryCode: "CH",
		},
		Debtor: &bill.Address{
			Name:        "Pia-Maria Rutschmann-Schnyder",
			Street:      "Grosse Marktgasse",
			HouseNo:     "28",
			PostalCode:  "9400",
			Town:        "Rorschach",
			CountryCode: "CH",
		},
		UnstructuredMessage: "Instruction of 15.09.2019",
	}
}

func TestBuildFieldLayout(t *testing.T) {
	text, err := Build(testBill())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fields := strings.Split(text, "\r\n")
	if len(fields) != 32 {
		t.Fatalf("expected 32 fields, got %d", len(fields))
	}
	want := map[int]string{
		0:  "SPC",
		1:  "0200",
		2:  "1",
		3:  "CH4431999123000889012",
		4:  "S",
		5:  "Robert Schneider AG",
		9:  "Biel",
		10: "CH",
		11: "", // ultimate creditor stays empty
		18: "1949.75",
		19: "CHF",
		20: "S",
		21: "Pia-Maria Rutschmann-Schnyder",
		27: "QRR",
		28: "210000000003139471430009019",
		29: "Instruction of 15.09.2019",
		30: "EPD",
		31: "",
	}
	for i, value := range want {
		if fields[i] != value {
			t.Errorf("field %d = %q, want %q", i, fields[i], value)
		}
	}
}

func TestBuildWithoutOptionalParts(t *testing.T) {
	b := testBill()
	b.Amount = nil
	b.Debtor = nil
	b.Reference = ""
	b.UnstructuredMessage = ""
	text, err := Build(b)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	fields := strings.Split(text, "\r\n")
	if fields[18] != "" {
		t.Errorf("open amount must be empty, got %q", fields[18])
	}
	if fields[20] != "" || fields[21] != "" {
		t.Errorf("missing debtor must yield empty fields")
	}
	if fields[27] != "NON" || fields[28] != "" {
		t.Errorf("expected NON reference, got %q %q", fields[27], fields[28])
	}
}

func TestBuildRejectsUnusableBill(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Fatalf("expected error for nil bill")
	}
	b := testBill()
	b.Account = ""
	if _, err := Build(b); err == nil {
		t.Fatalf("expected error for missing account")
	}
	b = testBill()
	b.Creditor = bill.Address{}
	if _, err := Build(b); err == nil {
		t.Fatalf("expected error for missing creditor")
	}
}

func TestEncodePNG(t *testing.T) {
	text, err := Build(testBill())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	png, err := EncodePNG(text, 128)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if len(png) == 0 {
		t.Fatalf("empty PNG output")
	}
	// PNG signature
	if string(png[1:4]) != "PNG" {
		t.Fatalf("output is not a PNG")
	}
}

func TestEncodePNGEmptyPayload(t *testing.T) {
	if _, err := EncodePNG("   ", 128); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
