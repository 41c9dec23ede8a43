package bill

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RefType identifies the reference scheme a payment uses.
type RefType string

const (
	// RefQR is a 27-digit QR reference (former ISR reference).
	RefQR RefType = "QRR"
	// RefCreditor is an ISO 11649 creditor reference.
	RefCreditor RefType = "SCOR"
	// RefNone indicates a payment without a structured reference.
	RefNone RefType = "NON"
)

// Address is a structured postal address as used on the payment part.
type Address struct {
	Name        string `json:"name" yaml:"name"`
	Street      string `json:"street,omitempty" yaml:"street,omitempty"`
	HouseNo     string `json:"houseNo,omitempty" yaml:"houseNo,omitempty"`
	PostalCode  string `json:"postalCode" yaml:"postalCode"`
	Town        string `json:"town" yaml:"town"`
	CountryCode string `json:"countryCode" yaml:"countryCode"`
}

// Bill carries the payment data for a single QR bill.
type Bill struct {
	Account             string   `json:"account" yaml:"account"`
	Creditor            Address  `json:"creditor" yaml:"creditor"`
	Amount              *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Currency            string   `json:"currency" yaml:"currency"`
	Reference           string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	UnstructuredMessage string   `json:"unstructuredMessage,omitempty" yaml:"unstructuredMessage,omitempty"`
	BillInformation     string   `json:"billInformation,omitempty" yaml:"billInformation,omitempty"`
	Debtor              *Address `json:"debtor,omitempty" yaml:"debtor,omitempty"`
}

// ReferenceType classifies a whitespace-free reference value.
func ReferenceType(reference string) RefType {
	switch {
	case reference == "":
		return RefNone
	case strings.HasPrefix(reference, "RF"):
		return RefCreditor
	default:
		return RefQR
	}
}

// Load reads a bill from a YAML file.
func Load(path string) (Bill, error) {
	var b Bill
	f, err := os.Open(path)
	if err != nil {
		return b, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&b); err != nil {
		return b, fmt.Errorf("decode bill: %w", err)
	}
	return b, nil
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	out := b
	if b.Amount != nil {
		amount := *b.Amount
		out.Amount = &amount
	}
	if b.Debtor != nil {
		debtor := *b.Debtor
		out.Debtor = &debtor
	}
	return out
}
