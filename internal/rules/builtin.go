package rules

import (
	"fmt"
	"strings"

	"example.com/billgate/internal/bill"
	"example.com/billgate/internal/payments"
)

// Field length limits of the Swiss payment standard (SPS 2018, annex B).
const (
	maxLenName            = 70
	maxLenStreet          = 70
	maxLenHouseNo         = 16
	maxLenPostalCode      = 16
	maxLenTown            = 35
	maxLenMessage         = 140
	maxLenBillInformation = 140
)

const (
	amountMin = 0.01
	amountMax = 999999999.99
)

func (e *Engine) RegisterBuiltins() {
	e.Register("CheckAccount", CheckAccount)
	e.Register("CheckReference", CheckReference)
	e.Register("CheckCurrency", CheckCurrency)
	e.Register("CheckAmount", CheckAmount)
	e.Register("CheckCreditor", CheckCreditor)
	e.Register("CheckDebtor", CheckDebtor)
	e.Register("CheckMessages", CheckMessages)
}

// DefaultRulePack returns the built-in rule pack for the current payment
// standard profile.
func DefaultRulePack() RulePack {
	return RulePack{
		RulePackId: "sps-default",
		Version:    "2.0",
		Profile:    "sps-2018",
		Rules: []Rule{
			{RuleId: "PB-0001", Name: "Account IBAN", Field: "account", Severity: ERROR, CheckFunc: "CheckAccount", Refs: []string{"SPS 2018 4.3.3"}},
			{RuleId: "PB-0002", Name: "Payment reference", Field: "reference", Severity: ERROR, CheckFunc: "CheckReference", Refs: []string{"SPS 2018 4.3.3", "ISO 11649"}},
			{RuleId: "PB-0003", Name: "Currency", Field: "currency", Severity: ERROR, CheckFunc: "CheckCurrency", Refs: []string{"SPS 2018 4.3.3"}},
			{RuleId: "PB-0004", Name: "Amount range", Field: "amount", Severity: ERROR, CheckFunc: "CheckAmount", Refs: []string{"SPS 2018 4.3.3"}},
			{RuleId: "PB-0005", Name: "Creditor address", Field: "creditor", Severity: ERROR, CheckFunc: "CheckCreditor", Refs: []string{"SPS 2018 annex B"}},
			{RuleId: "PB-0006", Name: "Debtor address", Field: "debtor", Severity: ERROR, CheckFunc: "CheckDebtor", Refs: []string{"SPS 2018 annex B"}},
			{RuleId: "PB-0007", Name: "Message fields", Field: "unstructuredMessage", Severity: ERROR, CheckFunc: "CheckMessages", Refs: []string{"SPS 2018 annex B"}},
		},
	}
}

func CheckAccount(ctx *Context, rule Rule) []Diagnostic {
	account := strings.ToUpper(stripSpaces(ctx.Bill.Account))
	ctx.Cleaned.Account = account
	if account == "" {
		return fieldError(rule, "account", "account IBAN is mandatory")
	}
	if !payments.IsValidIBAN(account) {
		return fieldError(rule, "account", fmt.Sprintf("invalid IBAN: %s", account))
	}
	if !strings.HasPrefix(account, "CH") && !strings.HasPrefix(account, "LI") {
		return fieldError(rule, "account", "account must be a CH or LI IBAN")
	}
	return nil
}

func CheckReference(ctx *Context, rule Rule) []Diagnostic {
	reference := strings.ToUpper(stripSpaces(ctx.Bill.Reference))
	ctx.Cleaned.Reference = reference
	account := strings.ToUpper(stripSpaces(ctx.Bill.Account))

	refType := bill.ReferenceType(reference)
	var diags []Diagnostic
	switch refType {
	case bill.RefQR:
		if !payments.IsValidQRReference(reference) {
			diags = append(diags, fieldError(rule, "reference", fmt.Sprintf("invalid QR reference: %s", reference))...)
		}
	case bill.RefCreditor:
		if !payments.IsValidISO11649Reference(reference) {
			diags = append(diags, fieldError(rule, "reference", fmt.Sprintf("invalid creditor reference: %s", reference))...)
		}
	case bill.RefNone:
		// nothing to check
	}

	if payments.IsValidIBAN(account) {
		qrIBAN := payments.IsQRIBAN(account)
		if qrIBAN && refType != bill.RefQR {
			diags = append(diags, fieldError(rule, "reference", "QR-IBAN requires a QR reference")...)
		}
		if !qrIBAN && refType == bill.RefQR {
			diags = append(diags, fieldError(rule, "reference", "QR reference requires a QR-IBAN account")...)
		}
	}
	return diags
}

func CheckCurrency(ctx *Context, rule Rule) []Diagnostic {
	currency := strings.ToUpper(strings.TrimSpace(ctx.Bill.Currency))
	ctx.Cleaned.Currency = currency
	if currency != "CHF" && currency != "EUR" {
		return fieldError(rule, "currency", fmt.Sprintf("currency must be CHF or EUR, got %q", ctx.Bill.Currency))
	}
	return nil
}

func CheckAmount(ctx *Context, rule Rule) []Diagnostic {
	if ctx.Bill.Amount == nil {
		// open amount, payable slip without a fixed sum
		return nil
	}
	amount := *ctx.Bill.Amount
	if amount < amountMin || amount > amountMax {
		return fieldError(rule, "amount", fmt.Sprintf("amount %.2f outside 0.01..999999999.99", amount))
	}
	return nil
}

func CheckCreditor(ctx *Context, rule Rule) []Diagnostic {
	return checkAddress(ctx.Bill.Creditor, &ctx.Cleaned.Creditor, "creditor", true, rule)
}

func CheckDebtor(ctx *Context, rule Rule) []Diagnostic {
	if ctx.Bill.Debtor == nil {
		return nil
	}
	debtor := *ctx.Bill.Debtor
	ctx.Cleaned.Debtor = &debtor
	return checkAddress(*ctx.Bill.Debtor, ctx.Cleaned.Debtor, "debtor", true, rule)
}

func CheckMessages(ctx *Context, rule Rule) []Diagnostic {
	var diags []Diagnostic

	message, d := cleanField(ctx.Bill.UnstructuredMessage, "unstructuredMessage", maxLenMessage, rule)
	ctx.Cleaned.UnstructuredMessage = message
	diags = append(diags, d...)

	info, d := cleanField(ctx.Bill.BillInformation, "billInformation", maxLenBillInformation, rule)
	ctx.Cleaned.BillInformation = info
	diags = append(diags, d...)

	if info != "" && !strings.HasPrefix(info, "//") {
		diags = append(diags, fieldError(rule, "billInformation", "bill information must start with //")...)
	}
	if len(message)+len(info) > maxLenMessage {
		diags = append(diags, fieldError(rule, "unstructuredMessage",
			fmt.Sprintf("message and bill information exceed %d characters combined", maxLenMessage))...)
	}
	return diags
}

func checkAddress(in bill.Address, out *bill.Address, field string, required bool, rule Rule) []Diagnostic {
	var diags []Diagnostic

	clean := func(value, sub string, maxLen int) string {
		v, d := cleanField(value, field+"."+sub, maxLen, rule)
		diags = append(diags, d...)
		return v
	}
	out.Name = clean(in.Name, "name", maxLenName)
	out.Street = clean(in.Street, "street", maxLenStreet)
	out.HouseNo = clean(in.HouseNo, "houseNo", maxLenHouseNo)
	out.PostalCode = clean(in.PostalCode, "postalCode", maxLenPostalCode)
	out.Town = clean(in.Town, "town", maxLenTown)
	out.CountryCode = strings.ToUpper(strings.TrimSpace(in.CountryCode))

	if required {
		if out.Name == "" {
			diags = append(diags, fieldError(rule, field+".name", "name is mandatory")...)
		}
		if out.PostalCode == "" {
			diags = append(diags, fieldError(rule, field+".postalCode", "postal code is mandatory")...)
		}
		if out.Town == "" {
			diags = append(diags, fieldError(rule, field+".town", "town is mandatory")...)
		}
	}
	if out.CountryCode != "" && !isCountryCode(out.CountryCode) {
		diags = append(diags, fieldError(rule, field+".countryCode",
			fmt.Sprintf("country code must be two letters, got %q", in.CountryCode))...)
	}
	if required && out.CountryCode == "" {
		diags = append(diags, fieldError(rule, field+".countryCode", "country code is mandatory")...)
	}
	return diags
}

// cleanField runs the character sanitizer over a text field, clips it to the
// standard's maximum length and reports substitutions and clipping.
func cleanField(value, field string, maxLen int, rule Rule) (string, []Diagnostic) {
	cleaned, substituted := payments.CleanText(value)
	var diags []Diagnostic
	if substituted {
		diags = append(diags, Diagnostic{
			Field: field, RuleId: rule.RuleId, Severity: WARN,
			Message:      "unsupported characters were replaced",
			CleanedValue: cleaned, Substituted: true,
		})
	}
	if runes := []rune(cleaned); len(runes) > maxLen {
		cleaned = strings.Trim(string(runes[:maxLen]), " ")
		diags = append(diags, Diagnostic{
			Field: field, RuleId: rule.RuleId, Severity: WARN,
			Message:      fmt.Sprintf("value clipped to %d characters", maxLen),
			CleanedValue: cleaned,
		})
	}
	return cleaned, diags
}

func fieldError(rule Rule, field, message string) []Diagnostic {
	return []Diagnostic{{
		Field: field, RuleId: rule.RuleId, Severity: ERROR, Message: message, Refs: rule.Refs,
	}}
}

func isCountryCode(value string) bool {
	if len(value) != 2 {
		return false
	}
	return value[0] >= 'A' && value[0] <= 'Z' && value[1] >= 'A' && value[1] <= 'Z'
}

func stripSpaces(value string) string {
	return strings.Join(strings.Fields(value), "")
}
