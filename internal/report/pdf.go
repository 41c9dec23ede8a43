package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/billgate/internal/bill"
	"example.com/billgate/internal/payments"
	"example.com/billgate/internal/rules"
)

// SaveValidationPDF renders the given validation report into a PDF document.
func SaveValidationPDF(rep rules.ValidationReport, lang Language, out string) error {
	pdf := buildValidationPDF(rep, lang)
	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

// WriteValidationPDF renders the validation report and streams the PDF to w.
func WriteValidationPDF(rep rules.ValidationReport, lang Language, w io.Writer) error {
	pdf := buildValidationPDF(rep, lang)
	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.Output(w)
}

func buildValidationPDF(rep rules.ValidationReport, lang Language) *gofpdf.Fpdf {
	tl := NewTranslator(lang)
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(tl.T("report.title"), false)
	pdf.SetAuthor("billctl", false)
	pdf.SetCreator("billctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	enc := pdf.UnicodeTranslatorFromDescriptor("")

	addPDFTitle(pdf, enc(tl.T("report.title")))
	addSummarySection(pdf, enc, tl, rep)
	if rep.CleanedBill != nil {
		addPaymentSection(pdf, enc, tl, rep.CleanedBill)
	}
	addFindingsSection(pdf, enc, tl, rep.Findings)
	return pdf
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, enc func(string) string, tl Translator, rep rules.ValidationReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, enc(tl.T("report.summary")))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: tl.T("report.total"), value: strconv.Itoa(rep.Summary.Total)},
		{label: tl.T("report.errors"), value: strconv.Itoa(rep.Summary.Errors)},
		{label: tl.T("report.warnings"), value: strconv.Itoa(rep.Summary.Warnings)},
		{label: tl.T("report.overall"), value: passLabel(tl, rep.Summary.Pass)},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, enc(item.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, enc(item.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addPaymentSection(pdf *gofpdf.Fpdf, enc func(string) string, tl Translator, b *bill.Bill) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, enc(tl.T("report.payment")))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: tl.T("report.account"), value: payments.FormatIBAN(b.Account)},
		{label: tl.T("report.reference"), value: formatReference(b.Reference)},
		{label: tl.T("report.amount"), value: amountLabel(tl, b)},
		{label: tl.T("report.creditor"), value: addressLine(b.Creditor)},
	}
	if b.Debtor != nil {
		items = append(items, struct {
			label string
			value string
		}{label: tl.T("report.debtor"), value: addressLine(*b.Debtor)})
	}
	if b.UnstructuredMessage != "" {
		items = append(items, struct {
			label string
			value string
		}{label: tl.T("report.message"), value: b.UnstructuredMessage})
	}
	for _, item := range items {
		if strings.TrimSpace(item.value) == "" {
			continue
		}
		pdf.CellFormat(50, 6, enc(item.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, enc(item.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, enc func(string) string, tl Translator, findings []rules.Diagnostic) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, enc(tl.T("report.findings")))
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, enc(tl.T("report.no_findings")), "", "L", false)
		return
	}

	headers := []string{"Rule", "Severity", "Field", "Message"}
	widths := []float64{24, 22, 40, 94}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, d := range findings {
		values := []string{
			d.RuleId,
			severityLabel(d.Severity),
			emptyFallback(d.Field, "-"),
			enc(findingText(d)),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func findingText(d rules.Diagnostic) string {
	text := strings.TrimSpace(d.Message)
	if d.Substituted && d.CleanedValue != "" {
		text += fmt.Sprintf(" -> %q", d.CleanedValue)
	}
	if !d.Ts.IsZero() {
		text += " (" + d.Ts.Format(time.RFC3339) + ")"
	}
	return text
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func passLabel(tl Translator, pass bool) string {
	if pass {
		return tl.T("report.pass")
	}
	return tl.T("report.fail")
}

func severityLabel(sev rules.Severity) string {
	if s := strings.TrimSpace(string(sev)); s != "" {
		return s
	}
	return "UNKNOWN"
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}

func formatReference(reference string) string {
	switch bill.ReferenceType(reference) {
	case bill.RefQR:
		return payments.FormatQRReference(reference)
	case bill.RefCreditor:
		return payments.FormatIBAN(reference)
	default:
		return ""
	}
}

func amountLabel(tl Translator, b *bill.Bill) string {
	if b.Amount == nil {
		return tl.T("report.amount_open")
	}
	return fmt.Sprintf("%s %.2f", b.Currency, *b.Amount)
}

func addressLine(a bill.Address) string {
	parts := make([]string, 0, 4)
	if a.Name != "" {
		parts = append(parts, a.Name)
	}
	street := strings.TrimSpace(a.Street + " " + a.HouseNo)
	if street != "" {
		parts = append(parts, street)
	}
	town := strings.TrimSpace(a.PostalCode + " " + a.Town)
	if town != "" {
		parts = append(parts, town)
	}
	if a.CountryCode != "" {
		parts = append(parts, a.CountryCode)
	}
	return strings.Join(parts, ", ")
}
