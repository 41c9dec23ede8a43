package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"example.com/billgate/internal/bill"
	"example.com/billgate/internal/common"
	"example.com/billgate/internal/payments"
	"example.com/billgate/internal/report"
	"example.com/billgate/internal/rules"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "validate":
		validateCmd(os.Args[2:])
	case "clean":
		cleanCmd(os.Args[2:])
	case "iban":
		ibanCmd(os.Args[2:])
	case "reference":
		referenceCmd(os.Args[2:])
	case "qrpng":
		qrpngCmd(os.Args[2:])
	case "rulepack":
		rulepackCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`billctl %s (built %s) <command> [options]

Commands:
  validate  --in <bill.yaml> [--rules <rulepack.json>] [--out <diagnostics.jsonl>] [--report <report.json>] [--pdf <report.pdf>] [--lang <en|de|fr|it>] [--qr <qr.png>]
  clean     --text <value>
  iban      --value <iban>
  reference <check|create|format> --type <qrr|scor> --value <reference>
  qrpng     --in <bill.yaml> --out <qr.png> [--size <px>]
  rulepack  <show|export> [--out <rulepack.json>]
`, version, buildDate)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	in := fs.String("in", "", "input bill YAML")
	rulesPath := fs.String("rules", "", "rulepack.json")
	outDiag := fs.String("out", "diagnostics.jsonl", "diagnostics output")
	outReport := fs.String("report", "validation_report.json", "validation report json")
	outPDF := fs.String("pdf", "", "validation report PDF")
	langFlag := fs.String("lang", "en", "report language")
	outQR := fs.String("qr", "", "write QR code PNG for the cleaned bill when validation passes")
	qrSize := fs.Int("qr-size", 256, "QR code size in pixels")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	lang, err := report.ParseLanguage(*langFlag)
	if err != nil {
		fmt.Println("lang:", err)
		os.Exit(1)
	}

	rp := rules.DefaultRulePack()
	if *rulesPath != "" {
		rp, err = rules.LoadRulePack(*rulesPath)
		if err != nil {
			fmt.Println("load rulepack:", err)
			os.Exit(1)
		}
	}
	engine := rules.NewEngine(rp)
	engine.RegisterBuiltins()

	b, err := bill.Load(*in)
	if err != nil {
		fmt.Println("load bill:", err)
		os.Exit(1)
	}
	ctx, err := rules.NewContext(&b, filepath.Base(*in))
	if err != nil {
		fmt.Println("context:", err)
		os.Exit(1)
	}
	diags, err := engine.Eval(ctx)
	if err != nil {
		fmt.Println("eval:", err)
		os.Exit(1)
	}

	if err := engine.WriteDiagnosticsNDJSON(*outDiag); err != nil {
		fmt.Println("write diags:", err)
		os.Exit(1)
	}
	rep := engine.MakeValidation(ctx)
	if err := report.SaveValidationJSON(rep, *outReport); err != nil {
		fmt.Println("write report:", err)
		os.Exit(1)
	}
	if *outPDF != "" {
		if err := report.SaveValidationPDF(rep, lang, *outPDF); err != nil {
			fmt.Println("write pdf:", err)
			os.Exit(1)
		}
	}
	if *outQR != "" {
		if rep.CleanedBill == nil {
			common.Logf("skipping QR output: validation failed")
		} else if err := report.SavePayloadPNG(rep.CleanedBill, *qrSize, *outQR); err != nil {
			fmt.Println("write qr:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("PASS=%v, errors=%d, warnings=%d, diagnostics=%d\n", rep.Summary.Pass, rep.Summary.Errors, rep.Summary.Warnings, len(diags))
	if !rep.Summary.Pass {
		os.Exit(1)
	}
}

func cleanCmd(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	text := fs.String("text", "", "text to clean")
	fs.Parse(args)

	value := *text
	if value == "" && fs.NArg() > 0 {
		value = strings.Join(fs.Args(), " ")
	}
	cleaned, modified := payments.CleanText(value)
	fmt.Printf("cleaned=%q modified=%v\n", cleaned, modified)
}

func ibanCmd(args []string) {
	fs := flag.NewFlagSet("iban", flag.ExitOnError)
	value := fs.String("value", "", "IBAN to check")
	fs.Parse(args)

	iban := *value
	if iban == "" && fs.NArg() > 0 {
		iban = fs.Arg(0)
	}
	if iban == "" {
		fmt.Println("required: --value")
		os.Exit(1)
	}
	if !payments.IsValidIBAN(iban) {
		fmt.Println("INVALID")
		os.Exit(1)
	}
	fmt.Printf("VALID %s qr-iban=%v\n", payments.FormatIBAN(iban), payments.IsQRIBAN(iban))
}

func referenceCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	action := args[0]
	fs := flag.NewFlagSet("reference", flag.ExitOnError)
	refType := fs.String("type", "qrr", "reference type (qrr or scor)")
	value := fs.String("value", "", "reference or raw payload")
	fs.Parse(args[1:])

	if *value == "" {
		fmt.Println("required: --value")
		os.Exit(1)
	}
	switch action {
	case "check":
		var valid bool
		switch strings.ToLower(*refType) {
		case "qrr":
			valid = payments.IsValidQRReference(*value)
		case "scor":
			valid = payments.IsValidISO11649Reference(*value)
		default:
			fmt.Println("unknown type:", *refType)
			os.Exit(1)
		}
		if !valid {
			fmt.Println("INVALID")
			os.Exit(1)
		}
		fmt.Println("VALID")
	case "create":
		var (
			ref string
			err error
		)
		switch strings.ToLower(*refType) {
		case "qrr":
			ref, err = payments.CreateQRReference(*value)
		case "scor":
			ref, err = payments.CreateISO11649Reference(*value)
		default:
			fmt.Println("unknown type:", *refType)
			os.Exit(1)
		}
		if err != nil {
			if errors.Is(err, payments.ErrInvalidCharacter) {
				fmt.Println("payload contains invalid characters")
			} else {
				fmt.Println("create:", err)
			}
			os.Exit(1)
		}
		fmt.Println(ref)
	case "format":
		switch strings.ToLower(*refType) {
		case "qrr":
			fmt.Println(payments.FormatQRReference(*value))
		case "scor":
			fmt.Println(payments.FormatIBAN(*value))
		default:
			fmt.Println("unknown type:", *refType)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func qrpngCmd(args []string) {
	fs := flag.NewFlagSet("qrpng", flag.ExitOnError)
	in := fs.String("in", "", "input bill YAML")
	out := fs.String("out", "qr.png", "output PNG")
	size := fs.Int("size", 256, "image size in pixels")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	b, err := bill.Load(*in)
	if err != nil {
		fmt.Println("load bill:", err)
		os.Exit(1)
	}
	if err := report.SavePayloadPNG(&b, *size, *out); err != nil {
		fmt.Println("write qr:", err)
		os.Exit(1)
	}
	common.Logf("wrote %s", *out)
}

func rulepackCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	action := args[0]
	fs := flag.NewFlagSet("rulepack", flag.ExitOnError)
	out := fs.String("out", "rulepack.json", "output file for export")
	fs.Parse(args[1:])

	rp := rules.DefaultRulePack()
	switch action {
	case "show":
		for _, r := range rp.Rules {
			fmt.Printf("%s  %-10s %-12s %s\n", r.RuleId, r.Severity, r.Field, r.Name)
		}
	case "export":
		data, err := json.MarshalIndent(rp, "", "  ")
		if err != nil {
			common.Fatalf("marshal rulepack: %v", err)
		}
		if err := os.WriteFile(*out, append(data, '\n'), 0o644); err != nil {
			common.Fatalf("write rulepack: %v", err)
		}
		fmt.Printf("wrote %s (%d rules)\n", *out, len(rp.Rules))
	default:
		usage()
		os.Exit(1)
	}
}
