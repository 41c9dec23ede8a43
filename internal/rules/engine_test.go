package rules

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"example.com/billgate/internal/bill"
)

func TestEvalNilContext(t *testing.T) {
	engine := NewEngine(DefaultRulePack())
	engine.RegisterBuiltins()
	if _, err := engine.Eval(nil); err == nil {
		t.Fatalf("expected error for nil context")
	}
}

func TestEvalUnknownCheckFunc(t *testing.T) {
	rp := RulePack{Rules: []Rule{{RuleId: "PB-9999", Field: "account", CheckFunc: "DoesNotExist"}}}
	engine := NewEngine(rp)
	ctx, err := NewContext(&bill.Bill{}, "test")
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	diags, err := engine.Eval(ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(diags) != 1 || diags[0].Severity != WARN {
		t.Fatalf("expected single WARN diagnostic, got %+v", diags)
	}
}

func TestEvalFillsDiagnosticMetadata(t *testing.T) {
	rp := RulePack{Rules: []Rule{{RuleId: "PB-0042", Field: "account", CheckFunc: "Custom", Refs: []string{"ref-a"}}}}
	engine := NewEngine(rp)
	engine.Register("Custom", func(ctx *Context, rule Rule) []Diagnostic {
		return []Diagnostic{{Field: "account", Severity: ERROR, Message: "boom"}}
	})
	ctx, err := NewContext(&bill.Bill{}, "bill.yaml")
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	diags, err := engine.Eval(ctx)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", diags)
	}
	d := diags[0]
	if d.RuleId != "PB-0042" || d.Source != "bill.yaml" || d.Ts.IsZero() || len(d.Refs) != 1 {
		t.Fatalf("metadata not filled: %+v", d)
	}
}

func TestWriteDiagnosticsNDJSON(t *testing.T) {
	engine, _, diags := evalBill(t, func() *bill.Bill {
		b := sampleBill(t)
		b.Account = ""
		return b
	}())
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics")
	}
	path := filepath.Join(t.TempDir(), "diagnostics.jsonl")
	if err := engine.WriteDiagnosticsNDJSON(path); err != nil {
		t.Fatalf("WriteDiagnosticsNDJSON: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var d Diagnostic
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		lines++
	}
	if lines != len(diags) {
		t.Fatalf("wrote %d lines, want %d", lines, len(diags))
	}
}

func TestLoadRulePack(t *testing.T) {
	rp := DefaultRulePack()
	data, err := json.MarshalIndent(rp, "", "  ")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := LoadRulePack(path)
	if err != nil {
		t.Fatalf("LoadRulePack: %v", err)
	}
	if loaded.RulePackId != rp.RulePackId || len(loaded.Rules) != len(rp.Rules) {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestMakeValidationWithErrorsOmitsCleanedBill(t *testing.T) {
	b := sampleBill(t)
	b.Account = "invalid"
	engine, ctx, _ := evalBill(t, b)
	rep := engine.MakeValidation(ctx)
	if rep.Summary.Pass {
		t.Fatalf("expected failure")
	}
	if rep.CleanedBill != nil {
		t.Fatalf("cleaned bill must be omitted on failure")
	}
}
