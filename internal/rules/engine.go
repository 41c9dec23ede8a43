package rules

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"time"

	"example.com/billgate/internal/bill"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Rule binds a named check function to a field of the bill.
type Rule struct {
	RuleId    string   `json:"ruleId"`
	Name      string   `json:"name,omitempty"`
	Field     string   `json:"field"`
	Severity  Severity `json:"severity"`
	CheckFunc string   `json:"checkFunction"`
	Refs      []string `json:"refs,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// RulePack is an ordered collection of rules for one payment profile.
type RulePack struct {
	RulePackId string `json:"rulePackId"`
	Version    string `json:"version"`
	Profile    string `json:"profile"`
	Rules      []Rule `json:"rules"`
}

// Diagnostic is a single validation finding.
type Diagnostic struct {
	Ts           time.Time `json:"ts"`
	Source       string    `json:"source,omitempty"`
	Field        string    `json:"field"`
	RuleId       string    `json:"ruleId"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	Refs         []string  `json:"refs,omitempty"`
	CleanedValue string    `json:"cleanedValue,omitempty"`
	Substituted  bool      `json:"substituted,omitempty"`
}

// ValidationReport summarizes an engine run over a single bill.
type ValidationReport struct {
	Summary struct {
		Total    int  `json:"total"`
		Errors   int  `json:"errors"`
		Warnings int  `json:"warnings"`
		Pass     bool `json:"pass"`
	} `json:"summary"`
	Findings    []Diagnostic `json:"findings,omitempty"`
	CleanedBill *bill.Bill   `json:"cleanedBill,omitempty"`
}

// Context carries the bill under validation. Checks write sanitized values
// into Cleaned, which starts out as a copy of the input bill.
type Context struct {
	Bill    *bill.Bill
	Cleaned bill.Bill
	Source  string
}

// NewContext prepares a validation context for the given bill.
func NewContext(b *bill.Bill, source string) (*Context, error) {
	if b == nil {
		return nil, errors.New("nil bill")
	}
	return &Context{Bill: b, Cleaned: b.Clone(), Source: source}, nil
}

// CheckFunc inspects one aspect of the bill and returns its findings.
type CheckFunc func(ctx *Context, rule Rule) []Diagnostic

type Engine struct {
	rulePack    RulePack
	registry    map[string]CheckFunc
	diagnostics []Diagnostic
}

func NewEngine(rp RulePack) *Engine {
	return &Engine{
		rulePack: rp,
		registry: make(map[string]CheckFunc),
	}
}

func (e *Engine) Register(name string, f CheckFunc) {
	e.registry[name] = f
}

// Eval runs every rule of the pack against the context and collects the
// resulting diagnostics.
func (e *Engine) Eval(ctx *Context) ([]Diagnostic, error) {
	if ctx == nil || ctx.Bill == nil {
		return nil, errors.New("nil context")
	}
	var diags []Diagnostic
	for _, r := range e.rulePack.Rules {
		if r.CheckFunc == "" {
			continue
		}
		fn, ok := e.registry[r.CheckFunc]
		if !ok {
			diags = append(diags, Diagnostic{
				Ts: time.Now(), Source: ctx.Source, Field: r.Field, RuleId: r.RuleId,
				Severity: WARN, Message: "no function for rule", Refs: r.Refs,
			})
			continue
		}
		for _, d := range fn(ctx, r) {
			if d.Ts.IsZero() {
				d.Ts = time.Now()
			}
			d.Source = ctx.Source
			if d.RuleId == "" {
				d.RuleId = r.RuleId
			}
			if d.Refs == nil {
				d.Refs = r.Refs
			}
			diags = append(diags, d)
		}
	}
	e.diagnostics = diags
	return diags, nil
}

// WriteDiagnosticsNDJSON writes each finding of the last run as one JSON
// document per line.
func (e *Engine) WriteDiagnosticsNDJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()
	for _, d := range e.diagnostics {
		b, _ := json.Marshal(d)
		w.Write(b)
		w.WriteString("\n")
	}
	return nil
}

// MakeValidation builds the validation report for the last run. The cleaned
// bill is only attached when no error-level finding was recorded.
func (e *Engine) MakeValidation(ctx *Context) ValidationReport {
	var rep ValidationReport
	var errs, warns int
	for _, d := range e.diagnostics {
		switch d.Severity {
		case ERROR:
			errs++
		case WARN:
			warns++
		}
	}
	rep.Summary.Total = len(e.diagnostics)
	rep.Summary.Errors = errs
	rep.Summary.Warnings = warns
	rep.Summary.Pass = errs == 0
	rep.Findings = e.diagnostics
	if ctx != nil && errs == 0 {
		cleaned := ctx.Cleaned
		rep.CleanedBill = &cleaned
	}
	return rep
}

// LoadRulePack reads a rule pack from a JSON file.
func LoadRulePack(path string) (RulePack, error) {
	var rp RulePack
	b, err := os.ReadFile(path)
	if err != nil {
		return rp, err
	}
	err = json.Unmarshal(b, &rp)
	return rp, err
}
