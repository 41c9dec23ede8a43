package server

import (
	"fmt"
	"strings"

	"example.com/billgate/internal/rules"
)

// Options configures server creation.
type Options struct {
	// RulePackPath points to a custom rule pack JSON file. When empty the
	// built-in default pack is used.
	RulePackPath string
	// DefaultLang selects the report language when a request does not ask
	// for one.
	DefaultLang string
}

// loadRulePack resolves the rule pack the server validates against.
func loadRulePack(opts Options) (rules.RulePack, error) {
	if strings.TrimSpace(opts.RulePackPath) == "" {
		return rules.DefaultRulePack(), nil
	}
	rp, err := rules.LoadRulePack(opts.RulePackPath)
	if err != nil {
		return rules.RulePack{}, fmt.Errorf("load rule pack: %w", err)
	}
	if len(rp.Rules) == 0 {
		return rules.RulePack{}, fmt.Errorf("rule pack %s contains no rules", opts.RulePackPath)
	}
	return rp, nil
}
