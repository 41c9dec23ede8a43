package report

import (
	"encoding/json"
	"os"

	"example.com/billgate/internal/rules"
)

func SaveValidationJSON(rep rules.ValidationReport, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadValidationJSON(path string) (rules.ValidationReport, error) {
	var rep rules.ValidationReport
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
