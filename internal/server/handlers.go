package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"example.com/billgate/internal/bill"
	"example.com/billgate/internal/payments"
	"example.com/billgate/internal/report"
	"example.com/billgate/internal/rules"
)

// Server exposes the validation engine over a small JSON API.
type Server struct {
	rulePack    rules.RulePack
	defaultLang report.Language
}

// NewServer constructs a Server from the given options.
func NewServer(opts Options) (*Server, error) {
	rp, err := loadRulePack(opts)
	if err != nil {
		return nil, err
	}
	lang, err := report.ParseLanguage(opts.DefaultLang)
	if err != nil {
		return nil, err
	}
	return &Server{rulePack: rp, defaultLang: lang}, nil
}

func (s *Server) newEngine() *rules.Engine {
	engine := rules.NewEngine(s.rulePack)
	engine.RegisterBuiltins()
	return engine
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "profile": s.rulePack.Profile})
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	cleaned, modified := payments.CleanText(req.Text)
	writeJSON(w, http.StatusOK, struct {
		CleanedValue string `json:"cleanedValue"`
		Modified     bool   `json:"modified"`
	}{CleanedValue: cleaned, Modified: modified})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var b bill.Bill
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	ctx, err := rules.NewContext(&b, r.RemoteAddr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	engine := s.newEngine()
	diags, err := engine.Eval(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("validate: %v", err), http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("diagnostics") == "ndjson" {
		w.Header().Set("Content-Type", "application/x-ndjson")
		writer := NewNDJSONWriter(w)
		for _, d := range diags {
			if err := writer.WriteDiagnostic(d); err != nil {
				return
			}
		}
		return
	}
	rep := engine.MakeValidation(ctx)
	if r.URL.Query().Get("format") == "pdf" {
		lang := s.defaultLang
		if v := r.URL.Query().Get("lang"); v != "" {
			parsed, err := report.ParseLanguage(v)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			lang = parsed
		}
		w.Header().Set("Content-Type", "application/pdf")
		if err := report.WriteValidationPDF(rep, lang, w); err != nil {
			http.Error(w, fmt.Sprintf("pdf: %v", err), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var b bill.Bill
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	ctx, err := rules.NewContext(&b, r.RemoteAddr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	engine := s.newEngine()
	if _, err := engine.Eval(ctx); err != nil {
		http.Error(w, fmt.Sprintf("validate: %v", err), http.StatusInternalServerError)
		return
	}
	rep := engine.MakeValidation(ctx)
	if !rep.Summary.Pass {
		writeJSON(w, http.StatusUnprocessableEntity, rep)
		return
	}
	size := 256
	if v := r.URL.Query().Get("size"); v != "" {
		fmt.Sscanf(v, "%d", &size)
	}
	png, err := report.PayloadToQR(rep.CleanedBill, size)
	if err != nil {
		http.Error(w, fmt.Sprintf("qr: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Type    string `json:"type"`
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	var (
		reference string
		formatted string
		err       error
	)
	switch strings.ToUpper(strings.TrimSpace(req.Type)) {
	case string(bill.RefCreditor):
		reference, err = payments.CreateISO11649Reference(req.Payload)
		formatted = payments.FormatIBAN(reference)
	case string(bill.RefQR):
		reference, err = payments.CreateQRReference(req.Payload)
		formatted = payments.FormatQRReference(reference)
	default:
		http.Error(w, "type must be SCOR or QRR", http.StatusBadRequest)
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, payments.ErrInvalidCharacter) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Reference string `json:"reference"`
		Formatted string `json:"formatted"`
	}{Reference: reference, Formatted: formatted})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	value := strings.ToUpper(strings.Join(strings.Fields(r.URL.Query().Get("value")), ""))
	var valid bool
	var formatted string
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "iban":
		valid = payments.IsValidIBAN(value)
		formatted = payments.FormatIBAN(value)
	case "scor":
		valid = payments.IsValidISO11649Reference(value)
		formatted = payments.FormatIBAN(value)
	case "qrr":
		valid = payments.IsValidQRReference(value)
		formatted = payments.FormatQRReference(value)
	default:
		http.Error(w, "type must be iban, scor or qrr", http.StatusBadRequest)
		return
	}
	resp := struct {
		Valid     bool   `json:"valid"`
		Formatted string `json:"formatted,omitempty"`
		QRIBAN    bool   `json:"qrIban,omitempty"`
	}{Valid: valid}
	if valid {
		resp.Formatted = formatted
		resp.QRIBAN = payments.IsQRIBAN(value)
	}
	writeJSON(w, http.StatusOK, resp)
}
