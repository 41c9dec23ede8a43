package server

import "net/http"

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/clean", s.handleClean)
	mux.HandleFunc("/validate", s.handleValidate)
	mux.HandleFunc("/qr", s.handleQR)
	mux.HandleFunc("/reference", s.handleReference)
	mux.HandleFunc("/check", s.handleCheck)
	return mux
}
