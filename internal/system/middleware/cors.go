package middleware

import (
	"net/http"
	"strings"
)

type CORSOptions struct {
	AllowOrigin      string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

// WithCORS wraps a route registration with CORS headers. It returns the
// pattern and handler pair so call sites can pass the result straight to
// mux.HandleFunc.
func WithCORS(pattern string, handler http.HandlerFunc, opts CORSOptions) (string, http.HandlerFunc) {
	return pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", opts.AllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(opts.AllowMethods, ", "))
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(opts.AllowHeaders, ", "))
		if opts.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		handler(w, r)
	}
}
