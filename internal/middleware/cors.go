package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns the cross-origin handler wrapping the router.
// An empty list or "*" allows every origin without credentials.
func CORS(allowedOrigins []string) *cors.Cors {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			opts.AllowedOrigins = []string{"*"}
			opts.AllowCredentials = false
			break
		}
	}
	if len(allowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return cors.New(opts)
}
