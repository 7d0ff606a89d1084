package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const clientKey contextKey = "client"

func setClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

func getClient(r *http.Request) (string, bool) {
	client, ok := r.Context().Value(clientKey).(string)
	return client, ok && client != ""
}

// Client identifies the caller for rate limiting by its socket address.
// With trustForwarded set, the first X-Forwarded-For hop wins instead; only
// enable that behind a proxy that overwrites the header.
func Client(trustForwarded bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(setClient(r.Context(), clientAddr(r, trustForwarded))))
		})
	}
}

func clientAddr(r *http.Request, trustForwarded bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwarded && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
