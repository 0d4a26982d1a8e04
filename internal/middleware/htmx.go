package middleware

import (
	"net/http"
)

const (
	headerHXRequest    = "HX-Request"
	headerHXTarget     = "HX-Target"
	headerHXReplaceURL = "HX-Replace-Url"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get(headerHXRequest) == "true"
		ctx := WithHTMX(r.Context(), is)
		if is {
			ctx = WithHXTarget(ctx, r.Header.Get(headerHXTarget))
			w.Header().Add("Vary", headerHXRequest)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ReplaceURL tells htmx to replace the browser location with u without
// adding a history entry. It must be called before the header is written.
func ReplaceURL(w http.ResponseWriter, u string) {
	if u == "" {
		return
	}
	w.Header().Set(headerHXReplaceURL, u)
}
