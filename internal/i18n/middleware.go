package i18n

import "net/http"

// Middleware injects a localizer for the configured language into every
// request context, honoring an Accept-Language override when present.
func Middleware(defaultLang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := defaultLang
			if al := r.Header.Get("Accept-Language"); al != "" {
				lang = al
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
