package middleware

import (
	"context"
	"net/http"

	"github.com/hojanyaz/hr-psychobot/internal/utils"
)

type localeCtxKey int

const localeKey localeCtxKey = 1

// Locale extracts the locale from the lang query param or Accept-Language
// and stores it in the request context. The bot speaks Russian and Uzbek.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), []string{"ru", "uz"}, "ru")
		ctx := context.WithValue(r.Context(), localeKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext retrieves the locale stored by Locale.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok {
		return s
	}
	return "ru"
}
