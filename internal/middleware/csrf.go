package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

type contextKey string

const (
	CSRFTokenKey contextKey = "csrf_token"
	RequestIDKey contextKey = "request_id"

	CSRFCookieName = "csrf_token"
	CSRFFormField  = "csrf_token"
	CSRFHeader     = "X-CSRF-Token"
)

func GenerateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// CSRFToken returns the token CSRF stored in the request context.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CSRF implements the double submit cookie check. Unsafe requests must echo
// the cookie value in the X-CSRF-Token header or the csrf_token form field.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				token = GenerateToken()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			if !safeMethod(r.Method) {
				reqToken := r.Header.Get(CSRFHeader)
				if reqToken == "" {
					reqToken = r.FormValue(CSRFFormField)
				}
				if subtle.ConstantTimeCompare([]byte(reqToken), []byte(token)) != 1 {
					http.Error(w, "Invalid CSRF Token", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), CSRFTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
