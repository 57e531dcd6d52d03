package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(CSRFToken(r.Context())))
})

func TestCSRF_IssuesCookieOnGet(t *testing.T) {
	rec := httptest.NewRecorder()
	CSRF(false)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CSRFCookieName {
		t.Fatalf("expected csrf cookie, got %v", cookies)
	}
	if rec.Body.String() != cookies[0].Value {
		t.Errorf("context token %q does not match cookie %q", rec.Body.String(), cookies[0].Value)
	}
}

func TestCSRF_UnsafeMethods(t *testing.T) {
	const token = "abc123"

	tests := []struct {
		name   string
		header string
		form   string
		want   int
	}{
		{"header token", token, "", http.StatusOK},
		{"form token", "", token, http.StatusOK},
		{"missing token", "", "", http.StatusForbidden},
		{"wrong token", "nope", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := url.Values{}
			if tt.form != "" {
				body.Set(CSRFFormField, tt.form)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/exams/1/pin", strings.NewReader(body.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}

			rec := httptest.NewRecorder()
			CSRF(false)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestLogger_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var seen string
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/timeline", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "my-custom-id" {
		t.Errorf("expected my-custom-id in context, got %q", seen)
	}
	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %q", rec.Header().Get(RequestIDHeader))
	}
	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/timeline"`) {
		t.Errorf("unexpected log line: %s", out)
	}
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	Logger(zerolog.Nop())(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Logger(zerolog.Nop()), Recovery(zerolog.New(&buf)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic to be logged, got %s", buf.String())
	}
}
