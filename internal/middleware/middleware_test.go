package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if seen == "" || rec.Header().Get("X-Request-Id") != seen {
		t.Errorf("generated id %q, header %q", seen, rec.Header().Get("X-Request-Id"))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc" {
		t.Errorf("incoming id not reused: %q", seen)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Logger(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	mw := CORS([]string{"localhost:5173", "https://draw.example.com"})

	tests := []struct {
		name    string
		method  string
		origin  string
		allowed bool
		status  int
	}{
		{"bare host", "GET", "http://localhost:5173", true, http.StatusOK},
		{"full origin", "GET", "https://draw.example.com", true, http.StatusOK},
		{"unknown", "GET", "http://evil.example.com", false, http.StatusOK},
		{"no origin", "GET", "", false, http.StatusOK},
		{"preflight", "OPTIONS", "http://localhost:5173", true, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			mw(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && got != tt.origin {
				t.Errorf("allow origin = %q, want %q", got, tt.origin)
			}
			if !tt.allowed && got != "" {
				t.Errorf("unexpected allow origin %q", got)
			}
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://anywhere.test")
	rec := httptest.NewRecorder()
	CORS([]string{"*"})(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://anywhere.test" {
		t.Error("wildcard did not allow origin")
	}
}
