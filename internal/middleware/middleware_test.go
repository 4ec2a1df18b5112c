package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/math-adventure/backend/internal/apperr"
	"github.com/math-adventure/backend/internal/models"
)

type fakeResolver struct {
	token string
	err   error
}

func (f fakeResolver) Resolve(_ context.Context, bearer string) (*models.Player, *models.Session, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if bearer != f.token {
		return nil, nil, apperr.New(apperr.Unauthorized, "Invalid or expired token")
	}
	return &models.Player{ID: 7, Username: "ada"}, &models.Session{ID: 1, PlayerID: 7, Token: "sid"}, nil
}

func echoPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := PlayerID(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if _, ok := Session(r.Context()); !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if id != 7 {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	resolver := fakeResolver{token: "good"}
	h := RequireAuth(resolver)(http.HandlerFunc(echoPlayer))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireAuthLookupFailure(t *testing.T) {
	h := RequireAuth(fakeResolver{err: apperr.Wrap(apperr.Persistence, context.DeadlineExceeded, "db")})(http.HandlerFunc(echoPlayer))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(fakeResolver{token: "good"})(http.HandlerFunc(echoPlayer))

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusNoContent},
		{"Bearer bad", http.StatusNoContent},
		{"Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("header %q: status = %d, want %d", tt.header, rec.Code, tt.want)
		}
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/submit", nil))

	got := rec.Header().Get(RequestIDHeader)
	if got == "" {
		t.Fatal("response has no request id")
	}
	if seen != got {
		t.Errorf("context id = %q, header id = %q", seen, got)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want incoming abc-123", got)
	}
}
