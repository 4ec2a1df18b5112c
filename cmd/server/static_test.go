package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSPAHandler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	h := spaHandler{dir: dir}

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/app.js", http.StatusOK, "console.log(1)"},
		{"/index.html", http.StatusOK, "<html>app</html>"},
		{"/leaderboard", http.StatusOK, "<html>app</html>"},
		{"/../../etc/passwd", http.StatusOK, "<html>app</html>"},
		{"/../app.js", http.StatusOK, "console.log(1)"},
		{"/api/unknown", http.StatusNotFound, "404 page not found"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = tt.path
		h.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("GET %s: status = %d, want %d", tt.path, rec.Code, tt.status)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != tt.body {
			t.Errorf("GET %s: body = %q, want %q", tt.path, got, tt.body)
		}
	}
}

func TestSPAHandlerWithoutIndex(t *testing.T) {
	h := spaHandler{dir: t.TempDir()}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /leaderboard with no index.html: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
