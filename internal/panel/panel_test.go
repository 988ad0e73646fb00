package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandlerEmbedded(t *testing.T) {
	h := Handler("")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
		wantType   string
	}{
		{"root", "/", http.StatusOK, "SAVE VSR 300 emulator", "text/html"},
		{"script", "/app.js", http.StatusOK, "/api/v1/registers", "javascript"},
		{"stylesheet", "/style.css", http.StatusOK, "", "text/css"},
		{"manifest", "/manifest.json", http.StatusOK, `"name"`, "json"},
		{"client route", "/registers", http.StatusOK, "<!DOCTYPE html>", "text/html"},
		{"nested client route", "/registers/2000/history", http.StatusOK, "<!DOCTYPE html>", "text/html"},
		{"missing script", "/missing.js", http.StatusNotFound, "", ""},
		{"missing nested image", "/deep/route/logo.png", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)

			if w.Code != tt.wantStatus {
				t.Fatalf("GET %s: status = %d, want %d", tt.target, w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("GET %s: body does not contain %q", tt.target, tt.wantBody)
			}
			if tt.wantType != "" && !strings.Contains(w.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("GET %s: Content-Type = %q, want %q", tt.target, w.Header().Get("Content-Type"), tt.wantType)
			}
			if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-cache") {
				t.Errorf("GET %s: Cache-Control = %q, want no-cache", tt.target, got)
			}
		})
	}
}

func TestHandlerFromDisk(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html": `<!DOCTYPE html><html><body>ui from disk</body></html>`,
		"app.js":     "console.log('disk')",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	h := Handler(dir)

	if w := get(t, h, "/"); !strings.Contains(w.Body.String(), "ui from disk") {
		t.Errorf("GET /: body = %q, want disk index", w.Body.String())
	}
	if w := get(t, h, "/app.js"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "disk") {
		t.Errorf("GET /app.js: %d %q", w.Code, w.Body.String())
	}
	// style.css exists only in the embedded copy.
	if w := get(t, h, "/style.css"); w.Code != http.StatusNotFound {
		t.Errorf("GET /style.css from disk: status = %d, want 404", w.Code)
	}
	if w := get(t, h, "/some/route"); !strings.Contains(w.Body.String(), "ui from disk") {
		t.Error("client route did not fall back to the disk index")
	}
}

func TestHandlerMissingDirUsesEmbedded(t *testing.T) {
	h := Handler(filepath.Join(t.TempDir(), "absent"))

	w := get(t, h, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "SAVE VSR 300 emulator") {
		t.Errorf("GET /: %d, want embedded index", w.Code)
	}
}
