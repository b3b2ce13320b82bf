package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchSavesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "model/gltf-binary")
		_, _ = w.Write([]byte("glTF-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := New(dir)
	got, err := c.Fetch(context.Background(), srv.URL+"/models/shoe.glb?v=2")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if want := filepath.Join(dir, "shoe.glb"); got != want {
		t.Errorf("saved path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "glTF-bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestFetchNameFromContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "model/gltf-binary")
		w.Header().Set("Content-Disposition", `attachment; filename="running shoe.glb"`)
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	got, err := New(t.TempDir()).Fetch(context.Background(), srv.URL+"/download")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if filepath.Base(got) != "running_shoe.glb" {
		t.Errorf("name = %q", filepath.Base(got))
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	if _, err := New(dir).Fetch(context.Background(), srv.URL+"/missing.glb"); err == nil {
		t.Fatal("expected error for 404")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no file should be written on error, found %d", len(entries))
	}
}

func TestFetchCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(t.TempDir()).Fetch(ctx, srv.URL+"/shoe.glb"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"/shoe.glb":                     false,
		"models/shoe.glb":               false,
		"http://example.com/shoe.glb":   true,
		"https://example.com/shoe.gltf": true,
		"file:///tmp/shoe.glb":          false,
	}
	for in, want := range tests {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"shoe.glb":      "shoe.glb",
		"my shoe!.glb":  "my_shoe_.glb",
		"../../etc":     "_.._etc",
		"":              "model",
		"...":           "model",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
