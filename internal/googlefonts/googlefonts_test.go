package googlefonts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func fakeRepo(t *testing.T) *Client {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/opensans":
			_ = json.NewEncoder(w).Encode([]githubFile{
				{Name: "OFL.txt", Type: "file", DownloadURL: srv.URL + "/raw/opensans/OFL.txt"},
				{Name: "OpenSans-Italic.ttf", Type: "file", DownloadURL: srv.URL + "/raw/opensans/OpenSans-Italic.ttf"},
				{Name: "Evil.ttf", Type: "file", DownloadURL: "https://elsewhere.example/Evil.ttf"},
				{Name: "OpenSans.ttf", Type: "file", DownloadURL: srv.URL + "/raw/opensans/OpenSans.ttf"},
			})
		case "/api/lobster":
			_ = json.NewEncoder(w).Encode([]githubFile{
				{Name: "Lobster-Italic.otf", Type: "file", DownloadURL: srv.URL + "/raw/lobster/Lobster-Italic.otf"},
			})
		case "/raw/opensans/OpenSans.ttf":
			_, _ = w.Write([]byte("ttf bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return &Client{HTTP: srv.Client(), APIBase: srv.URL + "/api", RawPrefix: srv.URL + "/raw/"}
}

func TestNormalizeFamily(t *testing.T) {
	if got := NormalizeFamily(`"Open Sans"`); !reflect.DeepEqual(got, []string{"opensans", "open-sans"}) {
		t.Errorf("NormalizeFamily = %v", got)
	}
	if got := NormalizeFamily("sans-serif"); got != nil {
		t.Errorf("generic family should not normalize, got %v", got)
	}
}

func TestDownloadURLPrefersUprightFromAllowedHost(t *testing.T) {
	c := fakeRepo(t)
	u, err := c.DownloadURL(context.Background(), "opensans")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(u) != "OpenSans.ttf" {
		t.Errorf("url = %q", u)
	}

	u, err = c.DownloadURL(context.Background(), "lobster")
	if err != nil || filepath.Base(u) != "Lobster-Italic.otf" {
		t.Errorf("italic fallback = %q, %v", u, err)
	}

	if _, err := c.DownloadURL(context.Background(), "nope"); err == nil {
		t.Error("expected an error for a missing family")
	}
}

func TestInstall(t *testing.T) {
	c := fakeRepo(t)
	dir := t.TempDir()
	p, err := c.Install(context.Background(), "Open Sans", dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "opensans", "OpenSans.ttf"); p != want {
		t.Errorf("path = %q, want %q", p, want)
	}
	if data, err := os.ReadFile(p); err != nil || string(data) != "ttf bytes" {
		t.Errorf("contents = %q, %v", data, err)
	}

	if _, err := c.Install(context.Background(), "monospace", dir); err == nil {
		t.Error("generic family should not install")
	}
}
