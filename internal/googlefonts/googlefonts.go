package googlefonts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	apiBase   = "https://api.github.com/repos/google/fonts/contents/ofl"
	rawPrefix = "https://raw.githubusercontent.com/google/fonts/"
)

// generic CSS families never exist on Google Fonts.
var generic = map[string]bool{
	"serif": true, "sans-serif": true, "monospace": true, "cursive": true,
	"fantasy": true, "system-ui": true,
}

type githubFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client installs font families from the google/fonts repository. Downloads are only
// accepted from RawPrefix; the family listing never supplies arbitrary hosts.
type Client struct {
	HTTP      *http.Client
	APIBase   string
	RawPrefix string
}

// New returns a client for the public google/fonts repository.
func New() *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		APIBase:   apiBase,
		RawPrefix: rawPrefix,
	}
}

// NormalizeFamily converts a display name to the folder names used in google/fonts ofl.
// e.g. "Inter" -> "inter", "Open Sans" -> "opensans", "open-sans".
func NormalizeFamily(name string) []string {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" || generic[strings.ToLower(name)] {
		return nil
	}
	lower := strings.ToLower(name)
	noSpaces := strings.ReplaceAll(lower, " ", "")
	withHyphens := strings.ReplaceAll(lower, " ", "-")
	out := []string{noSpaces}
	if withHyphens != noSpaces {
		out = append(out, withHyphens)
	}
	return out
}

// DownloadURL returns the raw download URL for a font file in folder, preferring a file
// whose name does not contain "Italic".
func (c *Client) DownloadURL(ctx context.Context, folder string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/"+url.PathEscape(folder), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("font %q not found on Google Fonts", folder)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google fonts: HTTP %d", resp.StatusCode)
	}
	var files []githubFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	var fallback string
	for _, f := range files {
		if f.Type != "file" || f.DownloadURL == "" || !strings.HasPrefix(f.DownloadURL, c.RawPrefix) {
			continue
		}
		lower := strings.ToLower(f.Name)
		if !strings.HasSuffix(lower, ".ttf") && !strings.HasSuffix(lower, ".otf") {
			continue
		}
		if !strings.Contains(lower, "italic") {
			return f.DownloadURL, nil
		}
		if fallback == "" {
			fallback = f.DownloadURL
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no .ttf/.otf file found for %q on Google Fonts", folder)
}

// Install downloads the first font file found for family into destDir/<folder>/ and returns its path.
func (c *Client) Install(ctx context.Context, family, destDir string) (string, error) {
	folders := NormalizeFamily(family)
	if len(folders) == 0 {
		return "", fmt.Errorf("google fonts: %q is not an installable family", family)
	}
	var lastErr error
	for _, folder := range folders {
		u, err := c.DownloadURL(ctx, folder)
		if err != nil {
			lastErr = err
			continue
		}
		return c.save(ctx, u, filepath.Join(destDir, folder))
	}
	return "", lastErr
}

func (c *Client) save(ctx context.Context, rawURL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google fonts: HTTP %d", resp.StatusCode)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || strings.ContainsAny(name, `\`) {
		return "", errors.New("google fonts: bad file name in download URL")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("google fonts: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	return dest, nil
}
