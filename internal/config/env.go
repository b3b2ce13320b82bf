package config

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/jinzhu/copier"
)

// LoadEnvFile reads path (e.g. ".env") and sets an environment variable for each KEY=VALUE line.
// Empty lines and # comments are skipped, surrounding quotes are stripped. A missing file is not an error.
func LoadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
		_ = os.Setenv(key, value)
	}
	return scanner.Err()
}

// ApplyEnv overlays VIEWER_* environment variables onto p. Unset or empty variables leave p unchanged.
//
//	VIEWER_ASSET_URL, VIEWER_ASSET_ROOT, VIEWER_DOWNLOAD_DIR,
//	VIEWER_LOG_LEVEL, VIEWER_LOG_DIR, VIEWER_REMOTE_ADDR
func ApplyEnv(p Prefs) (Prefs, error) {
	opt := copier.Option{IgnoreEmpty: true}

	asset := AssetPrefs{
		URL:         os.Getenv("VIEWER_ASSET_URL"),
		Root:        os.Getenv("VIEWER_ASSET_ROOT"),
		DownloadDir: os.Getenv("VIEWER_DOWNLOAD_DIR"),
	}
	if err := copier.CopyWithOption(&p.Asset, &asset, opt); err != nil {
		return p, err
	}
	log := LogPrefs{
		Level: os.Getenv("VIEWER_LOG_LEVEL"),
		Dir:   os.Getenv("VIEWER_LOG_DIR"),
	}
	if err := copier.CopyWithOption(&p.Log, &log, opt); err != nil {
		return p, err
	}
	if addr := os.Getenv("VIEWER_REMOTE_ADDR"); addr != "" {
		remote := RemotePrefs{Enabled: true, Addr: addr}
		if err := copier.CopyWithOption(&p.Remote, &remote, opt); err != nil {
			return p, err
		}
	}
	return p, nil
}
