package fonts

import (
	"os"
	"path/filepath"
	"strings"
)

// Extensions we consider as font files.
var Exts = []string{".ttf", ".otf"}

// BaseDirs returns the default directories searched for fonts, relative to the process cwd.
func BaseDirs() []string {
	return []string{"assets/fonts", "../../assets/fonts"}
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.ttf").
// Paths use forward slashes. A missing dir yields no paths.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !isFont(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func isFont(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// normalizeForMatch lowercases and removes spaces, dashes, and underscores for fuzzy matching.
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "", "\"", "", "'", "").Replace(s)
}

// Candidates returns the search terms tried for a CSS font-family value, in order.
// "Inter, sans-serif" -> ["Inter", "sans-serif"]; "Inter-Regular.ttf" adds "Inter-Regular" and "Inter".
func Candidates(family string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.Trim(strings.TrimSpace(s), `"'`)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, name := range strings.Split(family, ",") {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		add(name)
		for _, ext := range Exts {
			if strings.HasSuffix(strings.ToLower(name), ext) {
				name = name[:len(name)-len(ext)]
				add(name)
				break
			}
		}
		if i := strings.Index(name, "-"); i > 0 {
			add(name[:i])
		}
	}
	return out
}

// Find resolves a font-family value to a font file under dirs. An absolute or cwd-relative
// path to an existing file is returned as is. Otherwise each candidate is matched against the
// scanned files, preferring a path containing "Regular". Returns os.ErrNotExist when nothing matches.
func Find(family string, dirs []string) (string, error) {
	if p := strings.Trim(strings.TrimSpace(family), `"'`); isFont(p) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	type entry struct{ rel, full string }
	var files []entry
	for _, base := range dirs {
		list, err := ScanDir(base)
		if err != nil {
			continue
		}
		for _, rel := range list {
			files = append(files, entry{rel, filepath.Join(base, filepath.FromSlash(rel))})
		}
	}
	for _, c := range Candidates(family) {
		norm := normalizeForMatch(c)
		var match []entry
		for _, f := range files {
			if strings.Contains(normalizeForMatch(f.rel), norm) {
				match = append(match, f)
			}
		}
		if len(match) == 0 {
			continue
		}
		for _, m := range match {
			if strings.Contains(strings.ToLower(m.rel), "regular") {
				return m.full, nil
			}
		}
		return match[0].full, nil
	}
	return "", os.ErrNotExist
}
