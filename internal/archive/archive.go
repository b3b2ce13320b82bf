package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoModel is returned when a bundle holds no .gltf or .glb file.
var ErrNoModel = errors.New("bundle contains no .gltf or .glb file")

// IsBundle reports whether path names a zipped model bundle.
func IsBundle(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// Unzip extracts zipPath into destDir, preserving directory structure.
// destDir is created if needed. Entries that would land outside destDir are skipped.
// Returns the extracted file paths.
func Unzip(zipPath, destDir string) (extracted []string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer r.Close()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	for _, f := range r.File {
		dest := filepath.Clean(filepath.Join(destDir, f.Name))
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		if !strings.HasPrefix(absDest, absDir+string(os.PathSeparator)) {
			continue
		}
		if f.FileInfo().IsDir() {
			_ = os.MkdirAll(dest, 0755)
			continue
		}
		if err := extractFile(f, dest); err != nil {
			return nil, fmt.Errorf("unzip %s: %w", f.Name, err)
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// FindModel picks the model file among extracted paths: the shallowest .gltf or .glb,
// ties broken by name. Sidecar buffers and textures stay next to it on disk.
func FindModel(paths []string) (string, error) {
	best, bestDepth := "", -1
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".gltf" && ext != ".glb" {
			continue
		}
		depth := strings.Count(filepath.ToSlash(p), "/")
		if best == "" || depth < bestDepth || (depth == bestDepth && p < best) {
			best, bestDepth = p, depth
		}
	}
	if best == "" {
		return "", ErrNoModel
	}
	return best, nil
}

// OpenBundle extracts the bundle at zipPath into a directory named after it inside destRoot
// and returns the path of the model file it contains.
func OpenBundle(zipPath, destRoot string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	files, err := Unzip(zipPath, filepath.Join(destRoot, name))
	if err != nil {
		return "", err
	}
	return FindModel(files)
}
