package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("font"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCandidates(t *testing.T) {
	got := Candidates(`"Inter-Bold.ttf", sans-serif`)
	want := []string{"Inter-Bold.ttf", "Inter-Bold", "Inter", "sans-serif", "sans"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestFindPrefersRegular(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Inter", "Inter-Bold.ttf"))
	touch(t, filepath.Join(dir, "Inter", "Inter-Regular.ttf"))
	touch(t, filepath.Join(dir, "Inter", "LICENSE.txt"))

	got, err := Find("Inter", []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "Inter", "Inter-Regular.ttf"); got != want {
		t.Errorf("Find = %q, want %q", got, want)
	}
}

func TestFindFallsBackThroughFamilyList(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Noto_Sans", "NotoSans-Regular.otf"))

	got, err := Find("Helvetica Neue, Noto Sans", []string{filepath.Join(dir, "missing"), dir})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "NotoSans-Regular.otf" {
		t.Errorf("Find = %q", got)
	}
}

func TestFindAcceptsDirectPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom.ttf")
	touch(t, p)
	if got, err := Find(p, nil); err != nil || got != p {
		t.Errorf("Find(path) = %q, %v", got, err)
	}
}

func TestFindNothing(t *testing.T) {
	if _, err := Find("Inter", []string{t.TempDir()}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}
