package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeRepositoriesFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "repositories.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write repositories file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeRepositoriesFile(t, t.TempDir(), `
repositories:
  - name: gokit
    url: github.com/philipid/gokit
  - name: notes
    url: https://hg.example.com/notes
    vcs: hg
    branch: default
`)

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	want := []Repository{
		{Name: "gokit", URL: "github.com/philipid/gokit"},
		{Name: "notes", URL: "https://hg.example.com/notes", VCS: "hg", Branch: "default"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected repositories (-want +got):\n%s", diff)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := writeRepositoriesFile(t, t.TempDir(), "repositories: [")
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}
