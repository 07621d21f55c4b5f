package vanity

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.philip.id/vanity/internal/registry"
)

func newTestRegistry(t *testing.T) *registry.MemoryRegistry {
	t.Helper()
	reg := registry.NewMemoryRegistry()
	err := reg.Replace([]registry.Repository{
		{Name: "notes", URL: "https://hg.example.com/notes", VCS: "hg", Branch: "default"},
	})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	return reg
}

func TestResolveFallback(t *testing.T) {
	r := NewResolver("go.philip.id", newTestRegistry(t), WithFallback("https://github.com/philipid/"))

	got, err := r.Resolve("/gokit/log/")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	want := Page{
		ImportPrefix: "go.philip.id/gokit",
		ImportPath:   "go.philip.id/gokit/log",
		VCS:          "git",
		RepoURL:      "https://github.com/philipid/gokit",
		Branch:       "master",
		DocURL:       "https://pkg.go.dev/go.philip.id/gokit/log",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected page (-want +got):\n%s", diff)
	}
	if got.SourceDir() != "https://github.com/philipid/gokit/tree/master{/dir}" {
		t.Fatalf("unexpected source dir template %s", got.SourceDir())
	}
	if got.SourceFile() != "https://github.com/philipid/gokit/blob/master{/dir}/{file}#L{line}" {
		t.Fatalf("unexpected source file template %s", got.SourceFile())
	}
}

func TestResolvePrefersRegistry(t *testing.T) {
	r := NewResolver("go.philip.id", newTestRegistry(t), WithFallback("https://github.com/philipid"))

	got, err := r.Resolve("notes")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.VCS != "hg" || got.RepoURL != "https://hg.example.com/notes" || got.Branch != "default" {
		t.Fatalf("expected registry mapping, got %+v", got)
	}
}

func TestResolveErrors(t *testing.T) {
	strict := NewResolver("go.philip.id", newTestRegistry(t))

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "root", path: "/", want: ErrEmptyPath},
		{name: "empty", path: "", want: ErrEmptyPath},
		{name: "traversal", path: "/gokit/../etc", want: ErrInvalidPath},
		{name: "double slash", path: "/gokit//log", want: ErrInvalidPath},
		{name: "markup", path: "/<b>", want: ErrInvalidPath},
		{name: "unknown without fallback", path: "/gokit", want: ErrUnknownRepository},
		{name: "reserved api", path: "/api/unknown", want: ErrInvalidPath},
		{name: "reserved metrics", path: "/metrics/extra", want: ErrInvalidPath},
	}

	lenient := NewResolver("go.philip.id", newTestRegistry(t), WithFallback("github.com/philipid"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strict
			if tt.want != ErrUnknownRepository {
				r = lenient
			}
			_, err := r.Resolve(tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestResolveWithoutRegistry(t *testing.T) {
	r := NewResolver("example.com/go/", nil, WithFallback("github.com/someone"))

	got, err := r.Resolve("tool")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.ImportPrefix != "example.com/go/tool" {
		t.Fatalf("unexpected import prefix %s", got.ImportPrefix)
	}
	if got.RepoURL != "https://github.com/someone/tool" {
		t.Fatalf("unexpected repo url %s", got.RepoURL)
	}
}
