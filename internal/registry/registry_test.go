package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReplaceNormalizesEntries(t *testing.T) {
	reg := NewMemoryRegistry()

	err := reg.Replace([]Repository{
		{Name: "zeta", URL: "github.com/philipid/zeta/"},
		{Name: " alpha ", URL: "https://gitlab.com/philipid/alpha", VCS: "GIT", Branch: "main"},
	})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	want := []Repository{
		{Name: "alpha", URL: "https://gitlab.com/philipid/alpha", VCS: "git", Branch: "main"},
		{Name: "zeta", URL: "https://github.com/philipid/zeta", VCS: "git", Branch: "master"},
	}
	if diff := cmp.Diff(want, reg.List()); diff != "" {
		t.Fatalf("unexpected repositories (-want +got):\n%s", diff)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", reg.Len())
	}
}

func TestReplaceKeepsPreviousOnError(t *testing.T) {
	reg := NewMemoryRegistry()
	if err := reg.Replace([]Repository{{Name: "gokit", URL: "github.com/philipid/gokit"}}); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	tests := []struct {
		name  string
		repos []Repository
		want  error
	}{
		{name: "bad name", repos: []Repository{{Name: "a/b", URL: "github.com/x/y"}}, want: ErrInvalidRepository},
		{name: "reserved name", repos: []Repository{{Name: "api", URL: "github.com/x/y"}}, want: ErrInvalidRepository},
		{name: "dot name", repos: []Repository{{Name: "..", URL: "github.com/x/y"}}, want: ErrInvalidRepository},
		{name: "missing url", repos: []Repository{{Name: "x"}}, want: ErrInvalidRepository},
		{name: "bad vcs", repos: []Repository{{Name: "x", URL: "github.com/x/y", VCS: "cvs"}}, want: ErrInvalidRepository},
		{
			name:  "duplicate",
			repos: []Repository{{Name: "x", URL: "github.com/x/y"}, {Name: "x", URL: "github.com/x/z"}},
			want:  ErrDuplicateRepository,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Replace(tt.repos)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, ok := reg.Lookup("gokit"); !ok {
				t.Fatalf("expected previous mapping to survive a failed replace")
			}
		})
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	reg := NewMemoryRegistry()
	if err := reg.Replace([]Repository{{Name: "gokit", URL: "github.com/philipid/gokit"}}); err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	repo, ok := reg.Lookup("gokit")
	if !ok {
		t.Fatalf("expected gokit to be registered")
	}
	repo.URL = "https://example.com/elsewhere"

	again, _ := reg.Lookup("gokit")
	if again.URL != "https://github.com/philipid/gokit" {
		t.Fatalf("registry state mutated through returned value: %s", again.URL)
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Fatalf("expected missing lookup to fail")
	}
}

func TestValidSegment(t *testing.T) {
	valid := []string{"gokit", "go-kit", "go_kit", "v2", "gopkg.in"}
	for _, s := range valid {
		if !ValidSegment(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	invalid := []string{"", ".", "..", "a b", "a/b", "<script>", "é"}
	for _, s := range invalid {
		if ValidSegment(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL(" github.com/philipid ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://github.com/philipid" {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := NormalizeURL("https://"); err == nil {
		t.Fatalf("expected error for url without host")
	}
}
