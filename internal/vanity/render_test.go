package vanity

import (
	"bytes"
	"strings"
	"testing"

	"go.philip.id/vanity/internal/registry"
)

func TestRenderPage(t *testing.T) {
	r := NewResolver("go.philip.id", nil, WithFallback("https://github.com/philipid"))
	page, err := r.Resolve("/gokit/log")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewRenderer().Render(&buf, page); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	body := buf.String()

	wants := []string{
		`<meta name="go-import" content="go.philip.id/gokit git https://github.com/philipid/gokit">`,
		`<meta name="go-source" content="go.philip.id/gokit https://github.com/philipid/gokit https://github.com/philipid/gokit/tree/master{/dir} https://github.com/philipid/gokit/blob/master{/dir}/{file}#L{line}">`,
		`<meta http-equiv="refresh" content="0; url=https://pkg.go.dev/go.philip.id/gokit/log">`,
		`<a href="https://pkg.go.dev/go.philip.id/gokit/log">move along</a>`,
	}
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q, got:\n%s", want, body)
		}
	}
}

func TestRenderIndex(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	err := reg.Replace([]registry.Repository{
		{Name: "gokit", URL: "github.com/philipid/gokit"},
		{Name: "notes", URL: "github.com/philipid/notes"},
	})
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}

	idx, err := BuildIndex(NewResolver("go.philip.id", reg), reg.List())
	if err != nil {
		t.Fatalf("BuildIndex returned error: %v", err)
	}
	if len(idx.Repositories) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(idx.Repositories))
	}

	var buf bytes.Buffer
	if err := NewRenderer().RenderIndex(&buf, idx); err != nil {
		t.Fatalf("RenderIndex returned error: %v", err)
	}
	body := buf.String()
	for _, want := range []string{"<h1>go.philip.id</h1>", ">go.philip.id/gokit</a>", ">go.philip.id/notes</a>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected index to contain %q, got:\n%s", want, body)
		}
	}
}
