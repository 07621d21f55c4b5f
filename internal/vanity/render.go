package vanity

import (
	"fmt"
	"html/template"
	"io"

	"go.philip.id/vanity/internal/registry"
)

const pageTemplate = `<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8">
        <meta name="go-import" content="{{.ImportPrefix}} {{.VCS}} {{.RepoURL}}">
        <meta name="go-source" content="{{.ImportPrefix}} {{.RepoURL}} {{.SourceDir}} {{.SourceFile}}">
        <meta http-equiv="refresh" content="0; url={{.DocURL}}">
        <title>{{.ImportPath}}</title>
    </head>
    <body>
        Nothing to see here. Please <a href="{{.DocURL}}">move along</a>.
    </body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8">
        <title>{{.Host}}</title>
    </head>
    <body>
        <h1>{{.Host}}</h1>
        <ul>
        {{- range .Repositories}}
            <li><a href="{{.DocURL}}">{{.ImportPrefix}}</a></li>
        {{- end}}
        </ul>
    </body>
</html>
`

// Index lists the repositories served under a host.
type Index struct {
	Host         string
	Repositories []Page
}

// Renderer writes vanity HTML. Templates are parsed once.
type Renderer struct {
	page  *template.Template
	index *template.Template
}

// NewRenderer parses the page templates.
func NewRenderer() *Renderer {
	return &Renderer{
		page:  template.Must(template.New("page").Parse(pageTemplate)),
		index: template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Render writes the go-import page for p.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if err := r.page.Execute(w, p); err != nil {
		return fmt.Errorf("render page %s: %w", p.ImportPath, err)
	}
	return nil
}

// RenderIndex writes the listing page for the host root.
func (r *Renderer) RenderIndex(w io.Writer, idx Index) error {
	if err := r.index.Execute(w, idx); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return nil
}

// BuildIndex resolves every registered repository into an Index.
func BuildIndex(resolver *Resolver, repos []registry.Repository) (Index, error) {
	idx := Index{Host: resolver.Host(), Repositories: make([]Page, 0, len(repos))}
	for _, repo := range repos {
		page, err := resolver.Resolve(repo.Name)
		if err != nil {
			return Index{}, err
		}
		idx.Repositories = append(idx.Repositories, page)
	}
	return idx, nil
}
