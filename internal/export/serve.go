package export

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.philip.id/vanity/internal/metrics"
	"go.philip.id/vanity/internal/registry"
)

// FileHandler serves pages written by Export. Any request below a repository
// gets that repository's page, so "/gokit/log" answers with "gokit/index.html"
// just like the server output mode does.
func FileHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		slug := strings.Trim(r.URL.Path, "/")
		name := indexFile
		if slug != "" {
			repo, _, _ := strings.Cut(slug, "/")
			if !registry.ValidSegment(repo) {
				metrics.ObservePageRequest(metrics.OutcomeNotFound)
				http.NotFound(w, r)
				return
			}
			name = filepath.Join(repo, indexFile)
		}

		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				metrics.ObservePageRequest(metrics.OutcomeNotFound)
				http.NotFound(w, r)
				return
			}
			metrics.ObservePageRequest(metrics.OutcomeError)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			metrics.ObservePageRequest(metrics.OutcomeNotFound)
			http.NotFound(w, r)
			return
		}

		if r.URL.Query().Get("go-get") == "1" {
			metrics.IncGoGetRequests()
		}
		metrics.ObservePageRequest(metrics.OutcomeRendered)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, name, info.ModTime(), f)
	})
}
