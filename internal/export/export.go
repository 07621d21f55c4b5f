// Package export pre-renders vanity pages to a directory for the static
// output mode and serves that directory back.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"go.philip.id/vanity/internal/metrics"
	"go.philip.id/vanity/internal/registry"
	"go.philip.id/vanity/internal/vanity"
)

const indexFile = "index.html"

var (
	// ErrNothingToExport is returned when the registry holds no repositories.
	ErrNothingToExport = errors.New("no repositories to export")
	// ErrMissingDir is returned when no output directory was given.
	ErrMissingDir = errors.New("output directory is required")
)

// Exporter writes one index.html per registered repository.
type Exporter struct {
	resolver *vanity.Resolver
	renderer *vanity.Renderer
	registry registry.Registry
	logger   *zap.Logger
}

// New constructs an Exporter.
func New(resolver *vanity.Resolver, renderer *vanity.Renderer, reg registry.Registry, logger *zap.Logger) *Exporter {
	return &Exporter{
		resolver: resolver,
		renderer: renderer,
		registry: reg,
		logger:   logger.Named("export"),
	}
}

// Export renders every repository page plus the host index into dir and
// returns the written paths. Files are replaced atomically so a server reading
// dir never sees a partial page.
func (e *Exporter) Export(ctx context.Context, dir string) ([]string, error) {
	if dir == "" {
		return nil, ErrMissingDir
	}

	repos := e.registry.List()
	if len(repos) == 0 {
		return nil, ErrNothingToExport
	}

	written := make([]string, 0, len(repos)+1)
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		page, err := e.resolver.Resolve(repo.Name)
		if err != nil {
			return written, fmt.Errorf("resolve %s: %w", repo.Name, err)
		}

		var buf bytes.Buffer
		if err := e.renderer.Render(&buf, page); err != nil {
			return written, err
		}

		path := filepath.Join(dir, repo.Name, indexFile)
		if err := writeFile(path, buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	idx, err := vanity.BuildIndex(e.resolver, repos)
	if err != nil {
		return written, err
	}
	var buf bytes.Buffer
	if err := e.renderer.RenderIndex(&buf, idx); err != nil {
		return written, err
	}
	path := filepath.Join(dir, indexFile)
	if err := writeFile(path, buf.Bytes()); err != nil {
		return written, err
	}
	written = append(written, path)

	metrics.AddExportedPages(len(written))
	e.logger.Info("static export finished", zap.String("dir", dir), zap.Int("pages", len(written)))
	return written, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
