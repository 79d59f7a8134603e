// Package export serializes final point layers to their interchange formats
// and publishes every artifact of a run atomically.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Artifact is one output file of a run: a name within the output directory
// and a function that renders its full content.
type Artifact struct {
	Name   string
	Render func(w io.Writer) error
}

// Writer publishes run artifacts. Artifacts are staged in a temporary
// directory and moved into the output directory only after every render
// succeeded, so a failed run leaves no partial or corrupt outputs behind.
// Existing files of the same name are overwritten.
type Writer struct {
	outDir string
	logger *slog.Logger
}

// NewWriter creates an artifact writer rooted at outDir.
func NewWriter(outDir string, logger *slog.Logger) *Writer {
	return &Writer{outDir: outDir, logger: logger}
}

// WriteAll renders every artifact into a staging directory, then moves the
// complete set into the output directory. Any failure removes the staging
// directory and publishes nothing.
func (w *Writer) WriteAll(artifacts []Artifact) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Staging inside the output directory keeps the final renames on one
	// filesystem.
	staging, err := os.MkdirTemp(w.outDir, ".staging-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	for _, a := range artifacts {
		if err := renderToFile(filepath.Join(staging, a.Name), a.Render); err != nil {
			return fmt.Errorf("render %s: %w", a.Name, err)
		}
	}

	for _, a := range artifacts {
		src := filepath.Join(staging, a.Name)
		dst := filepath.Join(w.outDir, a.Name)
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("publish %s: %w", a.Name, err)
		}
		w.logger.Debug("artifact published", "name", a.Name)
	}

	w.logger.Info("artifacts published", "count", len(artifacts), "dir", w.outDir)
	return nil
}

func renderToFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
