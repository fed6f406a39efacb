package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Metrics tracks generation performance.
type Metrics struct {
	FilesGenerated int
	TotalBytes     int64
	RenderTime     time.Duration
	FormatTime     time.Duration
	WriteTime      time.Duration
}

// record updates the metrics under the generator lock.
func (g *Generator) record(fn func(m *Metrics)) {
	g.mu.Lock()
	fn(&g.metrics)
	g.mu.Unlock()
}

// formatOptions group and sort imports without loading packages: every
// import of a generated file is already known.
var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// format runs the goimports formatting pass. On failure in debug mode, the
// unformatted source is written next to the target, unless in a dry run.
func (g *Generator) format(name string, src []byte) ([]byte, error) {
	path := filepath.Join(g.graph.Target, name)
	formatted, err := imports.Process(path, src, formatOptions)
	if err == nil {
		return formatted, nil
	}
	if !g.graph.Debug || g.graph.DryRun {
		return nil, NewGenerationError("format", name, "", err)
	}
	debugPath := path + ".error"
	if os.MkdirAll(filepath.Dir(debugPath), 0o755) != nil || os.WriteFile(debugPath, src, 0o644) != nil {
		return nil, NewGenerationError("format", name, "", err)
	}
	return nil, NewGenerationError("format", name, fmt.Sprintf("unformatted source written to %s", debugPath), err)
}

// Write writes the files to the target directory. Each file is written to a
// temporary file in the same directory and renamed over the destination, so
// readers never observe a partially written file.
func (g *Generator) Write(ctx context.Context, files []*File) error {
	if err := os.MkdirAll(g.graph.Target, 0o755); err != nil {
		return NewGenerationError("write", "", "create output directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return g.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

// writeFile atomically replaces one file.
func (g *Generator) writeFile(f *File) (err error) {
	start := time.Now()
	tmp, err := os.CreateTemp(g.graph.Target, "."+f.Name+".*.tmp")
	if err != nil {
		return NewGenerationError("write", f.Name, "create temporary file", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(f.Content); err != nil {
		_ = tmp.Close()
		return NewGenerationError("write", f.Name, "", err)
	}
	if err = tmp.Close(); err != nil {
		return NewGenerationError("write", f.Name, "", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return NewGenerationError("write", f.Name, "", err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(g.graph.Target, f.Name)); err != nil {
		return NewGenerationError("write", f.Name, "rename", err)
	}
	g.record(func(m *Metrics) {
		m.WriteTime += time.Since(start)
		m.FilesGenerated++
		m.TotalBytes += int64(len(f.Content))
	})
	return nil
}
