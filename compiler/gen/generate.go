package gen

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// File is one rendered source file.
type File struct {
	// Name is the file name relative to the target directory.
	Name string
	// Content is the formatted source.
	Content []byte
}

// Generator renders the schema files of a graph with parallel execution
// and writes them once every file rendered successfully.
type Generator struct {
	graph   *Graph
	workers int

	mu      sync.Mutex
	metrics Metrics
}

// NewGenerator creates a new generator for the graph.
func NewGenerator(g *Graph) *Generator {
	return &Generator{
		graph:   g,
		workers: g.Workers,
	}
}

// WithWorkers sets the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Metrics returns the generation metrics.
func (g *Generator) Metrics() Metrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics
}

// task is a single file generation task.
type task struct {
	name string
	gen  func() *jen.File
}

func (g *Generator) tasks() []task {
	tasks := make([]task, 0, len(g.graph.Nodes)+1)
	for _, t := range g.graph.Nodes {
		tasks = append(tasks, task{name: t.File, gen: func() *jen.File { return g.genEntity(t) }})
	}
	return append(tasks, task{name: g.graph.Entry, gen: g.genEntry})
}

// Render renders every file in memory. Results keep the order of the graph
// nodes, followed by the entry file.
func (g *Generator) Render(ctx context.Context) ([]*File, error) {
	tasks := g.tasks()
	files := make([]*File, len(tasks))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, tk := range tasks {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			f, err := g.render(tk)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// render renders and formats one file.
func (g *Generator) render(tk task) (*File, error) {
	start := time.Now()
	var buf bytes.Buffer
	if err := tk.gen().Render(&buf); err != nil {
		return nil, NewGenerationError("render", tk.name, "", err)
	}
	elapsed := time.Since(start)
	g.record(func(m *Metrics) { m.RenderTime += elapsed })

	start = time.Now()
	content, err := g.format(tk.name, buf.Bytes())
	if err != nil {
		return nil, err
	}
	elapsed = time.Since(start)
	g.record(func(m *Metrics) { m.FormatTime += elapsed })
	return &File{Name: tk.name, Content: content}, nil
}

// Generate renders every file and, unless the configuration asks for a dry
// run, writes them to the target directory. Nothing is written when any
// file fails to render.
func (g *Generator) Generate(ctx context.Context) ([]*File, error) {
	files, err := g.Render(ctx)
	if err != nil {
		return nil, err
	}
	if g.graph.DryRun {
		return files, nil
	}
	if err := g.Write(ctx, files); err != nil {
		return nil, err
	}
	return files, nil
}
