// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"context"
	"log/slog"
	"sync"
)

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	loader   ShaderLoader
	updaters *Updaters
}

func defaultCompileOptions() compileOptions {
	return compileOptions{
		loader:   NameLoader,
		updaters: NewUpdaters(),
	}
}

// WithShaderLoader sets the loader that resolves the document's stage
// identifiers to shader source text. Defaults to NameLoader, which is
// only useful with backends that do not compile real shaders.
func WithShaderLoader(l ShaderLoader) CompileOption {
	return func(o *compileOptions) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithUpdaters sets the updater registry the document's hook tags are
// resolved against. Without it, any updater tag in the document is a
// ConfigError.
func WithUpdaters(u *Updaters) CompileOption {
	return func(o *compileOptions) {
		if u != nil {
			o.updaters = u
		}
	}
}

// Graph is a compiled frame graph: resolved targets, compiled
// programs, and a dependency-correct schedule, ready to execute once
// per frame.
//
// Execute, Resize, and SetEnabled are mutually serialized, so a resize
// never reallocates a target mid-frame.
type Graph struct {
	mu sync.Mutex

	device   Device
	doc      *Document
	opts     compileOptions
	registry *Registry
	programs *ProgramTable
	schedule *Schedule
	passes   []*Pass

	frameIndex uint64
	released   bool
}

// Compile validates the document eagerly and builds an executable
// graph: targets resolved against extent, every program compiled, every
// updater tag bound, passes dependency-ordered. All structural errors
// (ConfigError, UnknownResourceError, CyclicDependencyError,
// CompileError, AllocationError) surface here, before any frame runs.
func Compile(doc *Document, device Device, extent Extent, opts ...CompileOption) (*Graph, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if device == nil {
		return nil, ErrNilDevice
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	o := defaultCompileOptions()
	for _, opt := range opts {
		opt(&o)
	}
	propagateLogger(device)

	g := &Graph{device: device, doc: doc, opts: o}

	reg, err := NewRegistry(device, doc.Targets)
	if err != nil {
		return nil, err
	}
	if err := reg.Resolve(extent); err != nil {
		reg.Release()
		return nil, err
	}
	g.registry = reg

	programs, err := LoadPrograms(device, doc.Programs, o.loader)
	if err != nil {
		programs.Release()
		reg.Release()
		return nil, err
	}
	g.programs = programs

	if err := g.rebuild(); err != nil {
		programs.Release()
		reg.Release()
		return nil, err
	}

	Logger().Info("frame graph compiled",
		slog.String("document", doc.String()),
		slog.Int("scheduled", len(g.schedule.Passes)))
	return g, nil
}

// rebuild recomputes the schedule and the compiled pass list. Called
// under mu (or before the graph escapes Compile). Updater tags are
// bound for every pass, disabled ones included, so toggling a pass
// later cannot fail.
func (g *Graph) rebuild() error {
	for i := range g.doc.Passes {
		desc := &g.doc.Passes[i]
		if _, err := g.opts.updaters.passHooks(desc.Name, desc.PerPassUpdaters); err != nil {
			return err
		}
		if _, err := g.opts.updaters.instanceHooks(desc.Name, desc.PerInstanceUpdaters); err != nil {
			return err
		}
	}

	sched, err := BuildSchedule(g.doc, g.registry)
	if err != nil {
		return err
	}

	passes := make([]*Pass, 0, len(sched.Passes))
	for _, desc := range sched.Passes {
		passHooks, err := g.opts.updaters.passHooks(desc.Name, desc.PerPassUpdaters)
		if err != nil {
			return err
		}
		instanceHooks, err := g.opts.updaters.instanceHooks(desc.Name, desc.PerInstanceUpdaters)
		if err != nil {
			return err
		}
		program, _ := g.programs.Lookup(desc.Program)
		passes = append(passes, &Pass{
			desc:          desc,
			program:       program,
			passHooks:     passHooks,
			instanceHooks: instanceHooks,
		})
	}
	g.schedule = sched
	g.passes = passes
	return nil
}

// Execute runs one frame in schedule order, drawing the batches the
// source yields. A nil source runs every pass with zero drawables.
//
// Pass-level failures do not abort the frame; they come back joined
// under ErrPartialFrame after every remaining pass has run. Context
// cancellation abandons the frame between passes.
func (g *Graph) Execute(ctx context.Context, batches BatchSource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return ErrReleased
	}
	ex := &executor{device: g.device, reg: g.registry}
	err := ex.runFrame(ctx, g.passes, batches, g.frameIndex)
	g.frameIndex++
	return err
}

// Resize re-resolves every target against a new viewport extent.
// Serialized against Execute: no pass observes a target
// mid-reallocation. Resizing to the current extent is a no-op.
func (g *Graph) Resize(extent Extent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return ErrReleased
	}
	return g.registry.Resolve(extent)
}

// SetEnabled overrides a pass's enabled state and recomputes the
// schedule. Unknown pass names fail with ConfigError.
func (g *Graph) SetEnabled(pass string, enabled bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return ErrReleased
	}
	desc := g.doc.Pass(pass)
	if desc == nil {
		return configErrorf("unknown pass %q", pass)
	}
	if desc.IsDisabled == !enabled {
		return nil
	}
	desc.IsDisabled = !enabled
	return g.rebuild()
}

// Schedule returns the current schedule.
func (g *Graph) Schedule() *Schedule {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.schedule
}

// Registry returns the graph's resource registry.
func (g *Graph) Registry() *Registry {
	return g.registry
}

// Programs returns the graph's program table.
func (g *Graph) Programs() *ProgramTable {
	return g.programs
}

// FrameIndex returns the number of executed frames.
func (g *Graph) FrameIndex() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frameIndex
}

// Release destroys compiled programs and target allocations. The graph
// is unusable afterwards. The default surface belongs to the backend
// and is not touched.
func (g *Graph) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return
	}
	g.released = true
	g.programs.Release()
	g.registry.Release()
}
