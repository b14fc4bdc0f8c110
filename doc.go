// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package framegraph compiles a declarative render-pipeline description
// into a dependency-correct sequence of GPU passes and executes that
// sequence frame after frame.
//
// # Overview
//
// A pipeline document lists render targets, shader programs, and passes.
// Each pass names the targets it writes, the targets it samples, the
// program it runs, and the GPU state it needs. framegraph turns that
// description into an executable schedule:
//
//	doc, err := framegraph.Parse(data)
//	graph, err := framegraph.Compile(doc, device, framegraph.Extent{Width: 1920, Height: 1080})
//
//	frame := framegraph.NewFrame()
//	frame.Enqueue("MESH_STATIC", drawables...)
//	err = graph.Execute(ctx, frame)
//	frame.Reset()
//
// The schedule is recomputed when the document changes or a pass is
// toggled; target allocations are redone on Resize. Both are off the
// per-frame path.
//
// # Architecture
//
// The package is organized into:
//   - Wire format: Document, TargetDesc, ProgramDesc, PassDesc, PipelineState
//   - Compilation: Registry (target allocations), ProgramTable, Schedule
//   - Execution: Graph, Frame, updater hooks
//   - Backends: the Device interface, implemented under backend/
//
// Backends in this repository: backend/headless (records a command
// trace, used by tests and tooling) and backend/wgpu (WebGPU via
// gogpu/wgpu).
//
// # Logging
//
// framegraph produces no log output by default. Call [SetLogger] to
// enable structured logging via log/slog.
package framegraph
