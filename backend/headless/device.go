// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package headless

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

// Op identifies one recorded device operation.
type Op uint8

const (
	OpCreateTexture Op = iota
	OpDestroyTexture
	OpCompileProgram
	OpBarrier
	OpBeginPass
	OpClear
	OpBindInput
	OpDraw
	OpEndPass
)

func (o Op) String() string {
	switch o {
	case OpCreateTexture:
		return "create-texture"
	case OpDestroyTexture:
		return "destroy-texture"
	case OpCompileProgram:
		return "compile-program"
	case OpBarrier:
		return "barrier"
	case OpBeginPass:
		return "begin-pass"
	case OpClear:
		return "clear"
	case OpBindInput:
		return "bind-input"
	case OpDraw:
		return "draw"
	case OpEndPass:
		return "end-pass"
	default:
		return "unknown"
	}
}

// Event is one recorded operation. Fields are populated per Op:
// pass-scoped events carry Pass; texture and binding events carry
// Target; BeginPass carries the bound targets in attachment order.
type Event struct {
	Op      Op
	Pass    string
	Target  string
	Program string
	Targets []string
	Slot    int
	Sampler framegraph.SamplerMode
	Writer  string
}

func (e Event) String() string {
	switch e.Op {
	case OpBeginPass:
		return fmt.Sprintf("%s %s %v", e.Op, e.Pass, e.Targets)
	case OpBarrier:
		return fmt.Sprintf("%s %s (%s -> %s)", e.Op, e.Target, e.Writer, e.Pass)
	case OpBindInput:
		return fmt.Sprintf("%s %s %s@%d", e.Op, e.Pass, e.Target, e.Slot)
	default:
		return fmt.Sprintf("%s %s %s", e.Op, e.Pass, e.Target)
	}
}

// Device is an in-memory framegraph.Device that records every call as
// an inspectable trace. It performs no GPU work; tests and tooling
// (cmd/fginspect) use it to observe exactly what a real backend would
// be asked to do.
//
// The zero value is not usable; call New.
type Device struct {
	mu     sync.Mutex
	logger *slog.Logger

	events  []Event
	open    *framegraph.PassEncoding
	alive   map[string]int // live textures per label
	counter int

	failCreate  map[string]error
	failCompile map[string]error
	failBegin   map[string]error
	failDraw    map[string]error
}

// New creates an empty recording device.
func New() *Device {
	return &Device{
		logger:      framegraph.Logger(),
		alive:       make(map[string]int),
		failCreate:  make(map[string]error),
		failCompile: make(map[string]error),
		failBegin:   make(map[string]error),
		failDraw:    make(map[string]error),
	}
}

// SetLogger lets framegraph propagate its configured logger.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l != nil {
		d.logger = l
	}
}

// FailCreateTexture makes CreateTexture fail for the given label.
func (d *Device) FailCreateTexture(label string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failCreate[label] = err
}

// FailCompile makes CompileProgram fail for the given program name.
func (d *Device) FailCompile(program string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failCompile[program] = err
}

// FailBeginPass makes BeginPass fail for the given pass name.
func (d *Device) FailBeginPass(pass string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failBegin[pass] = err
}

// FailDraw makes Draw fail inside the given pass.
func (d *Device) FailDraw(pass string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failDraw[pass] = err
}

// Events returns a copy of the recorded trace.
func (d *Device) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// PassOrder returns the pass names in BeginPass order.
func (d *Device) PassOrder() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var order []string
	for _, e := range d.events {
		if e.Op == OpBeginPass {
			order = append(order, e.Pass)
		}
	}
	return order
}

// EventsIn returns the trace slice scoped to one pass, from BeginPass
// through EndPass, barriers preceding the pass included.
func (d *Device) EventsIn(pass string) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Event
	var pending []Event
	inPass := false
	for _, e := range d.events {
		switch e.Op {
		case OpBarrier:
			if e.Pass == pass {
				pending = append(pending, e)
			}
		case OpBeginPass:
			if e.Pass == pass {
				inPass = true
				out = append(out, pending...)
				out = append(out, e)
			}
			pending = pending[:0]
		case OpEndPass:
			if inPass {
				out = append(out, Event{Op: OpEndPass, Pass: pass})
				inPass = false
			}
		default:
			if inPass {
				out = append(out, e)
			}
		}
	}
	return out
}

// LiveTextures returns the number of live (created, not destroyed)
// textures carrying the given label.
func (d *Device) LiveTextures(label string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alive[label]
}

// Reset clears the recorded trace. Live textures and failure hooks are
// kept.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = d.events[:0]
}

func (d *Device) record(e Event) {
	d.events = append(d.events, e)
}

// CreateTexture implements framegraph.Device.
func (d *Device) CreateTexture(desc framegraph.TextureDescriptor) (framegraph.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failCreate[desc.Label]; err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, errors.New("headless: zero-sized texture")
	}
	d.counter++
	d.alive[desc.Label]++
	d.record(Event{Op: OpCreateTexture, Target: desc.Label})
	d.logger.Debug("texture created",
		slog.String("label", desc.Label),
		slog.Int("width", int(desc.Width)),
		slog.Int("height", int(desc.Height)))
	return &texture{device: d, id: d.counter, desc: desc}, nil
}

// CompileProgram implements framegraph.Device. Any non-empty stage
// source compiles; configured failures surface as CompileError so the
// program table's aggregation path is exercised end to end.
func (d *Device) CompileProgram(src framegraph.ProgramSource) (framegraph.CompiledProgram, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failCompile[src.Name]; err != nil {
		return nil, err
	}
	if src.VertexSource == "" {
		return nil, &framegraph.CompileError{
			Program: src.Name,
			Stage:   framegraph.StageVertex,
			Err:     errors.New("headless: empty vertex source"),
		}
	}
	if src.FragmentSource == "" {
		return nil, &framegraph.CompileError{
			Program: src.Name,
			Stage:   framegraph.StageFragment,
			Err:     errors.New("headless: empty fragment source"),
		}
	}
	d.record(Event{Op: OpCompileProgram, Program: src.Name})
	return &program{name: src.Name}, nil
}

// Barrier implements framegraph.Device.
func (d *Device) Barrier(b framegraph.Barrier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Event{Op: OpBarrier, Pass: b.Reader, Target: b.Target, Writer: b.Writer})
}

// BeginPass implements framegraph.Device. The clear policy is expanded
// into one OpClear event per cleared attachment, in attachment order,
// so tests can assert exactly what a clear touches.
func (d *Device) BeginPass(enc *framegraph.PassEncoding) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failBegin[enc.Name]; err != nil {
		return err
	}
	if d.open != nil {
		return fmt.Errorf("headless: pass %q begun while %q is open", enc.Name, d.open.Name)
	}
	d.open = enc

	targets := make([]string, 0, len(enc.Colors)+1)
	for _, c := range enc.Colors {
		targets = append(targets, c.Target)
	}
	if enc.DepthStencil != nil {
		targets = append(targets, enc.DepthStencil.Target)
	}
	d.record(Event{Op: OpBeginPass, Pass: enc.Name, Targets: targets})

	clearing := framegraph.ClearNone
	if enc.State != nil {
		clearing = enc.State.Clearing
	}
	switch clearing {
	case framegraph.ClearAll:
		for _, c := range enc.Colors {
			d.record(Event{Op: OpClear, Pass: enc.Name, Target: c.Target})
		}
		if enc.DepthStencil != nil {
			d.record(Event{Op: OpClear, Pass: enc.Name, Target: enc.DepthStencil.Target})
		}
	case framegraph.ClearColor:
		for _, c := range enc.Colors {
			d.record(Event{Op: OpClear, Pass: enc.Name, Target: c.Target})
		}
	}
	return nil
}

// BindInput implements framegraph.Device.
func (d *Device) BindInput(b framegraph.InputBinding) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open == nil {
		return errors.New("headless: bind outside a pass")
	}
	if b.Texture == nil {
		return fmt.Errorf("headless: input %q has no allocation", b.Target)
	}
	d.record(Event{
		Op:      OpBindInput,
		Pass:    d.open.Name,
		Target:  b.Target,
		Slot:    b.Slot,
		Sampler: b.Sampler,
	})
	return nil
}

// Draw implements framegraph.Device.
func (d *Device) Draw(_ framegraph.Drawable) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open == nil {
		return errors.New("headless: draw outside a pass")
	}
	if err := d.failDraw[d.open.Name]; err != nil {
		return err
	}
	d.record(Event{Op: OpDraw, Pass: d.open.Name})
	return nil
}

// EndPass implements framegraph.Device.
func (d *Device) EndPass() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open == nil {
		return
	}
	d.record(Event{Op: OpEndPass, Pass: d.open.Name})
	d.open = nil
}

var _ framegraph.Device = (*Device)(nil)

// texture is a recorded allocation.
type texture struct {
	device    *Device
	id        int
	desc      framegraph.TextureDescriptor
	destroyed bool
}

func (t *texture) Width() uint32                  { return t.desc.Width }
func (t *texture) Height() uint32                 { return t.desc.Height }
func (t *texture) Format() gputypes.TextureFormat { return t.desc.Format }

func (t *texture) Destroy() {
	t.device.mu.Lock()
	defer t.device.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.device.alive[t.desc.Label]--
	t.device.record(Event{Op: OpDestroyTexture, Target: t.desc.Label})
}

// program is a recorded compilation.
type program struct {
	name      string
	destroyed bool
}

func (p *program) Name() string { return p.name }
func (p *program) Destroy()     { p.destroyed = true }
