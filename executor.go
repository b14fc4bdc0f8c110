// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Pass is one compiled, executable pass: its descriptor plus resolved
// program and updater hooks. Immutable during a frame.
type Pass struct {
	desc    *PassDesc
	program CompiledProgram // nil when the program table has no entry

	passHooks     []PassUpdater
	instanceHooks []InstanceUpdater
}

// Name returns the pass name.
func (p *Pass) Name() string { return p.desc.Name }

// Desc returns the pass descriptor.
func (p *Pass) Desc() *PassDesc { return p.desc }

// Program returns the compiled program, or nil if the table has none
// under the pass's program name.
func (p *Pass) Program() CompiledProgram { return p.program }

// executor runs a compiled schedule against the device, once per frame.
type executor struct {
	device Device
	reg    *Registry
}

// runFrame executes the passes in schedule order. A pass failure
// (begin or draw) is isolated: the pass is skipped or cut short, a
// warning is logged, and execution continues with the next pass. The
// joined failures come back wrapped in ErrPartialFrame.
// Context cancellation abandons the frame between passes; writes
// already issued are confined to their own attachments, so there is
// nothing to roll back.
func (e *executor) runFrame(ctx context.Context, passes []*Pass, batches BatchSource, frameIndex uint64) error {
	if batches == nil {
		batches = emptyBatch{}
	}
	log := Logger()

	var passErrs []error
	// lastWriter tracks, per target, the most recent pass that wrote it
	// this frame. The next reader gets a barrier against that writer.
	lastWriter := make(map[string]string)

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("framegraph: frame %d abandoned before pass %q: %w", frameIndex, p.Name(), err)
		}
		if err := e.runPass(p, batches, frameIndex, lastWriter); err != nil {
			log.Warn("pass failed, continuing frame",
				slog.String("pass", p.Name()),
				slog.Uint64("frame", frameIndex),
				slog.Any("error", err))
			passErrs = append(passErrs, fmt.Errorf("pass %q: %w", p.Name(), err))
		}
		for _, t := range p.desc.writes() {
			lastWriter[t] = p.Name()
		}
	}
	if len(passErrs) > 0 {
		return fmt.Errorf("%w: %w", ErrPartialFrame, errors.Join(passErrs...))
	}
	return nil
}

// runPass records one pass: barriers for written inputs, attachments
// and state, sampled inputs, updater hooks, then the batch's draws.
func (e *executor) runPass(p *Pass, batches BatchSource, frameIndex uint64, lastWriter map[string]string) error {
	desc := p.desc

	// A reader of a target written earlier this frame must observe the
	// completed write before sampling.
	for _, in := range desc.Inputs {
		if w, ok := lastWriter[in.Name]; ok {
			e.device.Barrier(Barrier{Target: in.Name, Writer: w, Reader: desc.Name})
		}
	}

	enc := &PassEncoding{
		Name:    desc.Name,
		Program: p.program,
		State:   &desc.State,
	}
	for _, out := range desc.Outputs {
		att := ColorAttachment{Target: out}
		if out != DefaultTarget {
			h, ok := e.reg.Lookup(out)
			if !ok {
				return &UnknownResourceError{Pass: desc.Name, Target: out}
			}
			att.Texture = h.Texture()
		}
		enc.Colors = append(enc.Colors, att)
	}
	if desc.DepthStencil != "" {
		h, ok := e.reg.Lookup(desc.DepthStencil)
		if !ok {
			return &UnknownResourceError{Pass: desc.Name, Target: desc.DepthStencil}
		}
		enc.DepthStencil = &DepthAttachment{Target: desc.DepthStencil, Texture: h.Texture()}
	}

	if err := e.device.BeginPass(enc); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer e.device.EndPass()

	for slot, in := range desc.Inputs {
		h, ok := e.reg.Lookup(in.Name)
		if !ok {
			return &UnknownResourceError{Pass: desc.Name, Target: in.Name}
		}
		if err := e.device.BindInput(InputBinding{
			Slot:    slot,
			Target:  in.Name,
			Texture: h.Texture(),
			Sampler: in.Sampler,
		}); err != nil {
			return fmt.Errorf("bind input %q: %w", in.Name, err)
		}
	}

	pc := PassContext{
		Pass:       p,
		Device:     e.device,
		Extent:     e.reg.Extent(),
		FrameIndex: frameIndex,
	}
	for _, hook := range p.passHooks {
		hook(pc)
	}

	// Without a compiled program the pass has nothing to draw; its
	// clear policy has already applied in BeginPass.
	if p.program == nil {
		return nil
	}

	drawables := batches.Drawables(desc.Batch)
	for _, d := range drawables {
		for _, hook := range p.instanceHooks {
			hook(pc, d)
		}
		if err := e.device.Draw(d); err != nil {
			return fmt.Errorf("draw: %w", err)
		}
	}
	Logger().Debug("pass recorded",
		slog.String("pass", desc.Name),
		slog.Int("draws", len(drawables)))
	return nil
}
