// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"log/slog"
	"math"

	"github.com/gogpu/gputypes"
)

// TargetHandle is a stable reference to one render target. Passes hold
// handles, never textures: when the Registry reallocates on resize the
// handle's Texture method returns the new allocation and nothing held
// by a pass needs updating.
type TargetHandle struct {
	desc TargetDesc

	tex    Texture
	width  uint32
	height uint32
}

// Name returns the target's unique name.
func (h *TargetHandle) Name() string { return h.desc.Name }

// Group returns the target's logical group tag (e.g. "gbuffer").
func (h *TargetHandle) Group() string { return h.desc.Group }

// Format returns the backend pixel format.
func (h *TargetHandle) Format() gputypes.TextureFormat { return h.desc.Format.TextureFormat() }

// IsDepth reports whether the target is a depth/stencil target.
func (h *TargetHandle) IsDepth() bool { return h.desc.Format.IsDepth() }

// Texture returns the current backing allocation, or nil before the
// first Resolve.
func (h *TargetHandle) Texture() Texture { return h.tex }

// Width returns the resolved width in pixels.
func (h *TargetHandle) Width() uint32 { return h.width }

// Height returns the resolved height in pixels.
func (h *TargetHandle) Height() uint32 { return h.height }

// Registry owns render-target descriptors and their backing
// allocations. It resolves the document's relative sizes to absolute
// pixel dimensions against the current viewport extent.
//
// Registry is not internally synchronized: the Graph serializes
// Resolve against in-flight Execute calls so no pass reads a target
// mid-reallocation.
type Registry struct {
	device  Device
	handles map[string]*TargetHandle
	order   []string // descriptor order, for deterministic iteration
	extent  Extent
}

// NewRegistry builds a registry from target descriptors. Fails with
// ConfigError if two targets share a name. No allocation happens until
// Resolve.
func NewRegistry(device Device, targets []TargetDesc) (*Registry, error) {
	r := &Registry{
		device:  device,
		handles: make(map[string]*TargetHandle, len(targets)),
		order:   make([]string, 0, len(targets)),
	}
	for _, t := range targets {
		if _, dup := r.handles[t.Name]; dup {
			return nil, configErrorf("duplicate target name %q", t.Name)
		}
		r.handles[t.Name] = &TargetHandle{desc: t}
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// scale resolves one relative dimension against the extent.
func scale(factor float64, extent uint32) uint32 {
	return uint32(math.Round(factor * float64(extent)))
}

// Resolve allocates or reallocates every target against the viewport
// extent. Re-resolving with an unchanged extent is idempotent: existing
// allocations are kept and no texture is leaked. When the extent
// changes, every target is reallocated, full-resolution ones included,
// since their absolute size follows the extent.
//
// Fails with AllocationError when the backend rejects a format/size
// combination; targets resolved before the failure keep their new
// allocations, so a later Resolve retries only what is missing.
func (r *Registry) Resolve(extent Extent) error {
	if extent.Width == 0 || extent.Height == 0 {
		return ErrZeroExtent
	}
	for _, name := range r.order {
		h := r.handles[name]
		w := scale(h.desc.Width, extent.Width)
		hgt := scale(h.desc.Height, extent.Height)
		if h.tex != nil && h.width == w && h.height == hgt {
			continue
		}
		tex, err := r.device.CreateTexture(TextureDescriptor{
			Label:  h.desc.Name,
			Width:  w,
			Height: hgt,
			Format: h.desc.Format.TextureFormat(),
		})
		if err != nil {
			return &AllocationError{
				Target: h.desc.Name,
				Format: h.desc.Format.TextureFormat(),
				Width:  w,
				Height: hgt,
				Err:    err,
			}
		}
		if h.tex != nil {
			h.tex.Destroy()
		}
		h.tex = tex
		h.width = w
		h.height = hgt
		Logger().Debug("target resolved",
			slog.String("target", h.desc.Name),
			slog.Int("width", int(w)),
			slog.Int("height", int(hgt)))
	}
	r.extent = extent
	return nil
}

// Extent returns the extent of the last successful Resolve.
func (r *Registry) Extent() Extent { return r.extent }

// Lookup returns the handle for a target name. The reserved default
// surface is not in the registry.
func (r *Registry) Lookup(name string) (*TargetHandle, bool) {
	h, ok := r.handles[name]
	return h, ok
}

// Handles returns every handle in descriptor order.
func (r *Registry) Handles() []*TargetHandle {
	out := make([]*TargetHandle, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.handles[name])
	}
	return out
}

// Group returns the handles tagged with the given group, in descriptor
// order. Groups tag targets that are allocated and cleared together
// (e.g. every gbuffer attachment).
func (r *Registry) Group(group string) []*TargetHandle {
	var out []*TargetHandle
	for _, name := range r.order {
		if h := r.handles[name]; h.desc.Group == group {
			out = append(out, h)
		}
	}
	return out
}

// Release destroys every backing allocation. The default surface is
// owned by the backend and is never touched. Handles survive Release;
// a later Resolve reallocates them.
func (r *Registry) Release() {
	for _, name := range r.order {
		h := r.handles[name]
		if h.tex != nil {
			h.tex.Destroy()
			h.tex = nil
			h.width, h.height = 0, 0
		}
	}
}
