// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// renderTargetUsage is the usage for textures a pass both renders to
// and later samples from.
const renderTargetUsage = gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageTextureBinding

// texture is one render-target allocation.
type texture struct {
	// GPU resource IDs (stub - real wgpu handles once texture creation
	// is exposed through core).
	textureID core.TextureID
	viewID    core.TextureViewID

	width  uint32
	height uint32
	format gputypes.TextureFormat
	label  string

	released atomic.Bool
}

var _ framegraph.Texture = (*texture)(nil)

// CreateTexture allocates a render-target texture.
//
// Note: this is a stub implementation. The logical texture is tracked
// with zero-valued IDs until core exposes texture creation.
func (d *Device) CreateTexture(desc framegraph.TextureDescriptor) (framegraph.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, ErrNotInitialized
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("wgpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}

	// TODO: actual wgpu texture creation when core exposes it:
	//
	// textureID, err := core.CreateTexture(d.device, &gputypes.TextureDescriptor{
	//     Label: desc.Label,
	//     Size: gputypes.Extent3D{
	//         Width:              desc.Width,
	//         Height:             desc.Height,
	//         DepthOrArrayLayers: 1,
	//     },
	//     MipLevelCount: 1,
	//     SampleCount:   1,
	//     Dimension:     gputypes.TextureDimension2D,
	//     Format:        desc.Format,
	//     Usage:         renderTargetUsage,
	// })
	// viewID, err := core.CreateTextureView(textureID, nil)

	d.logger.Debug("wgpu: create texture",
		"label", desc.Label, "size", fmt.Sprintf("%dx%d", desc.Width, desc.Height),
		"format", desc.Format)

	return &texture{
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		label:  desc.Label,
		// textureID and viewID are zero (stub)
	}, nil
}

func (t *texture) Width() uint32                  { return t.width }
func (t *texture) Height() uint32                 { return t.height }
func (t *texture) Format() gputypes.TextureFormat { return t.format }

// Destroy releases the backing allocation. Safe to call twice.
func (t *texture) Destroy() {
	if t.released.Swap(true) {
		return
	}
	// TODO: core.DestroyTextureView(t.viewID) and
	// core.DestroyTexture(t.textureID) once exposed.
	t.textureID = core.TextureID{}
	t.viewID = core.TextureViewID{}
}
