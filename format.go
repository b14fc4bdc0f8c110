// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// Format is a render-target pixel format token as it appears in the
// pipeline document ("R8G8B8A8_UNORM", "D24_UNORM_S8_UINT", ...).
// Tokens use explicit channel layout and encoding; they resolve to
// [gputypes.TextureFormat] for the backend.
type Format string

// formatTable maps document tokens to backend formats. Only formats a
// deferred pipeline plausibly allocates are listed; an unknown token is
// a ConfigError at parse time.
var formatTable = map[Format]gputypes.TextureFormat{
	"R8_UNORM":            gputypes.TextureFormatR8Unorm,
	"R8G8B8A8_UNORM":      gputypes.TextureFormatRGBA8Unorm,
	"R8G8B8A8_SRGB":       gputypes.TextureFormatRGBA8UnormSrgb,
	"B8G8R8A8_UNORM":      gputypes.TextureFormatBGRA8Unorm,
	"B8G8R8A8_SRGB":       gputypes.TextureFormatBGRA8UnormSrgb,
	"R16G16B16A16_SFLOAT": gputypes.TextureFormatRGBA16Float,
	"R32G32B32A32_SFLOAT": gputypes.TextureFormatRGBA32Float,
	"R32_SFLOAT":          gputypes.TextureFormatR32Float,
	"D16_UNORM":           gputypes.TextureFormatDepth16Unorm,
	"D32_SFLOAT":          gputypes.TextureFormatDepth32Float,
	"D24_UNORM_S8_UINT":   gputypes.TextureFormatDepth24PlusStencil8,
}

// Valid reports whether the token is a known format.
func (f Format) Valid() bool {
	_, ok := formatTable[f]
	return ok
}

// TextureFormat returns the backend format for the token, or
// [gputypes.TextureFormatUndefined] for unknown tokens.
func (f Format) TextureFormat() gputypes.TextureFormat {
	tf, ok := formatTable[f]
	if !ok {
		return gputypes.TextureFormatUndefined
	}
	return tf
}

// IsDepth reports whether the format is a depth/stencil format. Depth
// formats bind only as a pass's depthStencil attachment, never as a
// color output.
func (f Format) IsDepth() bool {
	return strings.HasPrefix(string(f), "D") && f.Valid()
}

// HasStencil reports whether the format carries a stencil aspect.
func (f Format) HasStencil() bool {
	return f.IsDepth() && strings.Contains(string(f), "S8")
}
