// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"github.com/gogpu/gputypes"
)

// DefaultTarget is the reserved output name for the presentation
// surface (swapchain/back buffer). It bypasses the Registry: the
// backend owns the surface and the Registry never allocates or
// releases it.
const DefaultTarget = "default"

// Extent is a viewport/swapchain size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// TextureDescriptor describes a target allocation request.
type TextureDescriptor struct {
	// Label is the target name, used for debug labeling.
	Label string

	// Width and Height are absolute pixel dimensions, already resolved
	// from the document's scale factors.
	Width  uint32
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat
}

// Texture is a backend allocation for one render target. Passes never
// hold a Texture directly; they go through the Registry's handles so a
// reallocation on resize does not invalidate compiled passes.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases the backing allocation.
	Destroy()
}

// ShaderStage identifies one stage of a program.
type ShaderStage string

const (
	StageVertex   ShaderStage = "vertex"
	StageFragment ShaderStage = "fragment"
)

// ProgramSource carries one program's stage sources to the backend.
type ProgramSource struct {
	// Name is the program name from the document.
	Name string

	// VertexName and FragmentName are the stage identifiers from the
	// document, resolved to source text by the shader loader.
	VertexName   string
	FragmentName string

	// VertexSource and FragmentSource are the loaded source text.
	VertexSource   string
	FragmentSource string
}

// CompiledProgram is a backend-compiled shader program, shared
// read-only by every pass that references it.
type CompiledProgram interface {
	// Name returns the program name.
	Name() string

	// Destroy releases the compiled program.
	Destroy()
}

// ColorAttachment binds one color output for a pass. Texture is nil
// when Target is the reserved default surface; the backend resolves it
// to the current swapchain image.
type ColorAttachment struct {
	Target  string
	Texture Texture
}

// DepthAttachment binds the depth/stencil output for a pass.
type DepthAttachment struct {
	Target  string
	Texture Texture
}

// PassEncoding carries everything the backend needs to open a pass:
// render destinations, pipeline state, and the program. Program may be
// nil when the program table has no entry for the pass's program name;
// the pass then runs without draws but its clear policy still applies.
type PassEncoding struct {
	Name         string
	Program      CompiledProgram
	Colors       []ColorAttachment
	DepthStencil *DepthAttachment

	// State is the pass's pipeline state block. Default sub-states
	// resolve against the backend's baseline, never against the
	// previous pass's state.
	State *PipelineState
}

// InputBinding binds one sampled input for the open pass.
type InputBinding struct {
	// Slot is the binding position, following the pass's declared
	// input order.
	Slot int

	// Target is the sampled target's name.
	Target string

	// Texture is the registry's current allocation for Target.
	Texture Texture

	// Sampler is the declared filtering mode.
	Sampler SamplerMode
}

// Barrier tells the backend that Reader samples a target written by
// Writer earlier in the frame, and must observe the completed write.
type Barrier struct {
	Target string
	Writer string
	Reader string
}

// Drawable is one unit of GPU work selected by a batch tag. The
// executor treats it as opaque: it is handed to per-instance updaters
// and then to the Device.
type Drawable any

// Device is the GPU abstraction the frame executor drives. Implemented
// under backend/; tests use backend/headless.
//
// Pass recording follows a strict shape per scheduled pass:
// zero or more Barrier calls, BeginPass, BindInput per input,
// Draw per drawable, EndPass. Compilation and allocation happen only
// outside the per-frame path.
type Device interface {
	// CreateTexture allocates a render-target texture.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// CompileProgram compiles one program's stage pair.
	CompileProgram(src ProgramSource) (CompiledProgram, error)

	// Barrier records a write -> read dependency before the next pass.
	Barrier(b Barrier)

	// BeginPass binds the encoding's attachments, applies its clear
	// policy and pipeline state, and opens the pass for drawing.
	BeginPass(enc *PassEncoding) error

	// BindInput binds a sampled input in the open pass.
	BindInput(b InputBinding) error

	// Draw dispatches one drawable in the open pass.
	Draw(d Drawable) error

	// EndPass closes the open pass.
	EndPass()
}
