// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/core"
)

// ErrEmptyShaderSource is returned when a stage has no source text.
var ErrEmptyShaderSource = errors.New("wgpu: empty shader source")

// program is one compiled vertex/fragment pair. The SPIR-V words are
// cached so pipeline creation can rebuild modules after device loss.
type program struct {
	name string

	vertexSPIRV   []uint32
	fragmentSPIRV []uint32

	// Shader module IDs (stub - real wgpu handles once module creation
	// is exposed through core).
	vertexModule   core.ShaderModuleID
	fragmentModule core.ShaderModuleID

	released atomic.Bool
}

var _ framegraph.CompiledProgram = (*program)(nil)

// CompileProgram compiles one program's stage pair. Each stage's WGSL
// source is compiled to SPIR-V through naga; a stage failure is
// reported as a framegraph.CompileError naming the program and stage.
func (d *Device) CompileProgram(src framegraph.ProgramSource) (framegraph.CompiledProgram, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil, ErrNotInitialized
	}

	vertex, err := compileStage(src.VertexSource)
	if err != nil {
		return nil, &framegraph.CompileError{
			Program: src.Name,
			Stage:   framegraph.StageVertex,
			Err:     err,
		}
	}

	fragment, err := compileStage(src.FragmentSource)
	if err != nil {
		return nil, &framegraph.CompileError{
			Program: src.Name,
			Stage:   framegraph.StageFragment,
			Err:     err,
		}
	}

	// TODO: create the shader modules when core exposes them:
	//
	// vertexModule, err := core.CreateShaderModule(d.device,
	//     &gputypes.ShaderModuleDescriptor{
	//         Label:  src.Name + "_" + src.VertexName,
	//         SPIRV:  vertex,
	//     })

	d.logger.Debug("wgpu: compiled program",
		"program", src.Name, "vertex", src.VertexName, "fragment", src.FragmentName)

	return &program{
		name:          src.Name,
		vertexSPIRV:   vertex,
		fragmentSPIRV: fragment,
		// vertexModule and fragmentModule are zero (stub)
	}, nil
}

// compileStage compiles one stage's WGSL source to SPIR-V words.
func compileStage(source string) ([]uint32, error) {
	if source == "" {
		return nil, ErrEmptyShaderSource
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

func (p *program) Name() string { return p.name }

// Destroy releases the compiled modules. Safe to call twice.
func (p *program) Destroy() {
	if p.released.Swap(true) {
		return
	}
	// TODO: core.DestroyShaderModule for both modules once exposed.
	p.vertexModule = core.ShaderModuleID{}
	p.fragmentModule = core.ShaderModuleID{}
	p.vertexSPIRV = nil
	p.fragmentSPIRV = nil
}
