// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// ShaderLoader resolves a stage identifier from the document (e.g.
// "light.frag") to shader source text. Shader compilation itself
// belongs to the backend; the loader only fetches sources.
type ShaderLoader func(name string, stage ShaderStage) (string, error)

// NameLoader is the default loader: it returns the stage identifier
// itself as the source. Useful with backends that do not compile real
// shaders (backend/headless); real backends need a loader that reads
// actual sources.
func NameLoader(name string, _ ShaderStage) (string, error) {
	return name, nil
}

// ProgramTable maps program names to compiled shader-stage pairs; a
// pure lookup layer shared read-only by all passes.
type ProgramTable struct {
	programs map[string]CompiledProgram
	valid    bool
}

// LoadPrograms compiles every program descriptor through the device.
// A single failure does not abort loading of the others, but the table
// as a whole is invalid until all programs compile: the returned error
// joins one CompileError per failed program and Valid reports false.
func LoadPrograms(device Device, descs []ProgramDesc, loader ShaderLoader) (*ProgramTable, error) {
	if loader == nil {
		loader = NameLoader
	}
	t := &ProgramTable{
		programs: make(map[string]CompiledProgram, len(descs)),
	}
	var errs []error
	for _, desc := range descs {
		prog, err := loadProgram(device, desc, loader)
		if err != nil {
			errs = append(errs, err)
			Logger().Warn("program failed to compile",
				slog.String("program", desc.Name),
				slog.Any("error", err))
			continue
		}
		t.programs[desc.Name] = prog
	}
	t.valid = len(errs) == 0
	if !t.valid {
		return t, errors.Join(errs...)
	}
	return t, nil
}

// loadProgram fetches both stage sources and compiles one program.
// Loader and device failures both surface as CompileError carrying the
// program name and, for stage-attributable failures, the stage.
func loadProgram(device Device, desc ProgramDesc, loader ShaderLoader) (CompiledProgram, error) {
	vsrc, err := loader(desc.Vertex, StageVertex)
	if err != nil {
		return nil, &CompileError{Program: desc.Name, Stage: StageVertex, Err: err}
	}
	fsrc, err := loader(desc.Fragment, StageFragment)
	if err != nil {
		return nil, &CompileError{Program: desc.Name, Stage: StageFragment, Err: err}
	}
	prog, err := device.CompileProgram(ProgramSource{
		Name:           desc.Name,
		VertexName:     desc.Vertex,
		FragmentName:   desc.Fragment,
		VertexSource:   vsrc,
		FragmentSource: fsrc,
	})
	if err != nil {
		var ce *CompileError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, &CompileError{Program: desc.Name, Err: err}
	}
	return prog, nil
}

// Valid reports whether every program compiled. An engine must refuse
// to render from an invalid table.
func (t *ProgramTable) Valid() bool { return t.valid }

// Lookup returns the compiled program for a name. A missing program is
// not an error at execution time: the referencing pass runs with no
// draw calls.
func (t *ProgramTable) Lookup(name string) (CompiledProgram, bool) {
	p, ok := t.programs[name]
	return p, ok
}

// Len returns the number of compiled programs.
func (t *ProgramTable) Len() int { return len(t.programs) }

// Release destroys every compiled program.
func (t *ProgramTable) Release() {
	for name, p := range t.programs {
		p.Destroy()
		delete(t.programs, name)
	}
	t.valid = false
}

// String summarizes the table for logging.
func (t *ProgramTable) String() string {
	return fmt.Sprintf("programs(%d, valid=%t)", len(t.programs), t.valid)
}
