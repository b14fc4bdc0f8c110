// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"encoding/json"
	"fmt"
)

// SamplerMode is the filtering mode attached to an input binding. It is
// purely descriptive; the backend resolves it into an API-level sampler
// object.
type SamplerMode string

const (
	SamplerLinear  SamplerMode = "LINEAR"
	SamplerNearest SamplerMode = "NEAREST"
)

// Valid reports whether the token is a known sampler mode.
func (m SamplerMode) Valid() bool {
	return m == SamplerLinear || m == SamplerNearest
}

// BatchTag labels which drawables a pass iterates ("MESH_STATIC",
// "LIGHT_DIR", "FULLSCREEN", ...). Tags are an open set: a tag with no
// drawables this frame is legal and yields zero draws.
type BatchTag string

// TargetDesc describes one render target. Width and Height are
// multiplicative scale factors against the active viewport extent
// (1.0 = full resolution).
type TargetDesc struct {
	Name   string  `json:"name"`
	Group  string  `json:"group"`
	Format Format  `json:"format"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ProgramDesc names a program and its stage sources. The stage strings
// are identifiers resolved by an external shader loader.
type ProgramDesc struct {
	Name     string `json:"name"`
	Vertex   string `json:"vertex"`
	Fragment string `json:"fragment"`
}

// InputDesc binds one sampled target for a pass.
type InputDesc struct {
	Name    string      `json:"name"`
	Sampler SamplerMode `json:"sampler"`
}

// PassDesc describes one pass: the program it runs, the batch of
// drawables it iterates, the targets it writes and samples, its
// updater hooks, and its pipeline state.
type PassDesc struct {
	Name                string        `json:"name"`
	Program             string        `json:"program"`
	Batch               BatchTag      `json:"batch"`
	DepthStencil        string        `json:"depthStencil,omitempty"`
	Outputs             []string      `json:"outputs"`
	Inputs              []InputDesc   `json:"inputs"`
	PerInstanceUpdaters []string      `json:"perInstanceUpdaters"`
	PerPassUpdaters     []string      `json:"perPassUpdaters"`
	State               PipelineState `json:"state"`
	IsDisabled          bool          `json:"isDisabled,omitempty"`
}

// writes returns the target names this pass writes: outputs plus the
// depth/stencil binding.
func (p *PassDesc) writes() []string {
	w := make([]string, 0, len(p.Outputs)+1)
	w = append(w, p.Outputs...)
	if p.DepthStencil != "" {
		w = append(w, p.DepthStencil)
	}
	return w
}

// Document is the parsed render-pipeline description: the wire format
// between content authoring and the executor.
type Document struct {
	Targets  []TargetDesc  `json:"targets"`
	Programs []ProgramDesc `json:"programs"`
	Passes   []PassDesc    `json:"passes"`
}

// Parse decodes and validates a pipeline document. Decode failures and
// structural violations are reported as ConfigError: the whole document
// is rejected and nothing renders until it is fixed.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, configErrorf("decode: %v", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document's structural invariants: unique names,
// known enum tokens, depth formats never bound as color outputs, and no
// target bound as both an output and the depth/stencil of one pass.
//
// Target references are not resolved here; unknown target names
// surface as UnknownResourceError at schedule-build time.
func (d *Document) Validate() error {
	targets := make(map[string]*TargetDesc, len(d.Targets))
	for i := range d.Targets {
		t := &d.Targets[i]
		if t.Name == "" {
			return configErrorf("target %d has no name", i)
		}
		if t.Name == DefaultTarget {
			return configErrorf("target name %q is reserved for the presentation surface", DefaultTarget)
		}
		if _, dup := targets[t.Name]; dup {
			return configErrorf("duplicate target name %q", t.Name)
		}
		if !t.Format.Valid() {
			return configErrorf("target %q: unknown format token %q", t.Name, string(t.Format))
		}
		if t.Width <= 0 || t.Height <= 0 {
			return configErrorf("target %q: non-positive scale %gx%g", t.Name, t.Width, t.Height)
		}
		targets[t.Name] = t
	}

	programs := make(map[string]bool, len(d.Programs))
	for i := range d.Programs {
		p := &d.Programs[i]
		if p.Name == "" {
			return configErrorf("program %d has no name", i)
		}
		if programs[p.Name] {
			return configErrorf("duplicate program name %q", p.Name)
		}
		if p.Vertex == "" || p.Fragment == "" {
			return configErrorf("program %q: missing vertex or fragment stage", p.Name)
		}
		programs[p.Name] = true
	}

	passes := make(map[string]bool, len(d.Passes))
	for i := range d.Passes {
		p := &d.Passes[i]
		if p.Name == "" {
			return configErrorf("pass %d has no name", i)
		}
		if passes[p.Name] {
			return configErrorf("duplicate pass name %q", p.Name)
		}
		passes[p.Name] = true

		for _, out := range p.Outputs {
			if out == p.DepthStencil {
				return configErrorf("pass %q: target %q bound as both output and depthStencil", p.Name, out)
			}
			// Depth formats never bind as color outputs. Only targets
			// known to the document are checked; unknown names are the
			// scheduler's concern.
			if t, ok := targets[out]; ok && t.Format.IsDepth() {
				return configErrorf("pass %q: depth-format target %q bound as color output", p.Name, out)
			}
		}
		if p.DepthStencil == DefaultTarget {
			return configErrorf("pass %q: %q is not a depth/stencil target", p.Name, DefaultTarget)
		}
		if t, ok := targets[p.DepthStencil]; ok && !t.Format.IsDepth() {
			return configErrorf("pass %q: non-depth target %q bound as depthStencil", p.Name, p.DepthStencil)
		}
		for _, in := range p.Inputs {
			if !in.Sampler.Valid() {
				return configErrorf("pass %q: input %q: unknown sampler token %q", p.Name, in.Name, string(in.Sampler))
			}
		}
		if err := p.State.validate(); err != nil {
			return configErrorf("pass %q: %v", p.Name, err)
		}
	}
	return nil
}

// Pass returns the pass descriptor with the given name, or nil.
func (d *Document) Pass(name string) *PassDesc {
	for i := range d.Passes {
		if d.Passes[i].Name == name {
			return &d.Passes[i]
		}
	}
	return nil
}

// String summarizes the document for logging.
func (d *Document) String() string {
	return fmt.Sprintf("pipeline(%d targets, %d programs, %d passes)",
		len(d.Targets), len(d.Programs), len(d.Passes))
}
