// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"encoding/json"
	"fmt"
)

// FieldKind discriminates the forms a pipeline-state field takes in the
// document: a literal token or a structured override. The zero value is
// FieldDefault, so an absent field inherits the backend baseline.
type FieldKind uint8

const (
	// FieldDefault inherits the backend's baseline for this sub-state.
	// Inheritance is from the baseline, never from the previous pass.
	FieldDefault FieldKind = iota

	// FieldDisabled turns the sub-state off ("NO").
	FieldDisabled

	// FieldExplicit carries a structured override. The override fully
	// replaces the baseline; there is no partial merge.
	FieldExplicit
)

// StateField is a tagged variant for one pipeline-state field: the
// "DEFAULT"/"NO" tokens or an explicit override of type T. Token and
// structured forms are mutually exclusive in the document, which JSON
// guarantees (a value is either a string or an object).
type StateField[T any] struct {
	Kind  FieldKind
	Value T // valid only when Kind == FieldExplicit
}

// Explicit wraps a structured override in a StateField.
func Explicit[T any](v T) StateField[T] {
	return StateField[T]{Kind: FieldExplicit, Value: v}
}

// UnmarshalJSON accepts "DEFAULT", "NO", or an object of type T.
func (f *StateField[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var tok string
		if err := json.Unmarshal(data, &tok); err != nil {
			return err
		}
		switch tok {
		case "DEFAULT":
			f.Kind = FieldDefault
		case "NO":
			f.Kind = FieldDisabled
		default:
			return fmt.Errorf("unknown state token %q", tok)
		}
		return nil
	}
	f.Kind = FieldExplicit
	return json.Unmarshal(data, &f.Value)
}

// WriteMode is the color/depth write mask policy for a pass.
type WriteMode uint8

const (
	// WriteDefault inherits the backend baseline write mask.
	WriteDefault WriteMode = iota

	// WriteColor writes color attachments only.
	WriteColor

	// WriteDepth writes the depth attachment only.
	WriteDepth

	// WriteNone disables all attachment writes.
	WriteNone
)

var writeModeTokens = map[string]WriteMode{
	"DEFAULT": WriteDefault,
	"COLOR":   WriteColor,
	"DEPTH":   WriteDepth,
	"NO":      WriteNone,
}

func (m *WriteMode) UnmarshalJSON(data []byte) error {
	var tok string
	if err := json.Unmarshal(data, &tok); err != nil {
		return err
	}
	v, ok := writeModeTokens[tok]
	if !ok {
		return fmt.Errorf("unknown writing token %q", tok)
	}
	*m = v
	return nil
}

func (m WriteMode) String() string {
	switch m {
	case WriteColor:
		return "COLOR"
	case WriteDepth:
		return "DEPTH"
	case WriteNone:
		return "NO"
	default:
		return "DEFAULT"
	}
}

// ClearPolicy controls attachment clearing when a pass begins. The zero
// value is ClearNone.
type ClearPolicy uint8

const (
	// ClearNone clears nothing.
	ClearNone ClearPolicy = iota

	// ClearAll clears every bound attachment, color and depth/stencil.
	ClearAll

	// ClearColor clears color attachments only, preserving existing
	// depth/stencil contents. Used by passes that read depth written
	// by an earlier pass.
	ClearColor
)

var clearPolicyTokens = map[string]ClearPolicy{
	"NO":    ClearNone,
	"YES":   ClearAll,
	"COLOR": ClearColor,
}

func (p *ClearPolicy) UnmarshalJSON(data []byte) error {
	var tok string
	if err := json.Unmarshal(data, &tok); err != nil {
		return err
	}
	v, ok := clearPolicyTokens[tok]
	if !ok {
		return fmt.Errorf("unknown clearing token %q", tok)
	}
	*p = v
	return nil
}

func (p ClearPolicy) String() string {
	switch p {
	case ClearAll:
		return "YES"
	case ClearColor:
		return "COLOR"
	default:
		return "NO"
	}
}

// CompareFunc is a standard depth/stencil comparison relation.
type CompareFunc string

const (
	CompareNever          CompareFunc = "NEVER"
	CompareLess           CompareFunc = "LESS"
	CompareEqual          CompareFunc = "EQUAL"
	CompareLessOrEqual    CompareFunc = "LESS_OR_EQUAL"
	CompareGreater        CompareFunc = "GREATER"
	CompareNotEqual       CompareFunc = "NOT_EQUAL"
	CompareGreaterOrEqual CompareFunc = "GREATER_OR_EQUAL"
	CompareAlways         CompareFunc = "ALWAYS"
)

var compareFuncs = map[CompareFunc]bool{
	CompareNever: true, CompareLess: true, CompareEqual: true,
	CompareLessOrEqual: true, CompareGreater: true, CompareNotEqual: true,
	CompareGreaterOrEqual: true, CompareAlways: true,
}

// Valid reports whether the token is a standard comparison relation.
func (c CompareFunc) Valid() bool { return compareFuncs[c] }

// DepthState is an explicit depth-test override. It fully replaces the
// baseline depth state.
type DepthState struct {
	Func       CompareFunc `json:"func"`
	RangeStart float64     `json:"rangeStart"`
	RangeEnd   float64     `json:"rangeEnd"`
	Testing    bool        `json:"testing"`
	Clamping   bool        `json:"clamping"`
}

// validate checks the explicit depth block's invariants: range bounds
// in [0,1] and a standard comparison function.
func (d DepthState) validate() error {
	if !d.Func.Valid() {
		return fmt.Errorf("unknown depth func %q", string(d.Func))
	}
	if d.RangeStart < 0 || d.RangeStart > 1 || d.RangeEnd < 0 || d.RangeEnd > 1 {
		return fmt.Errorf("depth range [%g, %g] outside [0, 1]", d.RangeStart, d.RangeEnd)
	}
	return nil
}

// Rect is an explicit scissor or viewport rectangle in pixels.
type Rect struct {
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// StencilState is an explicit stencil override.
type StencilState struct {
	Func        CompareFunc `json:"func"`
	Ref         uint32      `json:"ref"`
	FailOp      string      `json:"failOp"`
	PassOp      string      `json:"passOp"`
	DepthFailOp string      `json:"depthFailOp"`
}

// FrontFace selects the winding considered front-facing.
type FrontFace string

const (
	FrontFaceCW  FrontFace = "CW"
	FrontFaceCCW FrontFace = "CCW"
)

// CullFace selects which faces are discarded.
type CullFace string

const (
	CullNone  CullFace = "NONE"
	CullFront CullFace = "FRONT"
	CullBack  CullFace = "BACK"
)

// PolygonMode selects how primitives rasterize.
type PolygonMode string

const (
	PolygonFill  PolygonMode = "FILL"
	PolygonLine  PolygonMode = "LINE"
	PolygonPoint PolygonMode = "POINT"
)

// RasterState is an explicit rasterization override.
type RasterState struct {
	FrontFace   FrontFace   `json:"frontFace"`
	CullFace    CullFace    `json:"cullFace"`
	PolygonMode PolygonMode `json:"polygonMode"`
}

func (r RasterState) validate() error {
	switch r.FrontFace {
	case FrontFaceCW, FrontFaceCCW:
	default:
		return fmt.Errorf("unknown frontFace token %q", string(r.FrontFace))
	}
	switch r.CullFace {
	case CullNone, CullFront, CullBack:
	default:
		return fmt.Errorf("unknown cullFace token %q", string(r.CullFace))
	}
	switch r.PolygonMode {
	case PolygonFill, PolygonLine, PolygonPoint:
	default:
		return fmt.Errorf("unknown polygonMode token %q", string(r.PolygonMode))
	}
	return nil
}

// BlendState is an explicit blending override.
type BlendState struct {
	SrcColor string `json:"srcColor"`
	DstColor string `json:"dstColor"`
	ColorOp  string `json:"colorOp"`
	SrcAlpha string `json:"srcAlpha"`
	DstAlpha string `json:"dstAlpha"`
	AlphaOp  string `json:"alphaOp"`
}

// PipelineState is a pass's GPU state block. Every field defaults to
// the backend baseline; explicit overrides replace the baseline
// wholesale. State never leaks between passes: the backend re-resolves
// each pass's defaults at bind time.
type PipelineState struct {
	Writing  WriteMode                `json:"writing"`
	Depth    StateField[DepthState]   `json:"depth"`
	Scissor  StateField[Rect]         `json:"scissor"`
	Viewport StateField[Rect]         `json:"viewport"`
	Stencil  StateField[StencilState] `json:"stencil"`
	Triangle StateField[RasterState]  `json:"triangle"`
	Blending StateField[BlendState]   `json:"blending"`
	Clearing ClearPolicy              `json:"clearing"`
}

// validate checks explicit override blocks for invariant violations.
func (s *PipelineState) validate() error {
	if s.Depth.Kind == FieldExplicit {
		if err := s.Depth.Value.validate(); err != nil {
			return err
		}
	}
	if s.Triangle.Kind == FieldExplicit {
		if err := s.Triangle.Value.validate(); err != nil {
			return err
		}
	}
	if s.Stencil.Kind == FieldExplicit && !s.Stencil.Value.Func.Valid() {
		return fmt.Errorf("unknown stencil func %q", string(s.Stencil.Value.Func))
	}
	return nil
}
