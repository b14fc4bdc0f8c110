// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend/headless"
)

// deferredUpdaters registers a hook for every tag deferred.json names.
func deferredUpdaters() *framegraph.Updaters {
	u := framegraph.NewUpdaters()
	for _, tag := range []string{"CAMERA", "SUN"} {
		u.RegisterPass(tag, func(framegraph.PassContext) {})
	}
	for _, tag := range []string{"TRANSFORM", "MATERIAL", "LIGHT"} {
		u.RegisterInstance(tag, func(framegraph.PassContext, framegraph.Drawable) {})
	}
	return u
}

func compileDeferred(t *testing.T, dev *headless.Device) *framegraph.Graph {
	t.Helper()
	doc := loadDeferred(t)
	g, err := framegraph.Compile(doc, dev, framegraph.Extent{Width: 1920, Height: 1080},
		framegraph.WithUpdaters(deferredUpdaters()))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return g
}

func TestExecuteDeferredFrame(t *testing.T) {
	dev := headless.New()
	g := compileDeferred(t, dev)
	defer g.Release()
	dev.Reset() // drop compile-time allocation events

	frame := framegraph.NewFrame()
	frame.Enqueue("MESH_STATIC", "rock", "tree", "house")
	frame.Enqueue("LIGHT_DIR", "sun")

	if err := g.Execute(context.Background(), frame); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"gbuffer", "dirlight", "copy"}
	if got := dev.PassOrder(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pass order = %v, want %v", got, want)
	}

	// gbuffer: clearing YES clears all three color outputs plus depth,
	// then one draw per enqueued mesh.
	gbuf := dev.EventsIn("gbuffer")
	var clears, draws []string
	for _, e := range gbuf {
		switch e.Op {
		case headless.OpClear:
			clears = append(clears, e.Target)
		case headless.OpDraw:
			draws = append(draws, e.Target)
		}
	}
	if want := []string{"albedo", "normal", "misc", "depth"}; !reflect.DeepEqual(clears, want) {
		t.Errorf("gbuffer clears = %v, want %v", clears, want)
	}
	if len(draws) != 3 {
		t.Errorf("gbuffer draws = %d, want 3", len(draws))
	}
}

func TestExecuteBarriers(t *testing.T) {
	dev := headless.New()
	g := compileDeferred(t, dev)
	defer g.Release()
	dev.Reset()

	if err := g.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// dirlight samples all four gbuffer targets written by gbuffer.
	barriers := make(map[string]string) // target -> writer
	for _, e := range dev.EventsIn("dirlight") {
		if e.Op == headless.OpBarrier {
			barriers[e.Target] = e.Writer
		}
	}
	for _, target := range []string{"albedo", "normal", "misc", "depth"} {
		if barriers[target] != "gbuffer" {
			t.Errorf("dirlight barrier for %q has writer %q, want gbuffer", target, barriers[target])
		}
	}

	// copy samples lightAcc written by dirlight this frame.
	copyBarriers := make(map[string]string)
	for _, e := range dev.EventsIn("copy") {
		if e.Op == headless.OpBarrier {
			copyBarriers[e.Target] = e.Writer
		}
	}
	if copyBarriers["lightAcc"] != "dirlight" {
		t.Errorf("copy barrier for lightAcc has writer %q, want dirlight", copyBarriers["lightAcc"])
	}

	// pointLight is disabled: nothing this frame may wait on it.
	for _, e := range dev.Events() {
		if e.Op == headless.OpBarrier && e.Writer == "pointLight" {
			t.Errorf("barrier %s names a disabled writer", e)
		}
	}
}

// The final pass clears the presentation surface before binding its
// inputs, and binds them in declared order.
func TestExecuteCopyPassShape(t *testing.T) {
	dev := headless.New()
	g := compileDeferred(t, dev)
	defer g.Release()
	dev.Reset()

	if err := g.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	events := dev.EventsIn("copy")
	clearIdx, firstBindIdx := -1, -1
	var binds []string
	for i, e := range events {
		switch e.Op {
		case headless.OpClear:
			clearIdx = i
		case headless.OpBindInput:
			if firstBindIdx < 0 {
				firstBindIdx = i
			}
			binds = append(binds, e.Target)
		}
	}
	if clearIdx < 0 {
		t.Fatal("copy pass recorded no clear for the default surface")
	}
	if firstBindIdx >= 0 && clearIdx > firstBindIdx {
		t.Error("default surface cleared after inputs were bound")
	}
	if want := []string{"lightAcc", "normal", "albedo", "misc"}; !reflect.DeepEqual(binds, want) {
		t.Errorf("copy binds = %v, want declared order %v", binds, want)
	}
}

// A draw failure cuts one pass short; the rest of the frame still runs
// and the failure comes back under ErrPartialFrame.
func TestExecutePassFailureIsolated(t *testing.T) {
	dev := headless.New()
	g := compileDeferred(t, dev)
	defer g.Release()
	dev.Reset()

	boom := errors.New("device lost")
	dev.FailDraw("dirlight", boom)

	frame := framegraph.NewFrame()
	frame.Enqueue("LIGHT_DIR", "sun")

	err := g.Execute(context.Background(), frame)
	if !errors.Is(err, framegraph.ErrPartialFrame) {
		t.Fatalf("Execute error = %v, want ErrPartialFrame", err)
	}
	if !errors.Is(err, boom) {
		t.Error("joined error should wrap the device failure")
	}
	if !strings.Contains(err.Error(), "dirlight") {
		t.Errorf("error %q should name the failed pass", err)
	}

	want := []string{"gbuffer", "dirlight", "copy"}
	if got := dev.PassOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("pass order = %v, want every pass attempted %v", got, want)
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	dev := headless.New()
	g := compileDeferred(t, dev)
	defer g.Release()
	dev.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Execute(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute error = %v, want context.Canceled", err)
	}
	if !strings.Contains(err.Error(), "abandoned") {
		t.Errorf("error %q should say the frame was abandoned", err)
	}
	if order := dev.PassOrder(); len(order) != 0 {
		t.Errorf("passes ran after cancellation: %v", order)
	}
}

// A pass whose program is not in the table still begins (its clear
// policy applies) but issues no draws.
func TestExecuteMissingProgram(t *testing.T) {
	doc := &framegraph.Document{
		Targets: []framegraph.TargetDesc{
			{Name: "out", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
		},
		Passes: []framegraph.PassDesc{
			{
				Name:    "orphan",
				Program: "missing",
				Batch:   "FULLSCREEN",
				Outputs: []string{"out"},
				State:   framegraph.PipelineState{Clearing: framegraph.ClearAll},
			},
		},
	}

	dev := headless.New()
	g, err := framegraph.Compile(doc, dev, framegraph.Extent{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer g.Release()
	dev.Reset()

	frame := framegraph.NewFrame()
	frame.Enqueue("FULLSCREEN", "quad")

	if err := g.Execute(context.Background(), frame); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	events := dev.EventsIn("orphan")
	sawClear, sawDraw := false, false
	for _, e := range events {
		switch e.Op {
		case headless.OpClear:
			sawClear = true
		case headless.OpDraw:
			sawDraw = true
		}
	}
	if !sawClear {
		t.Error("clear policy should apply without a program")
	}
	if sawDraw {
		t.Error("pass without a program must not draw")
	}
}

func TestFrameBatches(t *testing.T) {
	f := framegraph.NewFrame()
	f.Enqueue("LIGHT_POINT", 1, 2)
	f.Enqueue("LIGHT_POINT", 3)

	if got := f.Drawables("LIGHT_POINT"); len(got) != 3 {
		t.Errorf("Drawables = %v, want 3 entries in enqueue order", got)
	}
	if got := f.Drawables("EMPTY"); len(got) != 0 {
		t.Errorf("Drawables(EMPTY) = %v, want none", got)
	}

	f.Reset()
	if got := f.Drawables("LIGHT_POINT"); len(got) != 0 {
		t.Errorf("Drawables after Reset = %v, want none", got)
	}
}
