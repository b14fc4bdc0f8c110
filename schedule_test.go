// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend/headless"
)

// buildSchedule constructs a registry over the document's targets and
// schedules its passes. Allocation is not needed for scheduling, so
// the registry is left unresolved.
func buildSchedule(t *testing.T, doc *framegraph.Document) (*framegraph.Schedule, error) {
	t.Helper()
	reg, err := framegraph.NewRegistry(headless.New(), doc.Targets)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return framegraph.BuildSchedule(doc, reg)
}

func TestScheduleDeferred(t *testing.T) {
	doc := loadDeferred(t)
	sched, err := buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}

	// pointLight is disabled, so three passes remain, in dependency
	// order: gbuffer feeds dirlight, dirlight feeds copy.
	want := []string{"gbuffer", "dirlight", "copy"}
	if got := sched.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("schedule = %v, want %v", got, want)
	}
}

func TestScheduleRespectsEdges(t *testing.T) {
	doc := loadDeferred(t)
	sched, err := buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}

	pos := make(map[string]int)
	for i, name := range sched.Names() {
		pos[name] = i
	}
	for _, e := range sched.Edges {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("edge %s violated by order %v", e, sched.Names())
		}
	}
}

func TestScheduleDeterministic(t *testing.T) {
	doc := loadDeferred(t)
	first, err := buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := buildSchedule(t, doc)
		if err != nil {
			t.Fatalf("BuildSchedule: %v", err)
		}
		if !reflect.DeepEqual(first.Names(), next.Names()) {
			t.Fatalf("schedule differs across runs: %v vs %v", first.Names(), next.Names())
		}
		if !reflect.DeepEqual(first.Edges, next.Edges) {
			t.Fatalf("edges differ across runs")
		}
	}
}

// Passes with no dependency between them keep descriptor order.
func TestScheduleIndependentPassesKeepOrder(t *testing.T) {
	doc := &framegraph.Document{
		Targets: []framegraph.TargetDesc{
			{Name: "a", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
			{Name: "b", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
		},
		Passes: []framegraph.PassDesc{
			{Name: "third", Outputs: []string{"a"}},
			{Name: "first", Outputs: []string{"b"}},
			{Name: "second", Outputs: []string{"default"}},
		},
	}
	sched, err := buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	want := []string{"third", "first", "second"}
	if got := sched.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("schedule = %v, want descriptor order %v", got, want)
	}
	if len(sched.Edges) != 0 {
		t.Errorf("edges = %v, want none", sched.Edges)
	}
}

// Two writers of the same target are ordered among themselves in
// descriptor order.
func TestScheduleWriteAfterWrite(t *testing.T) {
	doc := &framegraph.Document{
		Targets: []framegraph.TargetDesc{
			{Name: "acc", Format: "R16G16B16A16_SFLOAT", Width: 1, Height: 1},
		},
		Passes: []framegraph.PassDesc{
			{Name: "clearAcc", Outputs: []string{"acc"}},
			{Name: "accumulate", Outputs: []string{"acc"}},
		},
	}
	sched, err := buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	want := []string{"clearAcc", "accumulate"}
	if got := sched.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("schedule = %v, want %v", got, want)
	}

	found := false
	for _, e := range sched.Edges {
		if e.Kind == framegraph.EdgeWriteAfterWrite && e.From == "clearAcc" && e.To == "accumulate" {
			found = true
		}
	}
	if !found {
		t.Errorf("edges = %v, want write-after-write clearAcc -> accumulate", sched.Edges)
	}
}

func TestScheduleUnknownInput(t *testing.T) {
	doc := &framegraph.Document{
		Passes: []framegraph.PassDesc{
			{
				Name:    "lighting",
				Outputs: []string{"default"},
				Inputs:  []framegraph.InputDesc{{Name: "gdepth", Sampler: "NEAREST"}},
			},
		},
	}
	_, err := buildSchedule(t, doc)
	var ue *framegraph.UnknownResourceError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnknownResourceError", err)
	}
	if ue.Pass != "lighting" || ue.Target != "gdepth" {
		t.Errorf("error names %q/%q, want lighting/gdepth", ue.Pass, ue.Target)
	}
}

// The presentation surface is only writable; sampling it mid-frame is
// a reference to an unknown resource.
func TestScheduleDefaultNotSampleable(t *testing.T) {
	doc := &framegraph.Document{
		Passes: []framegraph.PassDesc{
			{
				Name:    "post",
				Outputs: []string{"default"},
				Inputs:  []framegraph.InputDesc{{Name: "default", Sampler: "LINEAR"}},
			},
		},
	}
	_, err := buildSchedule(t, doc)
	var ue *framegraph.UnknownResourceError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnknownResourceError", err)
	}
	if ue.Target != "default" {
		t.Errorf("error target = %q, want default", ue.Target)
	}
}

func TestScheduleCycle(t *testing.T) {
	doc := &framegraph.Document{
		Targets: []framegraph.TargetDesc{
			{Name: "ping", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
			{Name: "pong", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
		},
		Passes: []framegraph.PassDesc{
			{
				Name:    "blurH",
				Outputs: []string{"ping"},
				Inputs:  []framegraph.InputDesc{{Name: "pong", Sampler: "LINEAR"}},
			},
			{
				Name:    "blurV",
				Outputs: []string{"pong"},
				Inputs:  []framegraph.InputDesc{{Name: "ping", Sampler: "LINEAR"}},
			},
		},
	}
	_, err := buildSchedule(t, doc)
	var cy *framegraph.CyclicDependencyError
	if !errors.As(err, &cy) {
		t.Fatalf("error = %v, want CyclicDependencyError", err)
	}
	if len(cy.Passes) != 2 {
		t.Fatalf("cycle members = %v, want both passes", cy.Passes)
	}
	got := map[string]bool{cy.Passes[0]: true, cy.Passes[1]: true}
	if !got["blurH"] || !got["blurV"] {
		t.Errorf("cycle members = %v, want blurH and blurV", cy.Passes)
	}
}

// Disabling a pass removes it and its edges from dependency analysis.
func TestScheduleDisabledPassExcluded(t *testing.T) {
	doc := loadDeferred(t)
	sched, err := buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	for _, name := range sched.Names() {
		if name == "pointLight" {
			t.Fatal("disabled pass appears in schedule")
		}
	}
	for _, e := range sched.Edges {
		if e.From == "pointLight" || e.To == "pointLight" {
			t.Errorf("disabled pass appears in edge %s", e)
		}
	}

	// Re-enabled, pointLight slots back in before dirlight: both
	// write lightAcc and writers keep descriptor order.
	doc.Pass("pointLight").IsDisabled = false
	defer func() { doc.Pass("pointLight").IsDisabled = true }()
	sched, err = buildSchedule(t, doc)
	if err != nil {
		t.Fatalf("BuildSchedule with pointLight enabled: %v", err)
	}
	want := []string{"gbuffer", "pointLight", "dirlight", "copy"}
	if got := sched.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("schedule = %v, want %v", got, want)
	}
}
