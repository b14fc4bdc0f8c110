// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph_test

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend/headless"
)

func gbufferTargets() []framegraph.TargetDesc {
	return []framegraph.TargetDesc{
		{Name: "depth", Group: "gbuffer", Format: "D24_UNORM_S8_UINT", Width: 1, Height: 1},
		{Name: "albedo", Group: "gbuffer", Format: "R8G8B8A8_SRGB", Width: 1, Height: 1},
		{Name: "bloom", Group: "post", Format: "R16G16B16A16_SFLOAT", Width: 0.5, Height: 0.5},
	}
}

func TestRegistryResolve(t *testing.T) {
	dev := headless.New()
	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	extent := framegraph.Extent{Width: 1920, Height: 1080}
	if err := reg.Resolve(extent); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if reg.Extent() != extent {
		t.Errorf("Extent() = %v, want %v", reg.Extent(), extent)
	}

	albedo, ok := reg.Lookup("albedo")
	if !ok {
		t.Fatal("albedo not found")
	}
	if albedo.Width() != 1920 || albedo.Height() != 1080 {
		t.Errorf("albedo = %dx%d, want 1920x1080", albedo.Width(), albedo.Height())
	}
	if albedo.Texture() == nil {
		t.Error("albedo has no texture after Resolve")
	}

	// Scale factors resolve against the extent, rounded to nearest.
	bloom, _ := reg.Lookup("bloom")
	if bloom.Width() != 960 || bloom.Height() != 540 {
		t.Errorf("bloom = %dx%d, want 960x540", bloom.Width(), bloom.Height())
	}

	depth, _ := reg.Lookup("depth")
	if !depth.IsDepth() {
		t.Error("depth target not reported as depth")
	}
	if albedo.IsDepth() {
		t.Error("albedo wrongly reported as depth")
	}
}

func TestRegistryResolveIdempotent(t *testing.T) {
	dev := headless.New()
	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	extent := framegraph.Extent{Width: 1920, Height: 1080}
	if err := reg.Resolve(extent); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	before := len(dev.Events())

	// Same extent: no target changes size, nothing reallocates.
	if err := reg.Resolve(extent); err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if after := len(dev.Events()); after != before {
		t.Errorf("re-resolve recorded %d new events, want 0", after-before)
	}
}

func TestRegistryResize(t *testing.T) {
	dev := headless.New()
	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if err := reg.Resolve(framegraph.Extent{Width: 1920, Height: 1080}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := reg.Resolve(framegraph.Extent{Width: 960, Height: 540}); err != nil {
		t.Fatalf("Resolve after resize: %v", err)
	}

	albedo, _ := reg.Lookup("albedo")
	if albedo.Width() != 960 || albedo.Height() != 540 {
		t.Errorf("albedo = %dx%d, want 960x540", albedo.Width(), albedo.Height())
	}
	bloom, _ := reg.Lookup("bloom")
	if bloom.Width() != 480 || bloom.Height() != 270 {
		t.Errorf("bloom = %dx%d, want 480x270", bloom.Width(), bloom.Height())
	}

	// Reallocation must not leak: exactly one live texture per target.
	for _, label := range []string{"depth", "albedo", "bloom"} {
		if n := dev.LiveTextures(label); n != 1 {
			t.Errorf("live textures for %q = %d, want 1", label, n)
		}
	}
}

func TestRegistryZeroExtent(t *testing.T) {
	dev := headless.New()
	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := reg.Resolve(framegraph.Extent{Width: 0, Height: 1080}); !errors.Is(err, framegraph.ErrZeroExtent) {
		t.Errorf("Resolve(0x1080) = %v, want ErrZeroExtent", err)
	}
}

func TestRegistryDuplicateTarget(t *testing.T) {
	dev := headless.New()
	targets := []framegraph.TargetDesc{
		{Name: "x", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
		{Name: "x", Format: "R8G8B8A8_UNORM", Width: 1, Height: 1},
	}
	_, err := framegraph.NewRegistry(dev, targets)
	var ce *framegraph.ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("NewRegistry(dup) error = %v, want ConfigError", err)
	}
}

func TestRegistryAllocationError(t *testing.T) {
	dev := headless.New()
	boom := errors.New("out of memory")
	dev.FailCreateTexture("albedo", boom)

	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	err = reg.Resolve(framegraph.Extent{Width: 1920, Height: 1080})

	var ae *framegraph.AllocationError
	if !errors.As(err, &ae) {
		t.Fatalf("Resolve error = %v, want AllocationError", err)
	}
	if ae.Target != "albedo" {
		t.Errorf("AllocationError.Target = %q, want albedo", ae.Target)
	}
	if ae.Width != 1920 || ae.Height != 1080 {
		t.Errorf("AllocationError size = %dx%d, want 1920x1080", ae.Width, ae.Height)
	}
	if !errors.Is(err, boom) {
		t.Error("AllocationError should wrap the device error")
	}

	// Targets resolved before the failure keep their allocations.
	if depth, _ := reg.Lookup("depth"); depth.Texture() == nil {
		t.Error("depth lost its allocation on a later target's failure")
	}
}

func TestRegistryGroup(t *testing.T) {
	dev := headless.New()
	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	gbuf := reg.Group("gbuffer")
	if len(gbuf) != 2 {
		t.Fatalf("Group(gbuffer) = %d handles, want 2", len(gbuf))
	}
	// Descriptor order.
	if gbuf[0].Name() != "depth" || gbuf[1].Name() != "albedo" {
		t.Errorf("Group(gbuffer) order = [%s %s], want [depth albedo]", gbuf[0].Name(), gbuf[1].Name())
	}
	if len(reg.Group("nope")) != 0 {
		t.Error("Group(nope) should be empty")
	}
}

func TestRegistryRelease(t *testing.T) {
	dev := headless.New()
	reg, err := framegraph.NewRegistry(dev, gbufferTargets())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := reg.Resolve(framegraph.Extent{Width: 800, Height: 600}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	reg.Release()
	for _, label := range []string{"depth", "albedo", "bloom"} {
		if n := dev.LiveTextures(label); n != 0 {
			t.Errorf("live textures for %q after Release = %d, want 0", label, n)
		}
	}
	if albedo, _ := reg.Lookup("albedo"); albedo.Texture() != nil {
		t.Error("handle still holds a texture after Release")
	}

	// Handles survive Release; a later Resolve reallocates.
	if err := reg.Resolve(framegraph.Extent{Width: 800, Height: 600}); err != nil {
		t.Fatalf("Resolve after Release: %v", err)
	}
	if albedo, _ := reg.Lookup("albedo"); albedo.Texture() == nil {
		t.Error("albedo not reallocated after Release")
	}
}
