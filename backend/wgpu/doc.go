// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu executes frames on a GPU through gogpu/wgpu.
//
// The device either owns its GPU resources (instance, adapter, device,
// queue) or attaches to a host application's device via
// gpucontext.DeviceProvider:
//
//	dev, err := wgpu.New()                         // standalone
//	dev, err := wgpu.New(wgpu.WithDeviceProvider(p)) // host-integrated
//
// Shader programs are WGSL, compiled to SPIR-V through gogpu/naga at
// load time. Render-target textures and pass encoding are tracked
// logically until core exposes texture and command-encoder creation;
// the remaining wiring is marked with TODO comments at each call site.
//
// Barrier is a no-op: WebGPU tracks inter-pass hazards internally.
package wgpu
