// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend provides a pluggable device backend registry.
//
// Device backends are registered via init() functions and selected at
// runtime. Importing a backend package registers it:
//
//	import (
//	    _ "github.com/gogpu/framegraph/backend/headless"
//	    _ "github.com/gogpu/framegraph/backend/wgpu"
//	)
//
// Use Default() to get the best available device, or Get() to request
// a specific backend by name:
//
//	dev, err := backend.Default()
//	dev, err := backend.Get(backend.BackendHeadless)
//
// # Available Backends
//
//   - "headless": records the device call stream without GPU work;
//     always constructs, used for tests and offline inspection
//   - "wgpu": GPU execution via gogpu/wgpu
package backend
