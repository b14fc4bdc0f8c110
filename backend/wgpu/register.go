// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
)

// init registers the wgpu backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() (framegraph.Device, error) {
		return New()
	})
}
