// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package headless

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
)

// init registers the headless backend on package import.
func init() {
	backend.Register(backend.BackendHeadless, func() (framegraph.Device, error) {
		return New(), nil
	})
}
