// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides a framegraph.Device that records every
// call as an inspectable trace instead of touching a GPU.
//
// It backs the package's own tests and cmd/fginspect, and is useful to
// host applications for golden-trace testing of pipeline documents:
//
//	device := headless.New()
//	graph, err := framegraph.Compile(doc, device, extent)
//	_ = graph.Execute(ctx, frame)
//	for _, e := range device.Events() {
//		fmt.Println(e)
//	}
package headless
