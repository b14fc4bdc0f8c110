// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command fginspect compiles a pipeline document and prints the
// resolved targets, the scheduled pass order, and the hazard edges the
// scheduler derived. It is a dry-run tool: no frame is executed unless
// -trace is given, in which case one empty frame runs on the headless
// backend and the recorded device call stream is printed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/backend/headless"

	_ "github.com/gogpu/framegraph/backend/wgpu"
)

func main() {
	var (
		pipeline    = flag.String("pipeline", "", "pipeline document (JSON)")
		width       = flag.Uint("width", 1920, "swapchain width")
		height      = flag.Uint("height", 1080, "swapchain height")
		backendName = flag.String("backend", backend.BackendHeadless, "device backend")
		trace       = flag.Bool("trace", false, "execute one empty frame and print the device trace")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *pipeline == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	data, err := os.ReadFile(*pipeline)
	if err != nil {
		log.Fatalf("Failed to read pipeline: %v", err)
	}

	doc, err := framegraph.Parse(data)
	if err != nil {
		log.Fatalf("Failed to parse pipeline: %v", err)
	}

	dev, err := backend.Get(*backendName)
	if err != nil {
		log.Fatalf("Failed to create %q device: %v", *backendName, err)
	}

	extent := framegraph.Extent{Width: uint32(*width), Height: uint32(*height)}
	graph, err := framegraph.Compile(doc, dev, extent, framegraph.WithUpdaters(permissiveUpdaters(doc)))
	if err != nil {
		log.Fatalf("Failed to compile pipeline: %v", err)
	}
	defer graph.Release()

	printTargets(graph.Registry())
	printSchedule(graph.Schedule())

	if *trace {
		printTrace(graph, dev)
	}
}

// permissiveUpdaters registers a no-op hook for every updater tag the
// document names, so compilation never fails on unknown tags. The tool
// inspects structure; it has no application state to update.
func permissiveUpdaters(doc *framegraph.Document) *framegraph.Updaters {
	u := framegraph.NewUpdaters()
	for _, p := range doc.Passes {
		for _, tag := range p.PerPassUpdaters {
			u.RegisterPass(tag, func(framegraph.PassContext) {})
		}
		for _, tag := range p.PerInstanceUpdaters {
			u.RegisterInstance(tag, func(framegraph.PassContext, framegraph.Drawable) {})
		}
	}
	return u
}

func printTargets(reg *framegraph.Registry) {
	fmt.Printf("Targets (%dx%d swapchain):\n", reg.Extent().Width, reg.Extent().Height)

	byGroup := make(map[string][]*framegraph.TargetHandle)
	for _, h := range reg.Handles() {
		byGroup[h.Group()] = append(byGroup[h.Group()], h)
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, g := range groups {
		name := g
		if name == "" {
			name = "(ungrouped)"
		}
		fmt.Printf("  %s:\n", name)
		for _, h := range byGroup[g] {
			kind := "color"
			if h.IsDepth() {
				kind = "depth"
			}
			fmt.Printf("    %-12s %4dx%-4d %-8v %s\n",
				h.Name(), h.Width(), h.Height(), h.Format(), kind)
		}
	}
}

func printSchedule(s *framegraph.Schedule) {
	fmt.Println("\nSchedule:")
	for i, p := range s.Passes {
		fmt.Printf("  %2d. %-12s program=%-12s batch=%s\n", i+1, p.Name, p.Program, p.Batch)
	}

	if len(s.Edges) == 0 {
		fmt.Println("\nNo hazard edges.")
		return
	}
	fmt.Println("\nHazard edges:")
	for _, e := range s.Edges {
		fmt.Printf("  %s\n", e)
	}
}

// printTrace runs one frame with no drawables and prints the device
// call stream when the selected backend records one.
func printTrace(graph *framegraph.Graph, dev framegraph.Device) {
	rec, ok := dev.(*headless.Device)
	if !ok {
		fmt.Println("\nTrace requires the headless backend.")
		return
	}

	rec.Reset()
	if err := graph.Execute(context.Background(), nil); err != nil {
		log.Fatalf("Failed to execute frame: %v", err)
	}

	fmt.Println("\nFrame trace:")
	for _, ev := range rec.Events() {
		fmt.Printf("  %s\n", ev)
	}
}
