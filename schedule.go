// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"
)

// EdgeKind classifies a dependency edge.
type EdgeKind uint8

const (
	// EdgeReadAfterWrite orders a writer before a pass sampling its
	// output.
	EdgeReadAfterWrite EdgeKind = iota

	// EdgeWriteAfterWrite orders two writers of the same target in
	// descriptor order.
	EdgeWriteAfterWrite
)

func (k EdgeKind) String() string {
	if k == EdgeWriteAfterWrite {
		return "write-after-write"
	}
	return "read-after-write"
}

// Edge is one dependency between two passes, derived from their
// resource read/write relations. Edges are exactly the synchronization
// information a backend needs to parallelize independent passes:
// passes with no path between them may run on independent queues.
type Edge struct {
	From   string
	To     string
	Target string
	Kind   EdgeKind
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s (%s, %s)", e.From, e.To, e.Target, e.Kind)
}

// Schedule is a dependency-correct execution order over the enabled
// passes, plus the edges that produced it.
type Schedule struct {
	// Passes are the enabled passes in execution order.
	Passes []*PassDesc

	// Edges are the dependency edges, in target/descriptor order.
	Edges []Edge
}

// Names returns the scheduled pass names in execution order.
func (s *Schedule) Names() []string {
	names := make([]string, len(s.Passes))
	for i, p := range s.Passes {
		names[i] = p.Name
	}
	return names
}

// BuildSchedule topologically orders the document's enabled passes.
//
// Disabled passes are excluded from the schedule and from dependency
// analysis entirely: their outputs count as not written this frame, so
// a downstream reader samples the target's last-resolved contents (a
// stale read, not an error).
//
// An edge A -> B exists whenever A writes a target B reads. Writers of
// the same target are additionally ordered among themselves in
// descriptor order. Where no edge constrains two passes, descriptor
// order is preserved, keeping the schedule deterministic across calls.
//
// Fails with UnknownResourceError for a reference to a target absent
// from the registry (the reserved default surface is only valid as an
// output), or CyclicDependencyError naming the passes on a cycle.
func BuildSchedule(doc *Document, reg *Registry) (*Schedule, error) {
	var enabled []*PassDesc
	for i := range doc.Passes {
		if !doc.Passes[i].IsDisabled {
			enabled = append(enabled, &doc.Passes[i])
		}
	}

	for _, p := range enabled {
		for _, out := range p.writes() {
			if out == DefaultTarget {
				continue
			}
			if _, ok := reg.Lookup(out); !ok {
				return nil, &UnknownResourceError{Pass: p.Name, Target: out}
			}
		}
		for _, in := range p.Inputs {
			// The swapchain image is not sampleable mid-frame, so
			// "default" is unknown as an input.
			if _, ok := reg.Lookup(in.Name); !ok {
				return nil, &UnknownResourceError{Pass: p.Name, Target: in.Name}
			}
		}
	}

	n := len(enabled)
	index := make(map[string]int, n)
	for i, p := range enabled {
		index[p.Name] = i
	}

	// writers lists each target's enabled writer indices in descriptor
	// order; targets keeps first-written order so edge output is stable.
	writers := make(map[string][]int)
	targets := make([]string, 0)
	for i, p := range enabled {
		for _, out := range p.writes() {
			if len(writers[out]) == 0 {
				targets = append(targets, out)
			}
			writers[out] = append(writers[out], i)
		}
	}

	adj := make([]map[int]bool, n)
	indeg := make([]int, n)
	var edges []Edge
	addEdge := func(from, to int, target string, kind EdgeKind) {
		if from == to {
			return
		}
		if adj[from] == nil {
			adj[from] = make(map[int]bool)
		}
		if !adj[from][to] {
			adj[from][to] = true
			indeg[to]++
		}
		edges = append(edges, Edge{
			From:   enabled[from].Name,
			To:     enabled[to].Name,
			Target: target,
			Kind:   kind,
		})
	}

	for _, target := range targets {
		ws := writers[target]
		for _, p := range enabled {
			reads := false
			for _, in := range p.Inputs {
				if in.Name == target {
					reads = true
					break
				}
			}
			if !reads {
				continue
			}
			for _, w := range ws {
				addEdge(w, index[p.Name], target, EdgeReadAfterWrite)
			}
		}
		// Consecutive writers keep descriptor order; authors rely on
		// it for same-target clears and overwrites.
		for i := 1; i < len(ws); i++ {
			addEdge(ws[i-1], ws[i], target, EdgeWriteAfterWrite)
		}
	}

	order, err := stableTopoSort(enabled, adj, indeg)
	if err != nil {
		return nil, err
	}
	scheduled := make([]*PassDesc, n)
	for i, idx := range order {
		scheduled[i] = enabled[idx]
	}
	return &Schedule{Passes: scheduled, Edges: edges}, nil
}

// stableTopoSort is Kahn's algorithm with a deterministic tie-break:
// among ready passes, the lowest descriptor index runs first.
func stableTopoSort(enabled []*PassDesc, adj []map[int]bool, indeg []int) ([]int, error) {
	n := len(enabled)
	deg := make([]int, n)
	copy(deg, indeg)
	done := make([]bool, n)
	order := make([]int, 0, n)
	for len(order) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && deg[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &CyclicDependencyError{Passes: cycleMembers(enabled, adj, done)}
		}
		done[next] = true
		order = append(order, next)
		for to := range adj[next] {
			deg[to]--
		}
	}
	return order, nil
}

// cycleMembers narrows the unscheduled remainder down to the passes
// actually on a cycle by repeatedly stripping nodes with no remaining
// predecessor or successor.
func cycleMembers(enabled []*PassDesc, adj []map[int]bool, done []bool) []string {
	n := len(enabled)
	remain := make(map[int]bool)
	for i := 0; i < n; i++ {
		if !done[i] {
			remain[i] = true
		}
	}
	for {
		removed := false
		for i := range remain {
			hasPred, hasSucc := false, false
			for j := range remain {
				if adj[j][i] {
					hasPred = true
				}
				if adj[i][j] {
					hasSucc = true
				}
			}
			if !hasPred || !hasSucc {
				delete(remain, i)
				removed = true
			}
		}
		if !removed {
			break
		}
	}
	var names []string
	for i := 0; i < n; i++ {
		if remain[i] {
			names = append(names, enabled[i].Name)
		}
	}
	return names
}
