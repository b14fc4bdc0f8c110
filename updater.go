// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"sync"
)

// PassContext is what a per-pass updater sees: the pass being recorded,
// the device to push uniform state into, and the frame's viewport.
type PassContext struct {
	Pass       *Pass
	Device     Device
	Extent     Extent
	FrameIndex uint64
}

// PassUpdater pushes per-pass uniform data (camera, frustum, ...)
// before any drawable is issued. Updaters mutate uniform state through
// the device; they return nothing.
type PassUpdater func(pc PassContext)

// InstanceUpdater pushes per-drawable uniform data (transforms,
// material indices, ...) before that drawable's draw call.
type InstanceUpdater func(pc PassContext, d Drawable)

// Updaters maps named capability tags from the document
// (perPassUpdaters, perInstanceUpdaters) to registered hook functions.
// Tags are looked up at compile time: an unknown tag is a ConfigError,
// never a silent no-op.
//
// Updaters is safe for concurrent registration and lookup.
type Updaters struct {
	mu       sync.RWMutex
	pass     map[string]PassUpdater
	instance map[string]InstanceUpdater
}

// NewUpdaters creates an empty updater registry.
func NewUpdaters() *Updaters {
	return &Updaters{
		pass:     make(map[string]PassUpdater),
		instance: make(map[string]InstanceUpdater),
	}
}

// RegisterPass registers a per-pass hook under a tag. Registering an
// existing tag replaces the previous hook.
func (u *Updaters) RegisterPass(tag string, fn PassUpdater) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pass[tag] = fn
}

// RegisterInstance registers a per-instance hook under a tag.
func (u *Updaters) RegisterInstance(tag string, fn InstanceUpdater) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.instance[tag] = fn
}

// passHooks resolves a pass's perPassUpdaters tags. Unknown tags fail
// with ConfigError naming the pass and tag.
func (u *Updaters) passHooks(pass string, tags []string) ([]PassUpdater, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	hooks := make([]PassUpdater, 0, len(tags))
	for _, tag := range tags {
		fn, ok := u.pass[tag]
		if !ok {
			return nil, configErrorf("pass %q: unknown per-pass updater tag %q", pass, tag)
		}
		hooks = append(hooks, fn)
	}
	return hooks, nil
}

// instanceHooks resolves a pass's perInstanceUpdaters tags.
func (u *Updaters) instanceHooks(pass string, tags []string) ([]InstanceUpdater, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	hooks := make([]InstanceUpdater, 0, len(tags))
	for _, tag := range tags {
		fn, ok := u.instance[tag]
		if !ok {
			return nil, configErrorf("pass %q: unknown per-instance updater tag %q", pass, tag)
		}
		hooks = append(hooks, fn)
	}
	return hooks, nil
}
