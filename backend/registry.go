// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/framegraph"
)

// Backend name constants.
const (
	// BackendHeadless is the name of the recording backend used for
	// tests and offline inspection.
	BackendHeadless = "headless"
	// BackendWGPU is the name of the GPU backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// ErrBackendNotAvailable is returned when a requested backend is not
// registered or failed to construct.
var ErrBackendNotAvailable = errors.New("backend: not available")

// Factory creates a new device instance.
type Factory func() (framegraph.Device, error)

// registry holds registered device backends.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// WGPU > Headless (headless always constructs, so it is the fallback).
	priority = []string{BackendWGPU, BackendHeadless}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns a list of registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get constructs a device by backend name.
func Get(name string) (framegraph.Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return factory()
}

// Default constructs the best available device based on priority.
// Backends that fail to construct (e.g. no GPU present) are skipped.
func Default() (framegraph.Device, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var firstErr error
	for _, name := range priority {
		factory, ok := factories[name]
		if !ok {
			continue
		}
		d, err := factory()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return d, nil
	}

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, firstErr)
	}
	return nil, ErrBackendNotAvailable
}
