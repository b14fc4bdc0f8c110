// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend_test

import (
	"errors"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/backend/headless"
)

func TestHeadlessRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendHeadless) {
		t.Fatalf("headless backend not registered")
	}

	found := false
	for _, name := range backend.Available() {
		if name == backend.BackendHeadless {
			found = true
		}
	}
	if !found {
		t.Errorf("Available() = %v, want to contain %q", backend.Available(), backend.BackendHeadless)
	}
}

func TestGet(t *testing.T) {
	dev, err := backend.Get(backend.BackendHeadless)
	if err != nil {
		t.Fatalf("Get(headless) error: %v", err)
	}
	if dev == nil {
		t.Fatal("Get(headless) returned nil device")
	}
}

func TestGetUnknown(t *testing.T) {
	_, err := backend.Get("no-such-backend")
	if !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("Get(unknown) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestRegisterUnregister(t *testing.T) {
	const name = "test-backend"

	backend.Register(name, func() (framegraph.Device, error) {
		return headless.New(), nil
	})
	if !backend.IsRegistered(name) {
		t.Fatalf("backend %q not registered after Register", name)
	}

	backend.Unregister(name)
	if backend.IsRegistered(name) {
		t.Errorf("backend %q still registered after Unregister", name)
	}
}

func TestDefault(t *testing.T) {
	// Headless always constructs, so Default must succeed even when
	// no GPU backend is present.
	dev, err := backend.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if dev == nil {
		t.Fatal("Default() returned nil device")
	}
}
