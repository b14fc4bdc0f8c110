// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	types "github.com/gogpu/gputypes"
)

// Device errors.
var (
	// ErrNoGPU is returned when no suitable GPU adapter is available.
	ErrNoGPU = errors.New("wgpu: no suitable GPU adapter found")

	// ErrNotInitialized is returned when the device is used before New
	// succeeded or after Close.
	ErrNotInitialized = errors.New("wgpu: device not initialized")

	// ErrPassAlreadyOpen is returned when BeginPass is called while a
	// previous pass has not been ended.
	ErrPassAlreadyOpen = errors.New("wgpu: render pass already open")

	// ErrNoOpenPass is returned when pass commands are recorded outside
	// an open pass.
	ErrNoOpenPass = errors.New("wgpu: no open render pass")

	// ErrNilEncoding is returned when BeginPass is called with nil.
	ErrNilEncoding = errors.New("wgpu: pass encoding is nil")
)

// GPUInfo contains information about the selected GPU.
type GPUInfo struct {
	// Name is the GPU name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType types.DeviceType
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend types.Backend
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Option configures a Device.
type Option func(*Device)

// WithDeviceProvider makes the Device use a GPU device owned by the
// host application instead of creating its own. The host keeps
// ownership: Close will not release a provided device.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(d *Device) { d.provider = p }
}

// WithLabel sets the debug label used for the logical device.
func WithLabel(label string) Option {
	return func(d *Device) { d.label = label }
}

// Device drives frame execution through gogpu/wgpu. It owns the GPU
// instance, adapter, device and queue unless a host device provider is
// supplied, in which case it records against the host's device.
//
// Pass recording is not safe for concurrent use; the frame executor
// serializes all calls.
type Device struct {
	mu sync.Mutex

	logger *slog.Logger
	label  string

	// GPU resources. Zero-valued when a provider supplies the device.
	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	provider gpucontext.DeviceProvider
	info     *GPUInfo

	// openPass is the name of the pass currently recording, or empty.
	openPass string

	initialized bool
}

var _ framegraph.Device = (*Device)(nil)

// New creates a Device. Without options it creates its own GPU
// instance, requests a high-performance adapter and a logical device.
// With WithDeviceProvider it attaches to the host's device instead.
func New(opts ...Option) (*Device, error) {
	d := &Device{
		logger: framegraph.Logger(),
		label:  "framegraph-device",
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.provider != nil {
		// Host integration mode: the device is received, not created.
		d.initialized = true
		d.logger.Info("wgpu: attached to host device provider")
		return d, nil
	}

	if err := d.init(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// init creates the owned GPU resources: instance, adapter, device, queue.
func (d *Device) init() error {
	d.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})

	adapterID, err := d.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	d.adapter = adapterID

	if info, err := core.GetAdapterInfo(adapterID); err == nil {
		d.info = &GPUInfo{
			Name:       info.Name,
			Vendor:     info.Vendor,
			DeviceType: info.DeviceType,
			Backend:    info.Backend,
			Driver:     info.Driver,
		}
		d.logger.Info("wgpu: GPU selected", "gpu", d.info.String(), "driver", d.info.Driver)
	}

	deviceID, err := core.RequestDevice(adapterID, &types.DeviceDescriptor{
		Label:            d.label,
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	})
	if err != nil {
		return fmt.Errorf("wgpu: device creation failed: %w", err)
	}
	d.device = deviceID

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		return fmt.Errorf("wgpu: queue retrieval failed: %w", err)
	}
	d.queue = queueID

	d.initialized = true
	return nil
}

// SetLogger sets the structured logger for this device.
func (d *Device) SetLogger(logger *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if logger != nil {
		d.logger = logger
	}
}

// Info returns information about the selected GPU, or nil when the
// device is provider-attached or adapter info was unavailable.
func (d *Device) Info() *GPUInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// Barrier records a write -> read dependency before the next pass.
//
// WebGPU tracks resource hazards internally and inserts memory
// barriers between passes on its own, so nothing is recorded here.
// The call is kept for trace symmetry with explicit-hazard backends.
func (d *Device) Barrier(b framegraph.Barrier) {
	d.logger.Debug("wgpu: barrier",
		"target", b.Target, "writer", b.Writer, "reader", b.Reader)
}

// BeginPass opens a render pass for the encoding's attachments.
func (d *Device) BeginPass(enc *framegraph.PassEncoding) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return ErrNotInitialized
	}
	if enc == nil {
		return ErrNilEncoding
	}
	if d.openPass != "" {
		return fmt.Errorf("%w: %q still recording", ErrPassAlreadyOpen, d.openPass)
	}

	// TODO: begin the real render pass once core exposes command
	// encoders for externally owned textures. The encoding maps
	// directly onto a render pass descriptor:
	//
	// desc := &gputypes.RenderPassDescriptor{Label: enc.Name}
	// for _, c := range enc.Colors {
	//     view := swapchainView // c.Texture == nil means default surface
	//     if c.Texture != nil {
	//         view = c.Texture.(*texture).viewID
	//     }
	//     desc.ColorAttachments = append(desc.ColorAttachments,
	//         gputypes.RenderPassColorAttachment{
	//             View:    view,
	//             LoadOp:  loadOpFor(enc.State),
	//             StoreOp: gputypes.StoreOpStore,
	//         })
	// }
	// pass := encoder.BeginRenderPass(desc)

	d.openPass = enc.Name
	d.logger.Debug("wgpu: begin pass", "pass", enc.Name)
	return nil
}

// BindInput binds a sampled input in the open pass.
func (d *Device) BindInput(b framegraph.InputBinding) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.openPass == "" {
		return ErrNoOpenPass
	}

	// TODO: build and set the input bind group when pass encoding is
	// wired up. Each input occupies one sampled-texture binding plus
	// the shared nearest/linear sampler selected by b.Sampler.
	d.logger.Debug("wgpu: bind input",
		"pass", d.openPass, "target", b.Target, "slot", b.Slot, "sampler", b.Sampler)
	return nil
}

// Draw dispatches one drawable in the open pass.
func (d *Device) Draw(drawable framegraph.Drawable) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.openPass == "" {
		return ErrNoOpenPass
	}

	// TODO: issue the draw through the render pass encoder. The
	// drawable's vertex/index buffers come from the application via
	// instance updaters; the device only dispatches.
	_ = drawable
	return nil
}

// EndPass closes the open render pass.
func (d *Device) EndPass() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.openPass == "" {
		return
	}
	d.logger.Debug("wgpu: end pass", "pass", d.openPass)
	d.openPass = ""
}

// Close releases owned GPU resources. A host-provided device is left
// untouched. The device must not be used after Close.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.provider != nil {
		d.provider = nil
		d.initialized = false
		return
	}

	if !d.device.IsZero() {
		if err := core.DeviceDrop(d.device); err != nil {
			d.logger.Warn("wgpu: error releasing device", "error", err)
		}
		d.device = core.DeviceID{}
	}
	if !d.adapter.IsZero() {
		if err := core.AdapterDrop(d.adapter); err != nil {
			d.logger.Warn("wgpu: error releasing adapter", "error", err)
		}
		d.adapter = core.AdapterID{}
	}

	d.instance = nil
	d.queue = core.QueueID{}
	d.info = nil
	d.initialized = false
}
