package gpu

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoDevice is returned when no HAL backend yields a usable device.
var ErrNoDevice = errors.New("gpu: no device available")

// backendOrder ranks backends when the caller states no preference.
var backendOrder = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
	gputypes.BackendEmpty,
}

// Device is an open HAL device and its queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
	owned    bool
}

// Open opens the first usable adapter of the given backends, in order.
// With no arguments every registered backend is tried, hardware first.
// Backends register themselves when their package is imported.
func Open(backends ...gputypes.Backend) (*Device, error) {
	if len(backends) == 0 {
		backends = registeredBackends()
	}
	var errs []error
	for _, b := range backends {
		d, err := openBackend(b)
		if err == nil {
			slogger().Info("gpu device opened", "backend", b.String(), "adapter", d.info.Name)
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", b, err))
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no backend registered", ErrNoDevice)
	}
	return nil, fmt.Errorf("%w: %w", ErrNoDevice, errors.Join(errs...))
}

func registeredBackends() []gputypes.Backend {
	avail := hal.AvailableBackends()
	out := make([]gputypes.Backend, 0, len(avail))
	for _, b := range backendOrder {
		if slices.Contains(avail, b) {
			out = append(out, b)
		}
	}
	return out
}

func openBackend(variant gputypes.Backend) (*Device, error) {
	backend, ok := hal.GetBackend(variant)
	if !ok {
		return nil, errors.New("backend not registered")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no adapters")
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &Device{
		instance: instance,
		device:   open.Device,
		queue:    open.Queue,
		info:     selected.Info,
		owned:    true,
	}, nil
}

// Wrap uses an existing device and queue. Close does not destroy them.
func Wrap(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", ErrNoDevice)
	}
	return &Device{device: device, queue: queue}, nil
}

// FromProvider takes the device of a host application. The provider must
// expose its HAL handles through HalDevice() and HalQueue().
func FromProvider(p gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoDevice)
	}
	device, _ := hp.HalDevice().(hal.Device)
	queue, _ := hp.HalQueue().(hal.Queue)
	d, err := Wrap(device, queue)
	if err != nil {
		return nil, err
	}
	info := p.AdapterInfo()
	d.info.Name = info.Name
	if info.Type == gpucontext.AdapterTypeSoftware {
		d.info.DeviceType = gputypes.DeviceTypeCPU
	}
	slogger().Info("gpu device provided", "adapter", info.Name, "type", info.Type.String())
	return d, nil
}

// Name returns the adapter name.
func (d *Device) Name() string { return d.info.Name }

// Software reports whether the adapter renders on the CPU.
func (d *Device) Software() bool { return d.info.DeviceType == gputypes.DeviceTypeCPU }

// Close waits for outstanding work and releases an owned device.
func (d *Device) Close() {
	if d == nil || d.device == nil {
		return
	}
	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("gpu wait idle", "err", err)
	}
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
}
