package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the self-hosted backend

	"github.com/gogpu/plot"
)

// OpenedDevice bundles a self-hosted device with its instance so both
// can be torn down together.
type OpenedDevice struct {
	Instance hal.Instance
	Device   hal.Device
	Queue    hal.Queue
}

// Close destroys the device and instance.
func (d *OpenedDevice) Close() {
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.Instance != nil {
		d.Instance.Destroy()
		d.Instance = nil
	}
	d.Queue = nil
}

// OpenDefaultDevice creates a Vulkan instance, picks a GPU adapter
// (discrete or integrated preferred), and opens a device on it. Used
// when the host does not inject a shared device.
func OpenDefaultDevice() (*OpenedDevice, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	plot.Logger().Info("GPU adapter selected", "name", selected.Info.Name)
	return &OpenedDevice{
		Instance: instance,
		Device:   openDev.Device,
		Queue:    openDev.Queue,
	}, nil
}

// DeviceFromProvider extracts the shared hal device and queue from a
// host-supplied provider. The provider must implement HalDevice() any
// and HalQueue() any returning hal.Device and hal.Queue.
func DeviceFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}
