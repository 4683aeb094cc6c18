package simt

import (
	"runtime"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Client manages the emulated devices of this process: it enumerates them at
// creation and owns their execution streams until destroyed.
type Client struct {
	devices   []*Device
	destroyed bool
}

// NewClient creates a Client and enumerates the available devices.
//
// The emulation exposes exactly one device backed by the host cores. Device
// identity and clock rate are fixed at enumeration time and immutable for the
// life of the client.
func NewClient() (*Client, error) {
	c := &Client{}
	c.devices = []*Device{newDevice(0, runtime.NumCPU())}
	klog.V(1).Infof("simt.NewClient: %d device(s) enumerated", len(c.devices))
	return c, nil
}

// Devices returns the devices owned by the client.
func (c *Client) Devices() []*Device {
	return c.devices
}

// Device returns the device at the given index, or an error if the index does
// not name an enumerated device.
func (c *Client) Device(index int) (*Device, error) {
	if c.destroyed {
		return nil, errors.Errorf("simt.Client already destroyed")
	}
	if index < 0 || index >= len(c.devices) {
		return nil, errors.Errorf("device index %d out of range: client has %d device(s)", index, len(c.devices))
	}
	return c.devices[index], nil
}

// Destroy stops the devices' execution streams and invalidates the client.
// Outstanding launches are drained first.
func (c *Client) Destroy() error {
	if c == nil || c.destroyed {
		// Already destroyed, no-op.
		return nil
	}
	c.destroyed = true
	var firstErr error
	for _, d := range c.devices {
		if err := d.shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
