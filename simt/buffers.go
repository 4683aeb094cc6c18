package simt

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Buffer is a device-owned float32 array. It is created from (or mirrored to)
// a host slice and must be destroyed on the success path; abandoning buffers
// on a fatal error is acceptable, process termination reclaims them.
type Buffer struct {
	device *Device
	data   []float32
}

var buffersAlive atomic.Int64

// BuffersAlive returns the number of device buffers currently allocated and
// not yet destroyed.
func BuffersAlive() int64 {
	return buffersAlive.Load()
}

// NewBuffer allocates an uninitialized device buffer of n float32 elements.
func NewBuffer(dev *Device, n int) (*Buffer, error) {
	if dev == nil {
		return nil, errors.Errorf("NewBuffer: nil device")
	}
	if n <= 0 {
		return nil, errors.Errorf("NewBuffer on device #%d: length must be positive, got %d", dev.index, n)
	}
	buffersAlive.Add(1)
	return &Buffer{device: dev, data: make([]float32, n)}, nil
}

// BufferFromHost allocates a device buffer and copies the host values into it
// (host→device transfer). The host slice is not retained.
func BufferFromHost(dev *Device, values []float32) (*Buffer, error) {
	b, err := NewBuffer(dev, len(values))
	if err != nil {
		return nil, err
	}
	copy(b.data, values)
	return b, nil
}

// Len returns the number of elements in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Float32s returns the device-memory view of the buffer, for kernels to read
// and write their per-lane slots. It is invalid after Destroy.
func (b *Buffer) Float32s() []float32 {
	return b.data
}

// ToHost copies the buffer contents to the host slice (device→host transfer).
// dst must have exactly the buffer's length.
func (b *Buffer) ToHost(dst []float32) error {
	if b.data == nil {
		return errors.Errorf("Buffer.ToHost: buffer already destroyed")
	}
	if len(dst) != len(b.data) {
		return errors.Errorf("Buffer.ToHost: destination holds %d elements, buffer holds %d", len(dst), len(b.data))
	}
	copy(dst, b.data)
	return nil
}

// Destroy releases the device memory. Destroying an already destroyed buffer
// is a no-op.
func (b *Buffer) Destroy() error {
	if b == nil || b.data == nil {
		return nil
	}
	b.data = nil
	b.device = nil
	buffersAlive.Add(-1)
	return nil
}
