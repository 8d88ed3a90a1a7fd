package persistence

import (
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/records"
)

// Dev is the interface required from the flash device.
// Erase and Write only start the operation, completion is reported by Busy returning false.
type Dev interface {
	io.ReaderAt

	// Erase sets all the bytes of the physical page to 0xFF.
	Erase(page uint32) error

	// Write programs bytes starting at address. Both address and length must be word-aligned.
	Write(address records.Address, p []byte) error

	// Busy returns true if operation is still in progress.
	Busy() bool
}

// ErrTimeout is returned if device does not complete the operation in time.
var ErrTimeout = errors.New("device operation timed out")

// Waiter blocks until the device completes the operation in progress.
type Waiter interface {
	Wait(dev Dev) error
}

// WaiterFunc adapts function to the Waiter interface.
type WaiterFunc func(dev Dev) error

// Wait calls the function.
func (f WaiterFunc) Wait(dev Dev) error {
	return f(dev)
}

// PollWaiter waits by polling the busy flag of the device.
type PollWaiter struct {
	// Interval is the time between two consecutive polls. Zero means polling without sleeping.
	Interval time.Duration

	// Timeout is the maximum time of waiting. Zero means waiting forever.
	Timeout time.Duration
}

// Wait waits until device is not busy.
func (w PollWaiter) Wait(dev Dev) error {
	var deadline time.Time
	if w.Timeout > 0 {
		deadline = time.Now().Add(w.Timeout)
	}

	for dev.Busy() {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return errors.WithStack(ErrTimeout)
		}
		if w.Interval > 0 {
			time.Sleep(w.Interval)
		}
	}
	return nil
}
