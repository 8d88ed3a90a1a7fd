package memdev

import (
	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/records"
)

var (
	// ErrBusy is returned if operation is requested before the previous one completes.
	ErrBusy = errors.New("device is busy")

	// ErrOutOfRange is returned if operation touches addresses not backed by the device.
	ErrOutOfRange = errors.New("address out of range")

	// ErrUnaligned is returned if write is not word-aligned.
	ErrUnaligned = errors.New("unaligned write")
)

const erasedByte = 0xFF

// MemDev simulates NOR flash in memory. Erase sets bytes to 0xFF, write may only clear bits.
type MemDev struct {
	origin    records.Address
	pageSize  uint32
	data      []byte
	busyPolls int
	pending   int

	erases int
	writes int
}

// New returns new memdev covering nPages pages starting at origin. Memory starts erased.
func New(origin records.Address, pageSize, nPages uint32) *MemDev {
	if pageSize == 0 || uint32(origin)%pageSize != 0 {
		panic(errors.Errorf("origin 0x%x is not aligned to page size %d", origin, pageSize))
	}

	data := make([]byte, pageSize*nPages)
	for i := range data {
		data[i] = erasedByte
	}
	return &MemDev{
		origin:   origin,
		pageSize: pageSize,
		data:     data,
	}
}

// WithBusyPolls causes device to report busy state for n polls after each operation.
func (md *MemDev) WithBusyPolls(n int) *MemDev {
	md.busyPolls = n
	return md
}

// ReadAt reads data from the memdev.
func (md *MemDev) ReadAt(p []byte, off int64) (int, error) {
	offset, err := md.offset(off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, md.data[offset:]), nil
}

// Erase erases the physical page.
func (md *MemDev) Erase(page uint32) error {
	if md.pending > 0 {
		return errors.WithStack(ErrBusy)
	}
	offset, err := md.offset(int64(page)*int64(md.pageSize), int(md.pageSize))
	if err != nil {
		return err
	}

	for i := offset; i < offset+int64(md.pageSize); i++ {
		md.data[i] = erasedByte
	}
	md.erases++
	md.pending = md.busyPolls
	return nil
}

// Write programs data. Programming may only clear bits, like on real NOR flash.
func (md *MemDev) Write(address records.Address, p []byte) error {
	if md.pending > 0 {
		return errors.WithStack(ErrBusy)
	}
	if uint32(address)%records.Alignment != 0 || len(p)%records.Alignment != 0 {
		return errors.Wrapf(ErrUnaligned, "address: 0x%x, length: %d", address, len(p))
	}
	offset, err := md.offset(int64(address), len(p))
	if err != nil {
		return err
	}

	for i, b := range p {
		md.data[offset+int64(i)] &= b
	}
	md.writes++
	md.pending = md.busyPolls
	return nil
}

// Busy returns true if operation is still in progress.
func (md *MemDev) Busy() bool {
	if md.pending == 0 {
		return false
	}
	md.pending--
	return true
}

// Set overwrites bytes ignoring flash semantics. It is used to simulate corruption.
func (md *MemDev) Set(address records.Address, p []byte) error {
	offset, err := md.offset(int64(address), len(p))
	if err != nil {
		return err
	}
	copy(md.data[offset:], p)
	return nil
}

// Erases returns the number of erase operations executed so far.
func (md *MemDev) Erases() int {
	return md.erases
}

// Writes returns the number of write operations executed so far.
func (md *MemDev) Writes() int {
	return md.writes
}

func (md *MemDev) offset(address int64, n int) (int64, error) {
	offset := address - int64(md.origin)
	if offset < 0 || n < 0 || offset+int64(n) > int64(len(md.data)) {
		return 0, errors.Wrapf(ErrOutOfRange, "address: 0x%x, length: %d", address, n)
	}
	return offset, nil
}
