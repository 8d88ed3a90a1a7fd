package filedev

import (
	"bytes"
	"os"

	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/records"
)

const erasedByte = 0xFF

// FileDev uses memory-mapped file as a flash device. Operations complete synchronously.
type FileDev struct {
	file     *os.File
	origin   records.Address
	pageSize uint32
	data     []byte
}

// Open opens the flash image covering nPages pages starting at origin.
// If file does not exist, erased image is created.
func Open(path string, origin records.Address, pageSize, nPages uint32) (*FileDev, error) {
	if pageSize == 0 || uint32(origin)%pageSize != 0 {
		return nil, errors.Errorf("origin 0x%x is not aligned to page size %d", origin, pageSize)
	}
	size := int64(pageSize) * int64(nPages)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	fd, err := open(file, origin, pageSize, size)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return fd, nil
}

func open(file *os.File, origin records.Address, pageSize uint32, size int64) (*FileDev, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	switch info.Size() {
	case size:
	case 0:
		if _, err := file.WriteAt(bytes.Repeat([]byte{erasedByte}, int(size)), 0); err != nil {
			return nil, errors.WithStack(err)
		}
		if err := file.Sync(); err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("image size mismatch, expected: %d, actual: %d", size, info.Size())
	}

	data, err := mapFile(file, int(size))
	if err != nil {
		return nil, err
	}

	return &FileDev{
		file:     file,
		origin:   origin,
		pageSize: pageSize,
		data:     data,
	}, nil
}

// ReadAt reads data from the image.
func (fd *FileDev) ReadAt(p []byte, off int64) (int, error) {
	offset, err := fd.offset(off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, fd.data[offset:]), nil
}

// Erase erases the physical page.
func (fd *FileDev) Erase(page uint32) error {
	offset, err := fd.offset(int64(page)*int64(fd.pageSize), int(fd.pageSize))
	if err != nil {
		return err
	}
	for i := offset; i < offset+int64(fd.pageSize); i++ {
		fd.data[i] = erasedByte
	}
	return nil
}

// Write programs data. Like on NOR flash, programming may only clear bits.
func (fd *FileDev) Write(address records.Address, p []byte) error {
	if uint32(address)%records.Alignment != 0 || len(p)%records.Alignment != 0 {
		return errors.Errorf("unaligned write of %d bytes at 0x%x", len(p), address)
	}
	offset, err := fd.offset(int64(address), len(p))
	if err != nil {
		return err
	}
	for i, b := range p {
		fd.data[offset+int64(i)] &= b
	}
	return nil
}

// Busy always returns false because operations complete before returning.
func (fd *FileDev) Busy() bool {
	return false
}

// Sync flushes the image to the file.
func (fd *FileDev) Sync() error {
	return syncMapping(fd.file, fd.data)
}

// Close syncs and closes the image.
func (fd *FileDev) Close() error {
	if err := fd.Sync(); err != nil {
		return err
	}
	if err := unmapFile(fd.data); err != nil {
		return err
	}
	fd.data = nil
	return errors.WithStack(fd.file.Close())
}

// Size returns the byte size of the image.
func (fd *FileDev) Size() int64 {
	return int64(len(fd.data))
}

func (fd *FileDev) offset(address int64, n int) (int64, error) {
	offset := address - int64(fd.origin)
	if offset < 0 || n < 0 || offset+int64(n) > int64(len(fd.data)) {
		return 0, errors.Errorf("address 0x%x with length %d is out of image range", address, n)
	}
	return offset, nil
}
