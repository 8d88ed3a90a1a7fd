//go:build unix

package filedev

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func mapFile(file *os.File, size int) ([]byte, error) {
	data, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %s failed", file.Name())
	}
	return data, nil
}

func syncMapping(_ *os.File, data []byte) error {
	return errors.WithStack(unix.Msync(data, unix.MS_SYNC))
}

func unmapFile(data []byte) error {
	return errors.WithStack(unix.Munmap(data))
}
