//go:build !unix

package filedev

import (
	"os"

	"github.com/pkg/errors"
)

// Without mmap the image is kept in memory and written back on sync.
func mapFile(file *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := file.ReadAt(data, 0); err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

func syncMapping(file *os.File, data []byte) error {
	if _, err := file.WriteAt(data, 0); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(file.Sync())
}

func unmapFile([]byte) error {
	return nil
}
