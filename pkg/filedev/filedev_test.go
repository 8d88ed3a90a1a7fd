package filedev

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	origin   = 0x8000
	pageSize = 64
	nPages   = 3
)

func TestCreatesErasedImage(t *testing.T) {
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "flash.img")
	dev, err := Open(path, origin, pageSize, nPages)
	requireT.NoError(err)
	requireT.EqualValues(pageSize*nPages, dev.Size())

	buf := make([]byte, pageSize*nPages)
	_, err = dev.ReadAt(buf, origin)
	requireT.NoError(err)
	for _, b := range buf {
		requireT.EqualValues(0xFF, b)
	}
	requireT.NoError(dev.Close())
}

func TestWritesArePersisted(t *testing.T) {
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "flash.img")
	dev, err := Open(path, origin, pageSize, nPages)
	requireT.NoError(err)

	requireT.NoError(dev.Write(origin+pageSize, []byte{0x81, 0x00, 0xFF, 0xFF}))
	requireT.NoError(dev.Write(origin+pageSize, []byte{0x0F, 0xFF, 0xFF, 0x00}))
	requireT.False(dev.Busy())
	requireT.NoError(dev.Close())

	raw, err := os.ReadFile(path)
	requireT.NoError(err)
	requireT.Equal([]byte{0x01, 0x00, 0xFF, 0x00}, raw[pageSize:pageSize+4])

	dev, err = Open(path, origin, pageSize, nPages)
	requireT.NoError(err)
	buf := make([]byte, 4)
	_, err = dev.ReadAt(buf, origin+pageSize)
	requireT.NoError(err)
	requireT.Equal([]byte{0x01, 0x00, 0xFF, 0x00}, buf)

	requireT.NoError(dev.Erase(origin/pageSize + 1))
	_, err = dev.ReadAt(buf, origin+pageSize)
	requireT.NoError(err)
	requireT.Equal([]byte{0xFF, 0xFF, 0xFF, 0xFF}, buf)
	requireT.NoError(dev.Close())
}

func TestRangeAndAlignment(t *testing.T) {
	requireT := require.New(t)

	dev, err := Open(filepath.Join(t.TempDir(), "flash.img"), origin, pageSize, nPages)
	requireT.NoError(err)
	defer dev.Close()

	requireT.Error(dev.Write(origin+1, []byte{0x00, 0x00, 0x00, 0x00}))
	requireT.Error(dev.Write(origin, []byte{0x00}))
	requireT.Error(dev.Write(origin+pageSize*nPages, []byte{0x00, 0x00, 0x00, 0x00}))
	requireT.Error(dev.Erase(origin/pageSize + nPages))

	_, err = dev.ReadAt(make([]byte, 1), origin-1)
	requireT.Error(err)
}

func TestSizeMismatch(t *testing.T) {
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "flash.img")
	requireT.NoError(os.WriteFile(path, []byte{0x00, 0x01}, 0o600))

	_, err := Open(path, origin, pageSize, nPages)
	requireT.Error(err)

	_, err = Open(path, origin+1, pageSize, nPages)
	requireT.Error(err)
}
