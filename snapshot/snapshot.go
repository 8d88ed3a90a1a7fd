package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/records"
)

// Image layout:
// | magic(8) | base(4) | page size(4) | pages(4) | page bytes... | xxhash of each page(8)... |
// All the integers are little endian.

const headerSize = 8 + 3*4

var magic = [8]byte{'F', 'L', 'S', 'H', 'I', 'M', 'G', '1'}

// ErrCorrupted is returned if image can't be decoded or any page digest does not match.
var ErrCorrupted = errors.New("snapshot is corrupted")

// Encode returns the image of all the data pages.
func Encode(ps *persistence.Store) ([]byte, error) {
	geometry := ps.Geometry()
	pagesSize := int(geometry.Pages) * int(geometry.PageSize)

	buf := make([]byte, headerSize, headerSize+pagesSize+int(geometry.Pages)*8)
	copy(buf, magic[:])
	binary.LittleEndian.PutUint32(buf[8:], uint32(geometry.Base))
	binary.LittleEndian.PutUint32(buf[12:], geometry.PageSize)
	binary.LittleEndian.PutUint32(buf[16:], geometry.Pages)

	buf = buf[:headerSize+pagesSize]
	if err := ps.Read(geometry.Base, buf[headerSize:]); err != nil {
		return nil, err
	}

	for page := uint32(0); page < geometry.Pages; page++ {
		offset := headerSize + int(page*geometry.PageSize)
		buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf[offset:offset+int(geometry.PageSize)]))
	}
	return buf, nil
}

// Decode verifies the image against geometry and returns the content of each page.
func Decode(data []byte, geometry persistence.Geometry) ([][]byte, error) {
	if len(data) < headerSize || !bytes.Equal(data[:8], magic[:]) {
		return nil, errors.Wrap(ErrCorrupted, "invalid header")
	}
	imageGeometry := persistence.Geometry{
		Base:     records.Address(binary.LittleEndian.Uint32(data[8:])),
		PageSize: binary.LittleEndian.Uint32(data[12:]),
		Pages:    binary.LittleEndian.Uint32(data[16:]),
	}
	if imageGeometry != geometry {
		return nil, errors.Errorf("geometry mismatch, image: %+v, store: %+v", imageGeometry, geometry)
	}

	pageSize := int(geometry.PageSize)
	digestsOffset := headerSize + int(geometry.Pages)*pageSize
	if len(data) != digestsOffset+int(geometry.Pages)*8 {
		return nil, errors.Wrapf(ErrCorrupted, "invalid size %d", len(data))
	}

	pages := make([][]byte, 0, geometry.Pages)
	for page := 0; page < int(geometry.Pages); page++ {
		content := data[headerSize+page*pageSize : headerSize+(page+1)*pageSize]
		digest := binary.LittleEndian.Uint64(data[digestsOffset+page*8:])
		if xxhash.Sum64(content) != digest {
			return nil, errors.Wrapf(ErrCorrupted, "digest mismatch for page %d", page)
		}
		pages = append(pages, content)
	}
	return pages, nil
}

// Restore erases all the data pages and programs them with the image content.
func Restore(ps *persistence.Store, data []byte) error {
	pages, err := Decode(data, ps.Geometry())
	if err != nil {
		return err
	}

	for i, content := range pages {
		page := persistence.PageIndex(i)
		start, err := ps.Geometry().PageAddress(page)
		if err != nil {
			return err
		}
		if err := ps.ErasePage(page); err != nil {
			return err
		}
		if err := ps.Write(start, content); err != nil {
			return err
		}
	}
	return nil
}

// Export uploads image of the store to URL.
func Export(ctx context.Context, fs afs.Service, ps *persistence.Store, URL string) error {
	data, err := Encode(ps)
	if err != nil {
		return err
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "uploading snapshot to %s failed", URL)
	}
	return nil
}

// Import downloads image from URL and restores it to the store.
func Import(ctx context.Context, fs afs.Service, ps *persistence.Store, URL string) error {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return errors.Wrapf(err, "downloading snapshot from %s failed", URL)
	}
	return Restore(ps, data)
}
