package recordstore

import (
	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/records"
)

// Append writes the record at the first free address of the page.
// If record does not fit, the page is formatted and all the previous records stored there are lost.
func (s *Store) Append(page persistence.PageIndex, header records.Header, payload []byte) (Record, error) {
	if header.Type == records.NoneType || header.Type == records.PageInfoType || header.State == records.NoneState {
		return Record{}, errors.Errorf("record header %+v is reserved", header)
	}
	if header.Length%records.Alignment != 0 {
		return Record{}, errors.Errorf("record length %d is not aligned", header.Length)
	}
	if len(payload) > int(header.Length) {
		return Record{}, errors.Errorf("payload of %d bytes exceeds record length %d", len(payload), header.Length)
	}

	geometry := s.ps.Geometry()
	start, err := geometry.PageAddress(page)
	if err != nil {
		return Record{}, err
	}
	end := start + records.Address(geometry.PageSize)

	// Record not fitting into freshly formatted page is rejected before anything is destroyed.
	if uint64(records.HeaderSize)+uint64(header.Size()) > uint64(geometry.PageSize) {
		return Record{}, errors.Wrapf(ErrBeyondPage, "record of %d bytes, page size: %d", header.Size(), geometry.PageSize)
	}

	target, err := s.FindFree(page)
	switch {
	case errors.Is(err, ErrCorruptChain):
		target = end
	case err != nil:
		return Record{}, err
	}

	fits := uint64(target)+uint64(header.Size()) <= uint64(end)
	if fits {
		// Payload left behind by an interrupted append can't be programmed over.
		if fits, err = s.erased(target, header.Size()); err != nil {
			return Record{}, err
		}
	}
	if !fits {
		if err := s.ps.FormatPage(page); err != nil {
			return Record{}, err
		}
		target = start + records.HeaderSize
		if uint64(target)+uint64(header.Size()) > uint64(end) {
			return Record{}, errors.WithStack(ErrBeyondPage)
		}
	}

	// Header is written last, record does not exist until it is committed.
	r := Record{Address: target, Header: header}
	data := make([]byte, header.Length)
	copy(data, payload)
	if err := s.ps.Write(r.PayloadAddress(), data); err != nil {
		return Record{}, err
	}
	if err := s.ps.WriteHeader(target, header); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (s *Store) erased(address records.Address, size uint32) (bool, error) {
	b := make([]byte, size)
	if err := s.ps.Read(address, b); err != nil {
		return false, err
	}
	for _, v := range b {
		if v != 0xFF {
			return false, nil
		}
	}
	return true, nil
}

// Delete tombstones the last active record whose header equals ref.
func (s *Store) Delete(page persistence.PageIndex, ref records.Header) (Record, error) {
	r, found, err := s.FindLastActive(page, ref)
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, errors.WithStack(ErrNotFound)
	}
	if err := s.Tombstone(r); err != nil {
		return Record{}, err
	}
	r.Header.State = records.DeletedState
	return r, nil
}

// Tombstone marks the active record as deleted in place. Type, length and payload stay untouched.
func (s *Store) Tombstone(r Record) error {
	if r.Header.State != records.ActiveState || r.Header.Equal(records.PageHeader) {
		return errors.Errorf("record at 0x%x is not an active data record", r.Address)
	}
	r.Header.State = records.DeletedState
	return s.ps.WriteHeader(r.Address, r.Header)
}
