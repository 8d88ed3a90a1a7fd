package recordstore

import (
	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/records"
)

var (
	// ErrBeyondPage is returned if record does not fit into the page even after formatting it.
	ErrBeyondPage = errors.New("record does not fit into the page")

	// ErrNotFound is returned if there is no active record matching the reference.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptChain is returned if record chain points outside the page or page is not formatted.
	ErrCorruptChain = errors.New("record chain is corrupted")
)

// Record is the header stored at address.
type Record struct {
	Address records.Address
	Header  records.Header
}

// PayloadAddress returns the address where payload of the record starts.
func (r Record) PayloadAddress() records.Address {
	return r.Address + records.HeaderSize
}

// Store scans and appends records on the pages of persistent store.
type Store struct {
	ps *persistence.Store
}

// New returns new record store.
func New(ps *persistence.Store) *Store {
	return &Store{
		ps: ps,
	}
}

// Records returns all the records of the page, starting with the page marker.
func (s *Store) Records(page persistence.PageIndex) ([]Record, error) {
	var result []Record
	if _, err := s.walk(page, func(r Record) error {
		result = append(result, r)
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// FindLastAny returns the last record of the page. If page is empty the page marker is returned.
func (s *Store) FindLastAny(page persistence.PageIndex) (Record, error) {
	var last Record
	_, err := s.walk(page, func(r Record) error {
		last = r
		return nil
	})
	return last, err
}

// FindLastOfKind returns the last record of the same type as ref, ignoring state and length.
func (s *Store) FindLastOfKind(page persistence.PageIndex, ref records.Header) (Record, bool, error) {
	return s.FindLast(page, func(r Record) (bool, error) {
		return r.Header.SameKind(ref), nil
	})
}

// FindLastActive returns the last active record whose header equals ref on all the fields.
func (s *Store) FindLastActive(page persistence.PageIndex, ref records.Header) (Record, bool, error) {
	ref.State = records.ActiveState
	return s.FindLast(page, func(r Record) (bool, error) {
		return r.Header.Equal(ref), nil
	})
}

// FindLast returns the last record accepted by the match function. Page marker is never passed to it.
func (s *Store) FindLast(page persistence.PageIndex, match func(r Record) (bool, error)) (Record, bool, error) {
	var last Record
	var found bool
	_, err := s.walk(page, func(r Record) error {
		if r.Header.Equal(records.PageHeader) {
			return nil
		}
		ok, err := match(r)
		if err != nil {
			return err
		}
		if ok {
			last = r
			found = true
		}
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}
	return last, found, nil
}

// FindFree returns the address right after the last record of the page.
func (s *Store) FindFree(page persistence.PageIndex) (records.Address, error) {
	return s.walk(page, func(Record) error {
		return nil
	})
}

// CountOfKind returns the number of records of the same type as ref, regardless of their state.
func (s *Store) CountOfKind(page persistence.PageIndex, ref records.Header) (int, error) {
	var count int
	_, err := s.walk(page, func(r Record) error {
		if !r.Header.Equal(records.PageHeader) && r.Header.SameKind(ref) {
			count++
		}
		return nil
	})
	return count, err
}

// CountActiveOfKind returns the number of active records of the same type as ref.
func (s *Store) CountActiveOfKind(page persistence.PageIndex, ref records.Header) (int, error) {
	var count int
	_, err := s.walk(page, func(r Record) error {
		if !r.Header.Equal(records.PageHeader) && r.Header.SameKind(ref) && r.Header.State == records.ActiveState {
			count++
		}
		return nil
	})
	return count, err
}

// ReadPayload returns the stored payload of the record, including alignment padding.
func (s *Store) ReadPayload(r Record) ([]byte, error) {
	payload := make([]byte, r.Header.Length)
	if err := s.ps.Read(r.PayloadAddress(), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// walk visits records starting from the page marker and returns the address following the last one.
// Every computed address is checked against the page end so a corrupted length never leads outside the page.
func (s *Store) walk(page persistence.PageIndex, visit func(r Record) error) (records.Address, error) {
	geometry := s.ps.Geometry()
	start, err := geometry.PageAddress(page)
	if err != nil {
		return 0, err
	}
	end := start + records.Address(geometry.PageSize)

	current := Record{Address: start}
	current.Header, err = s.ps.ReadHeader(start)
	if err != nil {
		return 0, err
	}
	if !current.Header.Equal(records.PageHeader) {
		return 0, errors.Wrapf(ErrCorruptChain, "page %d is not formatted", page)
	}

	for {
		if err := visit(current); err != nil {
			return 0, err
		}

		if current.Header.Length%records.Alignment != 0 {
			return 0, errors.Wrapf(ErrCorruptChain, "record at 0x%x has invalid length %d",
				current.Address, current.Header.Length)
		}
		next := current.Address + records.Address(current.Header.Size())
		if next > end {
			return 0, errors.Wrapf(ErrCorruptChain, "record at 0x%x ends at 0x%x, beyond page end 0x%x",
				current.Address, next, end)
		}
		if next+records.HeaderSize > end {
			return next, nil
		}

		header, err := s.ps.ReadHeader(next)
		if err != nil {
			return 0, err
		}
		if header.Equal(records.NoneHeader) {
			return next, nil
		}
		current = Record{Address: next, Header: header}
	}
}
