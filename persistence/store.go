package persistence

import (
	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/records"
)

// Store sequences operations on the device. Every operation blocks until the device completes it.
type Store struct {
	dev      Dev
	waiter   Waiter
	geometry Geometry
}

// OpenStore opens the persistent store.
func OpenStore(dev Dev, geometry Geometry, waiter Waiter) (*Store, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if waiter == nil {
		waiter = PollWaiter{}
	}

	return &Store{
		dev:      dev,
		waiter:   waiter,
		geometry: geometry,
	}, nil
}

// Geometry returns the page layout of the store.
func (s *Store) Geometry() Geometry {
	return s.geometry
}

// Read reads raw bytes starting at address.
func (s *Store) Read(address records.Address, p []byte) error {
	if _, err := s.dev.ReadAt(p, int64(address)); err != nil {
		return errors.Wrapf(err, "reading %d bytes at 0x%x failed", len(p), address)
	}
	return nil
}

// ReadHeader reads the record header stored at address.
func (s *Store) ReadHeader(address records.Address) (records.Header, error) {
	var b [records.HeaderSize]byte
	if err := s.Read(address, b[:]); err != nil {
		return records.Header{}, err
	}
	return records.Decode(b[:])
}

// WriteHeader programs the header at address.
func (s *Store) WriteHeader(address records.Address, header records.Header) error {
	b := header.Encode()
	return s.Write(address, b[:])
}

// Write programs raw bytes starting at address.
func (s *Store) Write(address records.Address, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if len(p)%records.Alignment != 0 || uint32(address)%records.Alignment != 0 {
		return errors.Errorf("unaligned write of %d bytes at 0x%x", len(p), address)
	}
	if err := s.idle(); err != nil {
		return err
	}
	if err := s.dev.Write(address, p); err != nil {
		return errors.Wrapf(err, "writing %d bytes at 0x%x failed", len(p), address)
	}
	return s.waiter.Wait(s.dev)
}

// ErasePage erases the whole page.
func (s *Store) ErasePage(page PageIndex) error {
	physical, err := s.geometry.PhysicalPage(page)
	if err != nil {
		return err
	}
	if err := s.idle(); err != nil {
		return err
	}
	if err := s.dev.Erase(physical); err != nil {
		return errors.Wrapf(err, "erasing page %d failed", page)
	}
	return s.waiter.Wait(s.dev)
}

func (s *Store) idle() error {
	if !s.dev.Busy() {
		return nil
	}
	return s.waiter.Wait(s.dev)
}
