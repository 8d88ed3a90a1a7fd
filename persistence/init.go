package persistence

import (
	"github.com/outofforest/flashstore/records"
)

// FormatPage erases the page and writes the page marker at its start.
func (s *Store) FormatPage(page PageIndex) error {
	start, err := s.geometry.PageAddress(page)
	if err != nil {
		return err
	}
	if err := s.ErasePage(page); err != nil {
		return err
	}
	return s.WriteHeader(start, records.PageHeader)
}

// IsFormatted returns true if page starts with the page marker.
func (s *Store) IsFormatted(page PageIndex) (bool, error) {
	start, err := s.geometry.PageAddress(page)
	if err != nil {
		return false, err
	}
	header, err := s.ReadHeader(start)
	if err != nil {
		return false, err
	}
	return header.Equal(records.PageHeader), nil
}

// EnsureFormatted formats the page if the marker is missing or if format is forced.
// It returns true if page has been formatted.
func (s *Store) EnsureFormatted(page PageIndex, force bool) (bool, error) {
	if !force {
		formatted, err := s.IsFormatted(page)
		if err != nil || formatted {
			return false, err
		}
	}
	if err := s.FormatPage(page); err != nil {
		return false, err
	}
	return true, nil
}

// Initialize makes sure all the pages are formatted. If force is set, all existing records are destroyed.
func Initialize(s *Store, force bool) error {
	for page := PageIndex(0); uint32(page) < s.geometry.Pages; page++ {
		if _, err := s.EnsureFormatted(page, force); err != nil {
			return err
		}
	}
	return nil
}
