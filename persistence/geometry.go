package persistence

import (
	"math"

	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/records"
)

const (
	// DefaultPageSize is the size of the erase unit of the nRF52840 flash.
	DefaultPageSize = 4 * 1024

	// DefaultPages is the number of pages reserved for application data.
	DefaultPages = 3

	// DefaultBootloaderAddress is the address where bootloader starts. Application data pages are placed right below.
	DefaultBootloaderAddress = 0xE0000
)

// PageIndex is the logical index of the data page.
type PageIndex uint32

// Logical pages.
const (
	SettingsPage PageIndex = iota
	PresetsPage

	// ReservedPage is formatted together with other pages but not used by any store yet.
	ReservedPage
)

// ErrInvalidPage is returned if page index is outside the geometry.
var ErrInvalidPage = errors.New("invalid page")

// Geometry defines the layout of data pages on the device.
type Geometry struct {
	// Base is the start address of the page 0.
	Base records.Address

	// PageSize is the size of the erase unit.
	PageSize uint32

	// Pages is the number of consecutive data pages.
	Pages uint32
}

// DefaultGeometry returns the layout used by the firmware.
func DefaultGeometry() Geometry {
	return Geometry{
		Base:     DefaultBootloaderAddress - DefaultPages*DefaultPageSize,
		PageSize: DefaultPageSize,
		Pages:    DefaultPages,
	}
}

// Validate verifies that geometry is usable.
func (g Geometry) Validate() error {
	if g.PageSize < 2*records.HeaderSize || g.PageSize%records.Alignment != 0 {
		return errors.Errorf("page size must be a multiple of %d not smaller than %d, provided: %d",
			records.Alignment, 2*records.HeaderSize, g.PageSize)
	}
	if g.Pages == 0 {
		return errors.New("at least one page is required")
	}
	if uint32(g.Base)%g.PageSize != 0 {
		return errors.Errorf("base address 0x%x is not aligned to page size %d", g.Base, g.PageSize)
	}
	if uint64(g.Base)+uint64(g.Pages)*uint64(g.PageSize) > math.MaxUint32+1 {
		return errors.Errorf("pages exceed the address space, base: 0x%x, pages: %d, page size: %d",
			g.Base, g.Pages, g.PageSize)
	}
	return nil
}

// PageAddress returns the start address of the page.
func (g Geometry) PageAddress(page PageIndex) (records.Address, error) {
	if uint32(page) >= g.Pages {
		return 0, errors.Wrapf(ErrInvalidPage, "page %d, number of pages: %d", page, g.Pages)
	}
	return g.Base + records.Address(uint32(page)*g.PageSize), nil
}

// PageEnd returns the first address beyond the page.
func (g Geometry) PageEnd(page PageIndex) (records.Address, error) {
	start, err := g.PageAddress(page)
	if err != nil {
		return 0, err
	}
	return start + records.Address(g.PageSize), nil
}

// PhysicalPage returns the index of the device erase unit backing the logical page.
func (g Geometry) PhysicalPage(page PageIndex) (uint32, error) {
	start, err := g.PageAddress(page)
	if err != nil {
		return 0, err
	}
	return uint32(start) / g.PageSize, nil
}
