package flashstore

import (
	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/color"
	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/presetstore"
	"github.com/outofforest/flashstore/recordstore"
	"github.com/outofforest/flashstore/settingsstore"
)

var (
	// ErrNotFound is returned if preset does not exist.
	ErrNotFound = recordstore.ErrNotFound

	// ErrBeyondPage is returned if record can't fit into the page.
	ErrBeyondPage = recordstore.ErrBeyondPage

	// ErrInvalidName is returned if preset name can't be stored.
	ErrInvalidName = presetstore.ErrInvalidName
)

// Store is used to access settings and presets stored in flash pages.
// It must not be used concurrently.
type Store struct {
	ps       *persistence.Store
	rs       *recordstore.Store
	settings *settingsstore.Store
	presets  *presetstore.Store
}

// New returns new store. Init must be called before storing anything.
func New(dev persistence.Dev, geometry persistence.Geometry, waiter persistence.Waiter) (*Store, error) {
	if geometry.Pages <= uint32(persistence.PresetsPage) {
		return nil, errors.Errorf("at least %d pages are required, provided: %d", persistence.PresetsPage+1, geometry.Pages)
	}

	ps, err := persistence.OpenStore(dev, geometry, waiter)
	if err != nil {
		return nil, err
	}
	rs := recordstore.New(ps)

	return &Store{
		ps:       ps,
		rs:       rs,
		settings: settingsstore.New(rs, persistence.SettingsPage),
		presets:  presetstore.New(rs, persistence.PresetsPage),
	}, nil
}

// Init formats pages without valid page marker. If force is set, all the pages are formatted.
func (s *Store) Init(force bool) error {
	return persistence.Initialize(s.ps, force)
}

// SaveSettings stores the current color.
func (s *Store) SaveSettings(c color.HSV) error {
	return s.settings.Save(c)
}

// LoadSettings loads the current color into c. If nothing has been saved, c is left untouched.
func (s *Store) LoadSettings(c *color.HSV) error {
	stored, found, err := s.settings.Load()
	if err != nil {
		return err
	}
	if found {
		*c = stored
	}
	return nil
}

// SavePreset stores the named color.
func (s *Store) SavePreset(c color.RGB, name string) error {
	return s.presets.Save(c, name)
}

// LoadPreset returns the named color.
func (s *Store) LoadPreset(name string) (color.RGB, error) {
	return s.presets.Load(name)
}

// DeletePreset deletes the named color.
func (s *Store) DeletePreset(name string) error {
	return s.presets.Delete(name)
}

// CountPresets returns the number of preset records, deleted ones included.
func (s *Store) CountPresets() (int, error) {
	return s.presets.Count()
}

// CountActivePresets returns the number of preset records not deleted.
func (s *Store) CountActivePresets() (int, error) {
	return s.presets.CountActive()
}

// HasPresetCapacity returns true if another preset may be saved without exceeding capacity.
func (s *Store) HasPresetCapacity(capacity int) (bool, error) {
	count, err := s.presets.Count()
	if err != nil {
		return false, err
	}
	return count < capacity, nil
}

// Presets returns active presets.
func (s *Store) Presets() ([]presetstore.Preset, error) {
	return s.presets.List()
}

// ApplyPreset makes the named color the current one.
func (s *Store) ApplyPreset(name string) (color.HSV, error) {
	rgb, err := s.presets.Load(name)
	if err != nil {
		return color.HSV{}, err
	}
	hsv := rgb.HSV()
	if err := s.settings.Save(hsv); err != nil {
		return color.HSV{}, err
	}
	return hsv, nil
}

// Records returns raw records of the page.
func (s *Store) Records(page persistence.PageIndex) ([]recordstore.Record, error) {
	return s.rs.Records(page)
}

// Persistence returns the underlying persistent store.
func (s *Store) Persistence() *persistence.Store {
	return s.ps
}
