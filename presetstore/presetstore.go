package presetstore

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/outofforest/flashstore/color"
	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/recordstore"
	"github.com/outofforest/flashstore/records"
)

const (
	colorSize = 3

	// MaxNameLength is the maximum length of the preset name.
	MaxNameLength = records.MaxLength - colorSize
)

// ErrInvalidName is returned if name can't be stored.
var ErrInvalidName = errors.New("invalid preset name")

// Preset is the named color.
type Preset struct {
	Name  string
	Color color.RGB
}

// Store keeps named RGB colors. Payload of each record is [r, g, b, name...] padded with zeros.
type Store struct {
	rs   *recordstore.Store
	page persistence.PageIndex
}

// New returns new preset store operating on the page.
func New(rs *recordstore.Store, page persistence.PageIndex) *Store {
	return &Store{
		rs:   rs,
		page: page,
	}
}

// Save appends the preset. Previously saved color of the same name is shadowed, not removed.
func (s *Store) Save(c color.RGB, name string) error {
	header, err := nameHeader(name)
	if err != nil {
		return err
	}

	payload := make([]byte, 0, colorSize+len(name))
	payload = append(payload, c.R, c.G, c.B)
	payload = append(payload, name...)

	_, err = s.rs.Append(s.page, header, payload)
	return err
}

// Load returns the color saved most recently under the name.
func (s *Store) Load(name string) (color.RGB, error) {
	_, payload, err := s.find(name)
	if err != nil {
		return color.RGB{}, err
	}
	return decodeColor(payload), nil
}

// Delete tombstones all the active records of the name.
func (s *Store) Delete(name string) error {
	r, _, err := s.find(name)
	if err != nil {
		return err
	}

	for {
		if err := s.rs.Tombstone(r); err != nil {
			return err
		}
		r, _, err = s.find(name)
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Count returns the number of preset records on the page, including the deleted ones.
// This is the number consumed from the page space, used by callers for admission control.
func (s *Store) Count() (int, error) {
	return s.rs.CountOfKind(s.page, records.Header{Type: records.ColorRGBNamedType})
}

// CountActive returns the number of preset records which are not deleted.
// Name saved more than once is counted once per active record.
func (s *Store) CountActive() (int, error) {
	return s.rs.CountActiveOfKind(s.page, records.Header{Type: records.ColorRGBNamedType})
}

// List returns active presets in order of the first save, with the most recent color of each name.
func (s *Store) List() ([]Preset, error) {
	var presets []Preset
	index := map[string]int{}

	rs, err := s.rs.Records(s.page)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if r.Header.Type != records.ColorRGBNamedType || r.Header.State != records.ActiveState ||
			r.Header.Length < colorSize {
			continue
		}
		payload, err := s.rs.ReadPayload(r)
		if err != nil {
			return nil, err
		}
		p := Preset{
			Name:  string(bytes.TrimRight(payload[colorSize:], "\x00")),
			Color: decodeColor(payload),
		}
		if i, exists := index[p.Name]; exists {
			presets[i] = p
			continue
		}
		index[p.Name] = len(presets)
		presets = append(presets, p)
	}
	return presets, nil
}

func (s *Store) find(name string) (recordstore.Record, []byte, error) {
	ref, err := nameHeader(name)
	if err != nil {
		return recordstore.Record{}, nil, err
	}

	var payload []byte
	r, found, err := s.rs.FindLast(s.page, func(r recordstore.Record) (bool, error) {
		if !r.Header.Equal(ref) {
			return false, nil
		}
		p, err := s.rs.ReadPayload(r)
		if err != nil {
			return false, err
		}
		if !nameMatches(p, name) {
			return false, nil
		}
		payload = p
		return true, nil
	})
	if err != nil {
		return recordstore.Record{}, nil, err
	}
	if !found {
		return recordstore.Record{}, nil, errors.Wrapf(recordstore.ErrNotFound, "preset %q", name)
	}
	return r, payload, nil
}

func nameHeader(name string) (records.Header, error) {
	if name == "" || len(name) > MaxNameLength || bytes.IndexByte([]byte(name), 0) >= 0 {
		return records.Header{}, errors.Wrapf(ErrInvalidName, "name must have 1-%d bytes and no NUL: %q",
			MaxNameLength, name)
	}
	return records.Active(records.ColorRGBNamedType, colorSize+len(name))
}

func nameMatches(payload []byte, name string) bool {
	stored := payload[colorSize:]
	if len(stored) < len(name) || string(stored[:len(name)]) != name {
		return false
	}
	for _, b := range stored[len(name):] {
		if b != 0 {
			return false
		}
	}
	return true
}

func decodeColor(payload []byte) color.RGB {
	return color.RGB{
		R: payload[0],
		G: payload[1],
		B: payload[2],
	}
}
