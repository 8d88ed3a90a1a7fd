package settingsstore

import (
	"github.com/outofforest/flashstore/color"
	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/recordstore"
	"github.com/outofforest/flashstore/records"
)

const hsvSize = 3

var hsvHeader = records.Header{
	Type:   records.ColorHSVType,
	State:  records.ActiveState,
	Length: byte(records.AlignLength(hsvSize)),
}

// Store keeps the current HSV color. The last active record on the page wins.
type Store struct {
	rs   *recordstore.Store
	page persistence.PageIndex
}

// New returns new settings store operating on the page.
func New(rs *recordstore.Store, page persistence.PageIndex) *Store {
	return &Store{
		rs:   rs,
		page: page,
	}
}

// Save appends the color. Older history may be erased if page is full.
func (s *Store) Save(c color.HSV) error {
	_, err := s.rs.Append(s.page, hsvHeader, []byte{c.H, c.S, c.V})
	return err
}

// Load returns the last saved color. False is returned if no color has been saved yet.
func (s *Store) Load() (color.HSV, bool, error) {
	r, found, err := s.rs.FindLastActive(s.page, hsvHeader)
	if !found || err != nil {
		return color.HSV{}, false, err
	}

	payload, err := s.rs.ReadPayload(r)
	if err != nil {
		return color.HSV{}, false, err
	}
	return color.HSV{
		H: payload[0],
		S: payload[1],
		V: payload[2],
	}, true, nil
}
