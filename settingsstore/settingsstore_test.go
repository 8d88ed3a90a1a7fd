package settingsstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/flashstore/color"
	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/pkg/memdev"
	"github.com/outofforest/flashstore/recordstore"
	"github.com/outofforest/flashstore/records"
)

func TestLoadFromEmptyPage(t *testing.T) {
	requireT := require.New(t)

	s, _ := newStore(t)

	c, found, err := s.Load()
	requireT.NoError(err)
	requireT.False(found)
	requireT.Equal(color.HSV{}, c)
}

func TestRoundTrip(t *testing.T) {
	requireT := require.New(t)

	for _, c := range []color.HSV{
		{},
		{H: 255, S: 255, V: 255},
		{H: 247, S: 255, V: 255},
		{H: 1, S: 128, V: 2},
	} {
		s, _ := newStore(t)
		requireT.NoError(s.Save(c))

		c2, found, err := s.Load()
		requireT.NoError(err)
		requireT.True(found)
		requireT.Equal(c, c2)
	}
}

func TestLatestWins(t *testing.T) {
	requireT := require.New(t)

	s, rs := newStore(t)

	requireT.NoError(s.Save(color.HSV{H: 10, S: 20, V: 30}))
	requireT.NoError(s.Save(color.HSV{H: 40, S: 50, V: 60}))

	c, found, err := s.Load()
	requireT.NoError(err)
	requireT.True(found)
	requireT.Equal(color.HSV{H: 40, S: 50, V: 60}, c)

	last, err := rs.FindLastAny(persistence.SettingsPage)
	requireT.NoError(err)
	requireT.EqualValues(0x3000+records.HeaderSize+hsvHeader.Size(), last.Address)
	requireT.Equal(hsvHeader, last.Header)
}

func TestSaveSurvivesPageFull(t *testing.T) {
	requireT := require.New(t)

	s, rs := newStore(t)

	// Page of 128 bytes holds 15 records after the marker.
	for i := 0; i < 40; i++ {
		requireT.NoError(s.Save(color.HSV{H: uint8(i), S: 1, V: 2}))

		c, found, err := s.Load()
		requireT.NoError(err)
		requireT.True(found)
		requireT.Equal(color.HSV{H: uint8(i), S: 1, V: 2}, c)
	}

	rs2, err := rs.Records(persistence.SettingsPage)
	requireT.NoError(err)
	requireT.Len(rs2, 40%15+1)
}

func newStore(t *testing.T) (*Store, *recordstore.Store) {
	geometry := persistence.Geometry{Base: 0x3000, PageSize: 128, Pages: 2}
	dev := memdev.New(geometry.Base, geometry.PageSize, geometry.Pages)
	ps, err := persistence.OpenStore(dev, geometry, nil)
	require.NoError(t, err)
	require.NoError(t, persistence.Initialize(ps, false))

	rs := recordstore.New(ps)
	return New(rs, persistence.SettingsPage), rs
}
