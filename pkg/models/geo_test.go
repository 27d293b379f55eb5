package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoLocation_RejectsOutOfRange(t *testing.T) {
	_, err := NewGeoLocation(91, 0)
	require.Error(t, err)
	_, err = NewGeoLocation(0, 181)
	require.Error(t, err)
}

func TestBoundingBox_CenterContainmentRoundTrip(t *testing.T) {
	b, err := NewBoundingBox(10, 10, 20, 20)
	require.NoError(t, err)
	p := b.Center()
	assert.True(t, b.Contains(p))
}

func TestBoundingBox_RejectsInvertedBounds(t *testing.T) {
	_, err := NewBoundingBox(20, 0, 10, 0)
	require.Error(t, err)
}

func TestGeoLocation_DistanceKm(t *testing.T) {
	// Equator, 1 degree of longitude apart: known to be ~111km.
	a := GeoLocation{Lat: 0, Lon: 0}
	b := GeoLocation{Lat: 0, Lon: 1}
	d := a.DistanceKm(b)
	assert.InDelta(t, 111.19, d, 1.0)
}

func TestGeoLocation_DistanceToSelfIsZero(t *testing.T) {
	a := GeoLocation{Lat: 12.3, Lon: 45.6}
	assert.InDelta(t, 0, a.DistanceKm(a), 1e-9)
}
