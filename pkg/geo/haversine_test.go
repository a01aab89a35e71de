package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	assert.Zero(t, DistanceMeters(51.5074, -0.1278, 51.5074, -0.1278))
}

func TestDistanceMetersSymmetric(t *testing.T) {
	forward := DistanceMeters(51.5074, -0.1278, 48.8566, 2.3522)
	backward := DistanceMeters(48.8566, 2.3522, 51.5074, -0.1278)
	assert.Equal(t, forward, backward)
}

func TestDistanceMetersKnownFixture(t *testing.T) {
	// One hundredth of a degree of longitude at London's latitude.
	got := DistanceMeters(51.5074, -0.1278, 51.5074, -0.1178)
	assert.InDelta(t, 694, got, 5)
}

func TestDistanceMetersAntipodalIsHalfCircumference(t *testing.T) {
	got := DistanceMeters(0, 0, 0, 180)
	assert.InDelta(t, EarthRadiusMeters*3.14159265, got, 1000)
}
