package directions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veloair/veloair/internal/directions"
)

func TestProfile_IsDriving(t *testing.T) {
	assert.True(t, directions.ProfileDrivingCar.IsDriving())
	assert.Equal(t, "driving-car", string(directions.ProfileDrivingCar))

	for _, p := range []directions.Profile{
		directions.ProfileCyclingRegular,
		directions.ProfileCyclingRoad,
		directions.ProfileCyclingMountain,
	} {
		assert.False(t, p.IsDriving(), "profile %s", p)
	}
}
