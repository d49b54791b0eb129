package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelivery_Schedule(t *testing.T) {
	pickup := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var d Delivery
	assert.NoError(t, d.Schedule(pickup, 15*time.Minute))
	assert.Equal(t, pickup, d.PickupTime)
	assert.Equal(t, pickup.Add(15*time.Minute), d.EstimatedArrival)
	assert.Equal(t, 15*time.Minute, d.RouteDuration())

	assert.ErrorIs(t, d.Schedule(pickup, -time.Second), ErrArrivalBeforePickup)
	assert.Equal(t, pickup.Add(15*time.Minute), d.EstimatedArrival)
}

func TestDelivery_WindowIsInclusive(t *testing.T) {
	pickup := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	d := Delivery{PickupTime: pickup, EstimatedArrival: pickup.Add(15 * time.Minute)}
	w := d.Window(15 * time.Minute)

	assert.Equal(t, pickup.Add(30*time.Minute), w.To)
	assert.True(t, w.Contains(pickup))
	assert.True(t, w.Contains(pickup.Add(30*time.Minute)))
	assert.True(t, w.Contains(pickup.Add(15*time.Minute)))
	assert.False(t, w.Contains(pickup.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(pickup.Add(30*time.Minute+time.Nanosecond)))
}

func TestStatusFromDrone(t *testing.T) {
	assert.Equal(t, DeliveryStatusCompleted, StatusFromDrone(DroneStatusParked))
	assert.Equal(t, DeliveryStatusInFlight, StatusFromDrone(DroneStatusInFlightToStartAddress))
	assert.Equal(t, DeliveryStatusInFlight, StatusFromDrone(DroneStatusInFlightToEndAddress))
	assert.Equal(t, DeliveryStatusInFlight, StatusFromDrone(DroneStatusInFlightToHeadOffice))
}

func TestParseDroneStatus(t *testing.T) {
	st, err := ParseDroneStatus("IN_FLIGHT_TO_END_ADDRESS")
	assert.NoError(t, err)
	assert.Equal(t, DroneStatusInFlightToEndAddress, st)

	_, err = ParseDroneStatus("HOVERING")
	assert.Error(t, err)
}
