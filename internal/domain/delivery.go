package domain

import (
	"errors"
	"time"
)

type DeliveryStatus string

const (
	DeliveryStatusScheduled DeliveryStatus = "SCHEDULED"
	DeliveryStatusInFlight  DeliveryStatus = "IN_FLIGHT"
	DeliveryStatusCompleted DeliveryStatus = "COMPLETED"
)

// ErrArrivalBeforePickup is returned when a route duration would place the
// estimated arrival before the pickup time.
var ErrArrivalBeforePickup = errors.New("estimated arrival must not be before pickup time")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Delivery struct {
	ID               int64
	StartAddress     string
	EndAddress       string
	Start            Coordinates
	End              Coordinates
	PickupTime       time.Time
	EstimatedArrival time.Time
	Status           DeliveryStatus
	DroneID          int64
	UserID           int64
	UserName         string
	SchedulerJobKey  string
	TrackingNumber   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Schedule sets the pickup time and derives the estimated arrival from the
// route duration.
func (d *Delivery) Schedule(pickup time.Time, routeDuration time.Duration) error {
	if routeDuration < 0 {
		return ErrArrivalBeforePickup
	}
	d.PickupTime = pickup
	d.EstimatedArrival = pickup.Add(routeDuration)
	return nil
}

// RouteDuration is the flight time between pickup and estimated arrival.
func (d *Delivery) RouteDuration() time.Duration {
	return d.EstimatedArrival.Sub(d.PickupTime)
}

// Window is the interval during which the assigned drone is committed to
// this delivery, including the return flight to head office.
func (d *Delivery) Window(returnBuffer time.Duration) Window {
	return Window{From: d.PickupTime, To: d.EstimatedArrival.Add(returnBuffer)}
}

// StatusFromDrone maps a drone status onto the status of the deliveries it
// is flying.
func StatusFromDrone(s DroneStatus) DeliveryStatus {
	if s == DroneStatusParked {
		return DeliveryStatusCompleted
	}
	return DeliveryStatusInFlight
}

// Window is a closed time interval.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}
