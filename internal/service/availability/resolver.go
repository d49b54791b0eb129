package availability

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
)

// ErrNoDroneAvailable is the capacity error: every drone of the fleet is
// committed at the requested pickup time.
var ErrNoDroneAvailable = errors.New("no drone available for the requested pickup time")

type FleetReader interface {
	List(ctx context.Context) ([]domain.Drone, error)
}

type DeliveryReader interface {
	List(ctx context.Context) ([]domain.Delivery, error)
}

type Resolver struct {
	fleet        FleetReader
	deliveries   DeliveryReader
	returnBuffer time.Duration
}

func NewResolver(fleet FleetReader, deliveries DeliveryReader, returnBuffer time.Duration) *Resolver {
	return &Resolver{fleet: fleet, deliveries: deliveries, returnBuffer: returnBuffer}
}

// Resolve returns the drones free at pickup in ascending id order, and the
// drone to assign: candidate when it is free, the lowest free id otherwise.
// excludeDeliveryID lets a delivery being rescheduled ignore its own window.
func (r *Resolver) Resolve(ctx context.Context, excludeDeliveryID int64, pickup time.Time, candidate int64) ([]int64, int64, error) {
	fleet, err := r.fleet.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list drones: %w", err)
	}
	deliveries, err := r.deliveries.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list deliveries: %w", err)
	}

	available := AvailableDrones(fleet, deliveries, excludeDeliveryID, pickup, r.returnBuffer)
	if len(available) == 0 {
		return nil, 0, ErrNoDroneAvailable
	}

	if candidate != 0 && slices.Contains(available, candidate) {
		return available, candidate, nil
	}
	return available, available[0], nil
}

// IsAvailable reports whether droneID is free at pickup.
func (r *Resolver) IsAvailable(ctx context.Context, droneID, excludeDeliveryID int64, pickup time.Time) (bool, error) {
	deliveries, err := r.deliveries.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list deliveries: %w", err)
	}
	for _, d := range deliveries {
		if d.DroneID == droneID && d.ID != excludeDeliveryID && d.Window(r.returnBuffer).Contains(pickup) {
			return false, nil
		}
	}
	return true, nil
}

// AvailableDrones removes from the fleet every drone with a delivery whose
// booking window contains pickup. Only the pickup instant is tested against
// existing windows; a new delivery's own window is not.
func AvailableDrones(fleet []domain.Drone, deliveries []domain.Delivery, excludeDeliveryID int64, pickup time.Time, returnBuffer time.Duration) []int64 {
	busy := make(map[int64]struct{})
	for _, d := range deliveries {
		if d.ID == excludeDeliveryID {
			continue
		}
		if d.Window(returnBuffer).Contains(pickup) {
			busy[d.DroneID] = struct{}{}
		}
	}

	available := make([]int64, 0, len(fleet))
	for _, drone := range fleet {
		if _, ok := busy[drone.ID]; !ok {
			available = append(available, drone.ID)
		}
	}
	slices.Sort(available)
	return slices.Compact(available)
}
