package projector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
)

type DeliveryUpdater interface {
	UpdateStatusByDroneWindow(ctx context.Context, droneID int64, status domain.DeliveryStatus, at time.Time, returnBuffer time.Duration) (int64, error)
}

type DroneUpdater interface {
	UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error
}

// Projector folds drone status changes into the deliveries the drone is
// flying.
type Projector struct {
	deliveries   DeliveryUpdater
	drones       DroneUpdater
	returnBuffer time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

func NewProjector(deliveries DeliveryUpdater, drones DroneUpdater, returnBuffer time.Duration, logger *slog.Logger) *Projector {
	return &Projector{
		deliveries:   deliveries,
		drones:       drones,
		returnBuffer: returnBuffer,
		now:          time.Now,
		logger:       logger.With("component", "projector"),
	}
}

// OnDroneStatusChanged records the drone's new status and moves every
// delivery of that drone whose window contains at to the derived delivery
// status. It returns the number of deliveries updated.
func (p *Projector) OnDroneStatusChanged(ctx context.Context, droneID int64, status domain.DroneStatus, at time.Time) (int64, error) {
	if p.drones != nil {
		if err := p.drones.UpdateStatus(ctx, droneID, status); err != nil {
			p.logger.Warn("update drone status", "drone_id", droneID, "status", status, "error", err)
		}
	}

	deliveryStatus := domain.StatusFromDrone(status)
	n, err := p.deliveries.UpdateStatusByDroneWindow(ctx, droneID, deliveryStatus, at, p.returnBuffer)
	if err != nil {
		return 0, fmt.Errorf("update deliveries of drone %d: %w", droneID, err)
	}

	if n > 0 {
		p.logger.Info("deliveries updated", "drone_id", droneID, "status", deliveryStatus, "count", n)
	}
	return n, nil
}

func (p *Projector) HandleDroneStatusChanged(ctx context.Context, event kafka.DroneStatusChangedEvent) error {
	status, err := domain.ParseDroneStatus(event.DroneStatus)
	if err != nil {
		return err
	}
	at := event.EventDateTime
	if at.IsZero() {
		at = p.now()
	}
	_, err = p.OnDroneStatusChanged(ctx, event.DroneID, status, at)
	return err
}
