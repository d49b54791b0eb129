package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
	"github.com/Domenick1991/dronedelivery/internal/repository"
	"github.com/Domenick1991/dronedelivery/internal/service/scheduler"
)

type DroneReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Drone, error)
}

// StartTrigger publishes delivery-start-time-reached with the delivery
// snapshot when its scheduled job fires.
type StartTrigger struct {
	deliveries repository.DeliveryRepository
	drones     DroneReader
	producer   Producer
	topic      string
	now        func() time.Time
	logger     *slog.Logger
}

func NewStartTrigger(deliveries repository.DeliveryRepository, drones DroneReader, producer Producer, topic string, logger *slog.Logger) *StartTrigger {
	return &StartTrigger{
		deliveries: deliveries,
		drones:     drones,
		producer:   producer,
		topic:      topic,
		now:        time.Now,
		logger:     logger.With("component", "start-trigger"),
	}
}

func (t *StartTrigger) Fire(ctx context.Context, deliveryID int64) error {
	d, err := t.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("load delivery %d: %w", deliveryID, err)
	}

	var nickName string
	if drone, err := t.drones.GetByID(ctx, d.DroneID); err != nil {
		t.logger.Warn("load drone", "drone_id", d.DroneID, "error", err)
	} else {
		nickName = drone.NickName
	}

	event := kafka.NewDeliveryEvent(d, nickName, t.now())
	if err := t.producer.Publish(ctx, t.topic, strconv.FormatInt(d.ID, 10), event); err != nil {
		return fmt.Errorf("publish start of delivery %d: %w", d.ID, err)
	}

	t.logger.Info("delivery start published", "delivery_id", d.ID, "drone_id", d.DroneID)
	return nil
}

var _ scheduler.Trigger = (*StartTrigger)(nil)
