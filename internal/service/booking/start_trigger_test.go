package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
	"github.com/Domenick1991/dronedelivery/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTrigger() (*StartTrigger, *MockDeliveryRepository, *MockDroneReader, *MockProducer) {
	deliveries := &MockDeliveryRepository{}
	drones := &MockDroneReader{}
	producer := &MockProducer{}
	trigger := NewStartTrigger(deliveries, drones, producer, "delivery-start-time-reached", testLogger())
	return trigger, deliveries, drones, producer
}

func TestStartTrigger_Fire(t *testing.T) {
	trigger, deliveries, drones, producer := newTrigger()
	ctx := context.Background()

	deliveries.On("GetByID", ctx, int64(5)).Return(scheduledDelivery(), nil).Once()
	drones.On("GetByID", ctx, int64(2)).Return(&domain.Drone{ID: 2, NickName: "Buzz"}, nil).Once()
	producer.On("Publish", ctx, "delivery-start-time-reached", "5", mock.MatchedBy(func(e kafka.DeliveryEvent) bool {
		return e.DeliveryID == 5 && e.DroneID == 2 && e.DroneNickName == "Buzz" &&
			e.TrackingNumber == "trk-5" && e.StartAddress == "Rue de Rivoli 1"
	})).Return(nil).Once()

	require.NoError(t, trigger.Fire(ctx, 5))
	deliveries.AssertExpectations(t)
	drones.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestStartTrigger_Fire_DroneLookupFails(t *testing.T) {
	trigger, deliveries, drones, producer := newTrigger()
	ctx := context.Background()

	deliveries.On("GetByID", ctx, int64(5)).Return(scheduledDelivery(), nil).Once()
	drones.On("GetByID", ctx, int64(2)).Return(nil, repository.ErrNotFound).Once()
	producer.On("Publish", ctx, "delivery-start-time-reached", "5", mock.MatchedBy(func(e kafka.DeliveryEvent) bool {
		return e.DroneNickName == ""
	})).Return(nil).Once()

	require.NoError(t, trigger.Fire(ctx, 5))
	producer.AssertExpectations(t)
}

func TestStartTrigger_Fire_Errors(t *testing.T) {
	t.Run("delivery gone", func(t *testing.T) {
		trigger, deliveries, _, producer := newTrigger()
		deliveries.On("GetByID", mock.Anything, int64(5)).Return(nil, repository.ErrNotFound).Once()

		err := trigger.Fire(context.Background(), 5)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("publish fails", func(t *testing.T) {
		trigger, deliveries, drones, producer := newTrigger()
		deliveries.On("GetByID", mock.Anything, int64(5)).Return(scheduledDelivery(), nil).Once()
		drones.On("GetByID", mock.Anything, int64(2)).Return(&domain.Drone{ID: 2}, nil).Once()
		producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

		err := trigger.Fire(context.Background(), 5)
		assert.ErrorContains(t, err, "publish start of delivery 5")
	})
}
