package booking

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/route"
	"github.com/stretchr/testify/mock"
)

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockDeliveryRepository) GetByID(ctx context.Context, id int64) (*domain.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) List(ctx context.Context) ([]domain.Delivery, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Delivery, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) UpdateSchedule(ctx context.Context, delivery *domain.Delivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeliveryRepository) UpdateStatusByDroneWindow(ctx context.Context, droneID int64, status domain.DeliveryStatus, at time.Time, returnBuffer time.Duration) (int64, error) {
	args := m.Called(ctx, droneID, status, at, returnBuffer)
	return args.Get(0).(int64), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, excludeDeliveryID int64, pickup time.Time, candidate int64) ([]int64, int64, error) {
	args := m.Called(ctx, excludeDeliveryID, pickup, candidate)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockResolver) IsAvailable(ctx context.Context, droneID, excludeDeliveryID int64, pickup time.Time) (bool, error) {
	args := m.Called(ctx, droneID, excludeDeliveryID, pickup)
	return args.Bool(0), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, deliveryID int64, pickup time.Time) (string, error) {
	args := m.Called(ctx, deliveryID, pickup)
	return args.String(0), args.Error(1)
}

func (m *MockScheduler) Cancel(ctx context.Context, jobKey string) error {
	args := m.Called(ctx, jobKey)
	return args.Error(0)
}

func (m *MockScheduler) Reschedule(ctx context.Context, jobKey string, deliveryID int64, pickup time.Time) (string, error) {
	args := m.Called(ctx, jobKey, deliveryID, pickup)
	return args.String(0), args.Error(1)
}

type MockRouteProvider struct {
	mock.Mock
}

func (m *MockRouteProvider) Directions(ctx context.Context, startAddress, endAddress string) (*route.Route, error) {
	args := m.Called(ctx, startAddress, endAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*route.Route), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireDroneLock(ctx context.Context, droneID int64, ttl time.Duration) (string, error) {
	args := m.Called(ctx, droneID, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockLocker) ReleaseDroneLock(ctx context.Context, droneID int64, token string) error {
	args := m.Called(ctx, droneID, token)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockDroneReader struct {
	mock.Mock
}

func (m *MockDroneReader) GetByID(ctx context.Context, id int64) (*domain.Drone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
