package api

import (
	"context"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/service/booking"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, input booking.BookDeliveryInput) (*domain.Delivery, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Delivery), args.Error(1)
}

func (m *MockBookingUseCase) Reschedule(ctx context.Context, id int64, input booking.RescheduleInput) (*domain.Delivery, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Delivery), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingUseCase) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Delivery), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context) ([]domain.Delivery, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Delivery), args.Error(1)
}

func (m *MockBookingUseCase) ListByUser(ctx context.Context, userID int64) ([]domain.Delivery, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Delivery), args.Error(1)
}

type MockDroneUseCase struct {
	mock.Mock
}

func (m *MockDroneUseCase) List(ctx context.Context) ([]domain.Drone, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Drone), args.Error(1)
}

func (m *MockDroneUseCase) GetByID(ctx context.Context, id int64) (*domain.Drone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func (m *MockDroneUseCase) UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
