package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
	"github.com/Domenick1991/dronedelivery/internal/repository"
	"github.com/Domenick1991/dronedelivery/internal/route"
	"github.com/Domenick1991/dronedelivery/internal/service/availability"
	"github.com/Domenick1991/dronedelivery/internal/service/scheduler"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPickupTooSoon    = errors.New("pickup time is too soon")
	ErrNotReschedulable = errors.New("delivery has already started")
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookDeliveryInput) (*domain.Delivery, error)
	Reschedule(ctx context.Context, id int64, input RescheduleInput) (*domain.Delivery, error)
	Cancel(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Delivery, error)
	List(ctx context.Context) ([]domain.Delivery, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Delivery, error)
}

type Resolver interface {
	Resolve(ctx context.Context, excludeDeliveryID int64, pickup time.Time, candidate int64) ([]int64, int64, error)
	IsAvailable(ctx context.Context, droneID, excludeDeliveryID int64, pickup time.Time) (bool, error)
}

type Locker interface {
	// AcquireDroneLock returns the owning token, or "" when the drone is
	// already locked.
	AcquireDroneLock(ctx context.Context, droneID int64, ttl time.Duration) (string, error)
	ReleaseDroneLock(ctx context.Context, droneID int64, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookDeliveryInput struct {
	StartAddress string    `json:"start_address"`
	EndAddress   string    `json:"end_address"`
	PickupTime   time.Time `json:"pickup_time"`
	DroneID      int64     `json:"drone_id,omitempty"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name"`
}

// RescheduleInput changes only the fields that are set.
type RescheduleInput struct {
	StartAddress *string    `json:"start_address,omitempty"`
	EndAddress   *string    `json:"end_address,omitempty"`
	PickupTime   *time.Time `json:"pickup_time,omitempty"`
	DroneID      *int64     `json:"drone_id,omitempty"`
}

type BookingService struct {
	deliveries   repository.DeliveryRepository
	resolver     Resolver
	scheduler    scheduler.SchedulerUseCase
	routes       route.Provider
	locker       Locker
	drones       DroneReader
	producer     Producer
	changedTopic string
	deletedTopic string
	minLeadTime  time.Duration
	lockTTL      time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

type BookingServiceOption func(*BookingService)

func WithDeletedTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.deletedTopic = topic
	}
}

// WithDroneReader resolves drone nicknames for delivery-changed events.
func WithDroneReader(drones DroneReader) BookingServiceOption {
	return func(s *BookingService) {
		s.drones = drones
	}
}

func WithMinLeadTime(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.minLeadTime = d
	}
}

func WithLockTTL(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lockTTL = d
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	deliveries repository.DeliveryRepository,
	resolver Resolver,
	sched scheduler.SchedulerUseCase,
	routes route.Provider,
	locker Locker,
	producer Producer,
	changedTopic string,
	logger *slog.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		deliveries:   deliveries,
		resolver:     resolver,
		scheduler:    sched,
		routes:       routes,
		locker:       locker,
		producer:     producer,
		changedTopic: changedTopic,
		minLeadTime:  time.Minute,
		lockTTL:      30 * time.Second,
		now:          time.Now,
		logger:       logger.With("component", "booking"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) Book(ctx context.Context, input BookDeliveryInput) (*domain.Delivery, error) {
	input.StartAddress = strings.TrimSpace(input.StartAddress)
	input.EndAddress = strings.TrimSpace(input.EndAddress)
	switch {
	case input.StartAddress == "":
		return nil, fmt.Errorf("%w: start address is required", ErrInvalidInput)
	case input.EndAddress == "":
		return nil, fmt.Errorf("%w: end address is required", ErrInvalidInput)
	case input.UserID <= 0:
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	case input.DroneID < 0:
		return nil, fmt.Errorf("%w: drone id must not be negative", ErrInvalidInput)
	}
	if err := s.checkLeadTime(input.PickupTime); err != nil {
		return nil, err
	}

	r, err := s.lookupRoute(ctx, input.StartAddress, input.EndAddress)
	if err != nil {
		return nil, err
	}

	delivery := &domain.Delivery{
		StartAddress:   input.StartAddress,
		EndAddress:     input.EndAddress,
		Start:          r.Start,
		End:            r.End,
		Status:         domain.DeliveryStatusScheduled,
		UserID:         input.UserID,
		UserName:       input.UserName,
		TrackingNumber: uuid.NewString(),
	}
	if err := delivery.Schedule(input.PickupTime, r.Duration); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	lock, err := s.reserveDrone(ctx, 0, delivery.PickupTime, input.DroneID)
	if err != nil {
		return nil, err
	}
	defer s.releaseDrone(lock)
	delivery.DroneID = lock.droneID

	if err := s.deliveries.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	key, err := s.scheduler.Schedule(ctx, delivery.ID, delivery.PickupTime)
	if err != nil {
		s.rollback(ctx, delivery.ID)
		return nil, fmt.Errorf("schedule delivery: %w", err)
	}
	delivery.SchedulerJobKey = key

	if err := s.deliveries.UpdateSchedule(ctx, delivery); err != nil {
		if cerr := s.scheduler.Cancel(ctx, key); cerr != nil {
			s.logger.Warn("cancel job after failed booking", "job_key", key, "error", cerr)
		}
		s.rollback(ctx, delivery.ID)
		return nil, fmt.Errorf("store job key: %w", err)
	}

	s.logger.Info("delivery booked", "delivery_id", delivery.ID, "drone_id", delivery.DroneID, "pickup_time", delivery.PickupTime)
	s.publishChanged(ctx, delivery)
	return delivery, nil
}

// Reschedule moves a delivery that has not started yet. The drone is kept
// when it is still free at the new pickup time.
func (s *BookingService) Reschedule(ctx context.Context, id int64, input RescheduleInput) (*domain.Delivery, error) {
	current, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.DeliveryStatusScheduled {
		return nil, fmt.Errorf("%w: delivery %d is %s", ErrNotReschedulable, id, current.Status)
	}

	updated := *current
	duration := current.RouteDuration()
	if input.StartAddress != nil || input.EndAddress != nil {
		if input.StartAddress != nil {
			updated.StartAddress = strings.TrimSpace(*input.StartAddress)
		}
		if input.EndAddress != nil {
			updated.EndAddress = strings.TrimSpace(*input.EndAddress)
		}
		if updated.StartAddress == "" || updated.EndAddress == "" {
			return nil, fmt.Errorf("%w: addresses must not be empty", ErrInvalidInput)
		}
		r, err := s.lookupRoute(ctx, updated.StartAddress, updated.EndAddress)
		if err != nil {
			return nil, err
		}
		updated.Start, updated.End = r.Start, r.End
		duration = r.Duration
	}

	pickup := current.PickupTime
	if input.PickupTime != nil {
		pickup = *input.PickupTime
	}
	if err := s.checkLeadTime(pickup); err != nil {
		return nil, err
	}
	if err := updated.Schedule(pickup, duration); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	candidate := current.DroneID
	if input.DroneID != nil {
		candidate = *input.DroneID
	}
	lock, err := s.reserveDrone(ctx, id, pickup, candidate)
	if err != nil {
		return nil, err
	}
	defer s.releaseDrone(lock)
	updated.DroneID = lock.droneID

	key, err := s.scheduler.Reschedule(ctx, current.SchedulerJobKey, id, pickup)
	if err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			// The start trigger already fired; the flight is under way.
			return nil, fmt.Errorf("%w: delivery %d has been dispatched", ErrNotReschedulable, id)
		}
		return nil, fmt.Errorf("reschedule delivery: %w", err)
	}
	updated.SchedulerJobKey = key

	if err := s.deliveries.UpdateSchedule(ctx, &updated); err != nil {
		s.restoreSchedule(ctx, current, key)
		return nil, fmt.Errorf("update delivery: %w", err)
	}

	s.logger.Info("delivery rescheduled", "delivery_id", id, "drone_id", updated.DroneID, "pickup_time", pickup)
	s.publishChanged(ctx, &updated)
	return &updated, nil
}

// Cancel removes the delivery and its pending trigger. A trigger that has
// already fired cannot be recalled.
func (s *BookingService) Cancel(ctx context.Context, id int64) error {
	current, err := s.deliveries.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if current.SchedulerJobKey != "" {
		if err := s.scheduler.Cancel(ctx, current.SchedulerJobKey); err != nil {
			s.logger.Warn("cancel job", "delivery_id", id, "job_key", current.SchedulerJobKey, "error", err)
		}
	}

	if err := s.deliveries.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("delivery cancelled", "delivery_id", id)
	if s.producer != nil && s.deletedTopic != "" {
		event := kafka.DeliveryDeletedEvent{
			EventID:        uuid.NewString(),
			EventDateTime:  s.now(),
			DeliveryID:     id,
			TrackingNumber: current.TrackingNumber,
		}
		if err := s.producer.Publish(ctx, s.deletedTopic, strconv.FormatInt(id, 10), event); err != nil {
			s.logger.Warn("publish delivery deleted", "delivery_id", id, "error", err)
		}
	}
	return nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (*domain.Delivery, error) {
	return s.deliveries.GetByID(ctx, id)
}

func (s *BookingService) List(ctx context.Context) ([]domain.Delivery, error) {
	return s.deliveries.List(ctx)
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64) ([]domain.Delivery, error) {
	return s.deliveries.ListByUser(ctx, userID)
}

func (s *BookingService) checkLeadTime(pickup time.Time) error {
	if pickup.IsZero() {
		return fmt.Errorf("%w: pickup time is required", ErrInvalidInput)
	}
	earliest := s.now().Add(s.minLeadTime)
	if pickup.Before(earliest) {
		return fmt.Errorf("%w: must be at or after %s", ErrPickupTooSoon, earliest.Format(time.RFC3339))
	}
	return nil
}

func (s *BookingService) lookupRoute(ctx context.Context, start, end string) (*route.Route, error) {
	r, err := s.routes.Directions(ctx, start, end)
	if err != nil {
		if errors.Is(err, route.ErrNoRoute) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("lookup route: %w", err)
	}
	return r, nil
}

// restoreSchedule puts the trigger back at the stored pickup time after the
// row update of a reschedule failed, so the job and the row agree again.
func (s *BookingService) restoreSchedule(ctx context.Context, current *domain.Delivery, newKey string) {
	log := s.logger.With("delivery_id", current.ID)
	if err := s.scheduler.Cancel(ctx, newKey); err != nil {
		log.Error("cancel job after failed reschedule", "job_key", newKey, "error", err)
	}

	key, err := s.scheduler.Schedule(ctx, current.ID, current.PickupTime)
	if err != nil {
		log.Error("restore job after failed reschedule", "pickup_time", current.PickupTime, "error", err)
		return
	}
	restored := *current
	restored.SchedulerJobKey = key
	if err := s.deliveries.UpdateSchedule(ctx, &restored); err != nil {
		log.Error("store restored job key", "job_key", key, "error", err)
	}
}

type droneLock struct {
	droneID int64
	token   string
}

// reserveDrone picks a free drone and locks it. The resolver's choice is
// tried first, then the other free drones in id order. Each drone is checked
// again under its lock so two concurrent bookings cannot take the same one.
func (s *BookingService) reserveDrone(ctx context.Context, excludeID int64, pickup time.Time, candidate int64) (droneLock, error) {
	available, selected, err := s.resolver.Resolve(ctx, excludeID, pickup, candidate)
	if err != nil {
		return droneLock{}, err
	}

	order := make([]int64, 0, len(available))
	order = append(order, selected)
	for _, id := range available {
		if id != selected {
			order = append(order, id)
		}
	}

	for _, id := range order {
		lock := droneLock{droneID: id}
		if s.locker != nil {
			token, err := s.locker.AcquireDroneLock(ctx, id, s.lockTTL)
			if err != nil {
				return droneLock{}, fmt.Errorf("lock drone %d: %w", id, err)
			}
			if token == "" {
				s.logger.Debug("drone locked by another booking", "drone_id", id)
				continue
			}
			lock.token = token
		}

		free, err := s.resolver.IsAvailable(ctx, id, excludeID, pickup)
		if err != nil {
			s.releaseDrone(lock)
			return droneLock{}, err
		}
		if !free {
			s.releaseDrone(lock)
			continue
		}
		return lock, nil
	}
	return droneLock{}, availability.ErrNoDroneAvailable
}

func (s *BookingService) releaseDrone(lock droneLock) {
	if s.locker == nil {
		return
	}
	if err := s.locker.ReleaseDroneLock(context.Background(), lock.droneID, lock.token); err != nil {
		s.logger.Warn("release drone lock", "drone_id", lock.droneID, "error", err)
	}
}

func (s *BookingService) rollback(ctx context.Context, deliveryID int64) {
	if err := s.deliveries.Delete(ctx, deliveryID); err != nil {
		s.logger.Error("roll back delivery", "delivery_id", deliveryID, "error", err)
	}
}

func (s *BookingService) publishChanged(ctx context.Context, d *domain.Delivery) {
	if s.producer == nil || s.changedTopic == "" {
		return
	}
	var nickName string
	if s.drones != nil {
		if drone, err := s.drones.GetByID(ctx, d.DroneID); err != nil {
			s.logger.Warn("load drone", "drone_id", d.DroneID, "error", err)
		} else {
			nickName = drone.NickName
		}
	}
	event := kafka.NewDeliveryEvent(d, nickName, s.now())
	if err := s.producer.Publish(ctx, s.changedTopic, strconv.FormatInt(d.ID, 10), event); err != nil {
		s.logger.Warn("publish delivery changed", "delivery_id", d.ID, "error", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
