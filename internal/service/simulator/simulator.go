package simulator

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
	"github.com/Domenick1991/dronedelivery/internal/route"
	"github.com/google/uuid"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Delays struct {
	TransitMax time.Duration
	Loading    time.Duration
	Waypoint   time.Duration
}

type Topics struct {
	Status   string
	Position string
}

// Flight is the read-only snapshot one simulation run works on.
type Flight struct {
	DeliveryID     int64
	DroneID        int64
	DroneNickName  string
	TrackingNumber string
	StartAddress   string
	EndAddress     string
	Start          domain.Coordinates
	End            domain.Coordinates
	Waypoints      []domain.Coordinates
}

func FlightFromEvent(e kafka.DeliveryEvent) Flight {
	return Flight{
		DeliveryID:     e.DeliveryID,
		DroneID:        e.DroneID,
		DroneNickName:  e.DroneNickName,
		TrackingNumber: e.TrackingNumber,
		StartAddress:   e.StartAddress,
		EndAddress:     e.EndAddress,
		Start:          domain.Coordinates{Latitude: e.StartLatitude, Longitude: e.StartLongitude},
		End:            domain.Coordinates{Latitude: e.EndLatitude, Longitude: e.EndLongitude},
	}
}

type Simulator struct {
	producer   Publisher
	routes     route.Provider
	topics     Topics
	headOffice domain.Coordinates
	delays     Delays
	sleep      Sleeper
	randN      func(n int64) int64
	now        func() time.Time
	logger     *slog.Logger

	wg sync.WaitGroup
}

type Option func(*Simulator)

func WithSleeper(sleep Sleeper) Option {
	return func(s *Simulator) {
		s.sleep = sleep
	}
}

// WithRand replaces the source of the random transit delay. randN returns a
// value in [0, n).
func WithRand(randN func(n int64) int64) Option {
	return func(s *Simulator) {
		s.randN = randN
	}
}

func NewSimulator(producer Publisher, routes route.Provider, topics Topics, headOffice domain.Coordinates, delays Delays, logger *slog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		producer:   producer,
		routes:     routes,
		topics:     topics,
		headOffice: headOffice,
		delays:     delays,
		sleep:      sleepContext,
		randN:      rand.Int64N,
		now:        time.Now,
		logger:     logger.With("component", "simulator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleDeliveryStart enriches the delivery with its route waypoints and
// launches its flight. It returns without waiting for the flight.
func (s *Simulator) HandleDeliveryStart(ctx context.Context, event kafka.DeliveryEvent) error {
	if event.DeliveryID == 0 || event.DroneID == 0 {
		return errors.New("delivery start event without delivery or drone id")
	}
	flight := FlightFromEvent(event)

	if s.routes != nil && flight.StartAddress != "" && flight.EndAddress != "" {
		r, err := s.routes.Directions(ctx, flight.StartAddress, flight.EndAddress)
		if err != nil {
			s.logger.Warn("route lookup failed, flying without waypoints", "delivery_id", flight.DeliveryID, "error", err)
		} else {
			flight.Waypoints = r.Waypoints
		}
	}

	s.Start(ctx, flight)
	return nil
}

// Start runs the flight on its own goroutine.
func (s *Simulator) Start(ctx context.Context, f Flight) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Run(ctx, f); err != nil {
			s.logger.Error("flight aborted", "delivery_id", f.DeliveryID, "drone_id", f.DroneID, "error", err)
		}
	}()
}

// Wait blocks until every started flight has returned.
func (s *Simulator) Wait() {
	s.wg.Wait()
}

// Run flies head office, pickup, waypoints, drop-off and back, publishing a
// position event and then a status event on entering each state. Publish
// failures are logged and the flight goes on; only ctx ends it early.
func (s *Simulator) Run(ctx context.Context, f Flight) error {
	log := s.logger.With("delivery_id", f.DeliveryID, "drone_id", f.DroneID, "drone", f.DroneNickName)

	s.enter(ctx, log, f, domain.DroneStatusInFlightToStartAddress, s.headOffice, kafka.TrackingSignalStart)
	log.Info("flying to start address", "address", f.StartAddress, "lat", f.Start.Latitude, "lng", f.Start.Longitude)
	if err := s.sleep(ctx, s.transit()); err != nil {
		return err
	}

	s.enter(ctx, log, f, domain.DroneStatusInFlightToEndAddress, f.Start, "")
	log.Info("flying to end address", "address", f.EndAddress, "waypoints", len(f.Waypoints))
	if err := s.sleep(ctx, s.delays.Loading); err != nil {
		return err
	}
	for _, wp := range f.Waypoints {
		s.position(ctx, log, f, wp, "")
		if err := s.sleep(ctx, s.delays.Waypoint); err != nil {
			return err
		}
	}
	log.Info("delivered to end address")

	s.enter(ctx, log, f, domain.DroneStatusInFlightToHeadOffice, f.End, "")
	if err := s.sleep(ctx, s.transit()); err != nil {
		return err
	}

	s.enter(ctx, log, f, domain.DroneStatusParked, s.headOffice, kafka.TrackingSignalEnd)
	log.Info("arrived at head office")
	if err := s.sleep(ctx, s.transit()); err != nil {
		return err
	}

	log.Info("flight ended")
	return nil
}

func (s *Simulator) enter(ctx context.Context, log *slog.Logger, f Flight, status domain.DroneStatus, at domain.Coordinates, signal kafka.TrackingSignal) {
	s.position(ctx, log, f, at, signal)

	event := kafka.DroneStatusChangedEvent{
		EventID:       uuid.NewString(),
		EventDateTime: s.now(),
		DroneID:       f.DroneID,
		NickName:      f.DroneNickName,
		DroneStatus:   string(status),
	}
	if err := s.producer.Publish(ctx, s.topics.Status, strconv.FormatInt(f.DroneID, 10), event); err != nil {
		log.Warn("publish drone status", "status", status, "error", err)
	}
}

func (s *Simulator) position(ctx context.Context, log *slog.Logger, f Flight, at domain.Coordinates, signal kafka.TrackingSignal) {
	event := kafka.PositionEvent{
		EventID:        uuid.NewString(),
		TrackingNumber: f.TrackingNumber,
		TrackingSignal: signal,
		Latitude:       at.Latitude,
		Longitude:      at.Longitude,
	}
	if err := s.producer.Publish(ctx, s.topics.Position, strconv.FormatInt(f.DeliveryID, 10), event); err != nil {
		log.Warn("publish drone position", "lat", at.Latitude, "lng", at.Longitude, "error", err)
	}
}

func (s *Simulator) transit() time.Duration {
	if s.delays.TransitMax <= 0 {
		return 0
	}
	return time.Duration(s.randN(int64(s.delays.TransitMax)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
