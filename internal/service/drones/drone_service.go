package drones

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/repository"
)

type DroneUseCase interface {
	List(ctx context.Context) ([]domain.Drone, error)
	GetByID(ctx context.Context, id int64) (*domain.Drone, error)
	UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error
}

type FleetCache interface {
	GetDrones(ctx context.Context) ([]domain.Drone, error)
	SetDrones(ctx context.Context, drones []domain.Drone) error
	InvalidateDrones(ctx context.Context) error
}

type DroneService struct {
	repo   repository.DroneRepository
	cache  FleetCache
	logger *slog.Logger
}

func NewDroneService(repo repository.DroneRepository, cache FleetCache, logger *slog.Logger) *DroneService {
	return &DroneService{repo: repo, cache: cache, logger: logger.With("component", "drones")}
}

// List returns the fleet ordered by id, served from the cache when possible.
func (s *DroneService) List(ctx context.Context) ([]domain.Drone, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetDrones(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("read fleet cache", "error", err)
		}
	}

	drones, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetDrones(ctx, drones); err != nil {
			s.logger.Warn("write fleet cache", "error", err)
		}
	}
	return drones, nil
}

func (s *DroneService) GetByID(ctx context.Context, id int64) (*domain.Drone, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DroneService) UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateDrones(ctx); err != nil {
			s.logger.Warn("invalidate fleet cache", "drone_id", id, "error", err)
		}
	}
	return nil
}

var _ DroneUseCase = (*DroneService)(nil)
