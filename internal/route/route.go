package route

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/dronedelivery/config"
	"github.com/Domenick1991/dronedelivery/internal/domain"
)

// ErrNoRoute is returned when no route can be found between two addresses.
var ErrNoRoute = errors.New("no route found")

// Route is the geometry and flight time between two addresses.
type Route struct {
	Start     domain.Coordinates
	End       domain.Coordinates
	Waypoints []domain.Coordinates
	Duration  time.Duration
	Distance  float64 // meters
}

// Provider resolves a route between two street addresses.
type Provider interface {
	Directions(ctx context.Context, startAddress, endAddress string) (*Route, error)
}

// New builds the provider selected by cfg.Provider.
func New(cfg config.RouteConfig) (Provider, error) {
	switch cfg.Provider {
	case "ors":
		return NewORSProvider(cfg.APIKey, cfg.BaseURL, cfg.Waypoints)
	case "straight", "":
		return NewStraightLineProvider(cfg.SpeedKMH, cfg.Waypoints), nil
	default:
		return nil, fmt.Errorf("unknown route provider %q", cfg.Provider)
	}
}
