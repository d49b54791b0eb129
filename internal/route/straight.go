package route

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
)

const earthRadiusMeters = 6371008.8

// StraightLineProvider flies the great-circle line between two addresses
// given as "lat,lng". It needs no external service.
type StraightLineProvider struct {
	speedMPS  float64
	waypoints int
}

func NewStraightLineProvider(speedKMH float64, waypoints int) *StraightLineProvider {
	if speedKMH <= 0 {
		speedKMH = 40
	}
	return &StraightLineProvider{speedMPS: speedKMH * 1000 / 3600, waypoints: waypoints}
}

func (p *StraightLineProvider) Directions(_ context.Context, startAddress, endAddress string) (*Route, error) {
	start, err := ParseCoordinates(startAddress)
	if err != nil {
		return nil, fmt.Errorf("start address: %w", err)
	}
	end, err := ParseCoordinates(endAddress)
	if err != nil {
		return nil, fmt.Errorf("end address: %w", err)
	}

	distance := HaversineMeters(start, end)
	waypoints := make([]domain.Coordinates, 0, p.waypoints)
	for i := 1; i <= p.waypoints; i++ {
		f := float64(i) / float64(p.waypoints+1)
		waypoints = append(waypoints, domain.Coordinates{
			Latitude:  start.Latitude + (end.Latitude-start.Latitude)*f,
			Longitude: start.Longitude + (end.Longitude-start.Longitude)*f,
		})
	}

	return &Route{
		Start:     start,
		End:       end,
		Waypoints: waypoints,
		Duration:  time.Duration(distance / p.speedMPS * float64(time.Second)).Round(time.Second),
		Distance:  distance,
	}, nil
}

// ParseCoordinates reads a "lat,lng" pair.
func ParseCoordinates(s string) (domain.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Coordinates{}, fmt.Errorf("%q is not a lat,lng pair: %w", s, ErrNoRoute)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", parts[1], err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Coordinates{}, fmt.Errorf("coordinates %q out of range: %w", s, ErrNoRoute)
	}
	return domain.Coordinates{Latitude: lat, Longitude: lng}, nil
}

// HaversineMeters is the great-circle distance between two points.
func HaversineMeters(a, b domain.Coordinates) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * degToRad
	dLng := (b.Longitude - a.Longitude) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*degToRad)*math.Cos(b.Latitude*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
