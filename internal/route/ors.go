package route

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	geocodeCacheSize = 1024
	geocodeCacheTTL  = 24 * time.Hour
)

// ORSProvider implements Provider using OpenRouteService geocoding and
// directions. It is safe for concurrent use.
type ORSProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	maxWaypoints int
	geocodes     *expirable.LRU[string, domain.Coordinates]
}

func NewORSProvider(apiKey, baseURL string, maxWaypoints int) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	return &ORSProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		profile:      "driving-car",
		maxWaypoints: maxWaypoints,
		geocodes:     expirable.NewLRU[string, domain.Coordinates](geocodeCacheSize, nil, geocodeCacheTTL),
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

func (o *ORSProvider) Directions(ctx context.Context, startAddress, endAddress string) (*Route, error) {
	start, err := o.geocode(ctx, startAddress)
	if err != nil {
		return nil, fmt.Errorf("geocode start address: %w", err)
	}
	end, err := o.geocode(ctx, endAddress)
	if err != nil {
		return nil, fmt.Errorf("geocode end address: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	body, err := json.Marshal(map[string][][]float64{
		"coordinates": {{start.Longitude, start.Latitude}, {end.Longitude, end.Latitude}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	})
	if err != nil {
		return nil, fmt.Errorf("execute directions request: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return nil, ErrNoRoute
	}

	feature := decoded.Features[0]
	line := make([]domain.Coordinates, 0, len(feature.Geometry.Coordinates))
	for _, c := range feature.Geometry.Coordinates {
		if len(c) < 2 {
			return nil, errors.New("invalid coordinate format in route geometry")
		}
		line = append(line, domain.Coordinates{Latitude: c[1], Longitude: c[0]})
	}

	return &Route{
		Start:     start,
		End:       end,
		Waypoints: sample(interior(line), o.maxWaypoints),
		Duration:  time.Duration(feature.Properties.Summary.Duration * float64(time.Second)),
		Distance:  feature.Properties.Summary.Distance,
	}, nil
}

func (o *ORSProvider) geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return domain.Coordinates{}, errors.New("address must be non-empty")
	}
	if c, ok := o.geocodes.Get(norm); ok {
		return c, nil
	}

	endpoint := o.baseURL + "/geocode/search"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", address, ErrNoRoute)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}
	c := domain.Coordinates{Latitude: coords[1], Longitude: coords[0]}
	o.geocodes.Add(norm, c)
	return c, nil
}

func interior(line []domain.Coordinates) []domain.Coordinates {
	if len(line) <= 2 {
		return nil
	}
	return line[1 : len(line)-1]
}

// sample keeps at most n evenly spaced points, preserving order.
func sample(points []domain.Coordinates, n int) []domain.Coordinates {
	if n <= 0 || len(points) <= n {
		return points
	}
	out := make([]domain.Coordinates, 0, n)
	step := float64(len(points)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, points[int(float64(i)*step)])
	}
	return out
}
