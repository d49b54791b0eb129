package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Route     RouteConfig     `yaml:"route"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers              []string `yaml:"brokers"`
	AppGroupID           string   `yaml:"app_group_id"`
	WorkerGroupID        string   `yaml:"worker_group_id"`
	DeliveryStartTopic   string   `yaml:"delivery_start_topic"`
	DroneStatusTopic     string   `yaml:"drone_status_topic"`
	DronePositionTopic   string   `yaml:"drone_position_topic"`
	DeliveryChangedTopic string   `yaml:"delivery_changed_topic"`
	DeliveryDeletedTopic string   `yaml:"delivery_deleted_topic"`
}

type BookingConfig struct {
	ReturnBufferMinutes  int `yaml:"return_buffer_minutes"`
	MinLeadTimeMinutes   int `yaml:"min_lead_time_minutes"`
	DroneLockTTLSeconds  int `yaml:"drone_lock_ttl_seconds"`
	FleetCacheTTLSeconds int `yaml:"fleet_cache_ttl_seconds"`
	FleetSize            int `yaml:"fleet_size"`
}

func (b BookingConfig) ReturnBuffer() time.Duration {
	return time.Duration(b.ReturnBufferMinutes) * time.Minute
}

func (b BookingConfig) MinLeadTime() time.Duration {
	return time.Duration(b.MinLeadTimeMinutes) * time.Minute
}

func (b BookingConfig) DroneLockTTL() time.Duration {
	return time.Duration(b.DroneLockTTLSeconds) * time.Second
}

func (b BookingConfig) FleetCacheTTL() time.Duration {
	return time.Duration(b.FleetCacheTTLSeconds) * time.Second
}

type SimulatorConfig struct {
	HeadOfficeLatitude  float64 `yaml:"head_office_latitude"`
	HeadOfficeLongitude float64 `yaml:"head_office_longitude"`
	TransitMaxMillis    int     `yaml:"transit_max_ms"`
	LoadingMillis       int     `yaml:"loading_ms"`
	WaypointMillis      int     `yaml:"waypoint_ms"`
}

type RouteConfig struct {
	Provider  string  `yaml:"provider"`
	BaseURL   string  `yaml:"base_url"`
	APIKey    string  `yaml:"api_key"`
	Waypoints int     `yaml:"straight_line_waypoints"`
	SpeedKMH  float64 `yaml:"speed_kmh"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}

	k := &c.Kafka
	setString(&k.AppGroupID, "rentadrone")
	setString(&k.WorkerGroupID, "dronesim")
	setString(&k.DeliveryStartTopic, "delivery-start-time-reached")
	setString(&k.DroneStatusTopic, "drone-status-changed")
	setString(&k.DronePositionTopic, "drone-position-changed")
	setString(&k.DeliveryChangedTopic, "delivery-changed")
	setString(&k.DeliveryDeletedTopic, "delivery-deleted")

	b := &c.Booking
	setInt(&b.ReturnBufferMinutes, 15)
	setInt(&b.MinLeadTimeMinutes, 1)
	setInt(&b.DroneLockTTLSeconds, 30)
	setInt(&b.FleetCacheTTLSeconds, 60)
	setInt(&b.FleetSize, 10)

	s := &c.Simulator
	if s.HeadOfficeLatitude == 0 && s.HeadOfficeLongitude == 0 {
		// Eiffel Tower
		s.HeadOfficeLatitude = 48.857950
		s.HeadOfficeLongitude = 2.295390
	}
	setInt(&s.TransitMaxMillis, 1000)
	setInt(&s.LoadingMillis, 5000)
	setInt(&s.WaypointMillis, 3000)

	r := &c.Route
	setString(&r.Provider, "straight")
	setString(&r.BaseURL, "https://api.openrouteservice.org")
	setInt(&r.Waypoints, 5)
	if r.SpeedKMH == 0 {
		r.SpeedKMH = 40
	}

	setString(&c.Log.Level, "info")
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}
