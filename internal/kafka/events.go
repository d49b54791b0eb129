package kafka

import (
	"time"

	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/google/uuid"
)

type TrackingSignal string

const (
	TrackingSignalStart TrackingSignal = "START"
	TrackingSignalEnd   TrackingSignal = "END"
)

// DeliveryEvent is the full delivery snapshot carried by
// delivery-start-time-reached and delivery-changed.
type DeliveryEvent struct {
	EventID          string    `json:"eventId,omitempty"`
	EventDateTime    time.Time `json:"eventDateTime,omitzero"`
	DeliveryID       int64     `json:"deliveryId,omitempty"`
	StartAddress     string    `json:"startAddress,omitempty"`
	EndAddress       string    `json:"endAddress,omitempty"`
	StartLatitude    float64   `json:"startLatitude,omitempty"`
	StartLongitude   float64   `json:"startLongitude,omitempty"`
	EndLatitude      float64   `json:"endLatitude,omitempty"`
	EndLongitude     float64   `json:"endLongitude,omitempty"`
	PickupTime       time.Time `json:"pickupTime,omitzero"`
	EstimatedArrival time.Time `json:"estimatedArrival,omitzero"`
	TrackingNumber   string    `json:"trackingNumber,omitempty"`
	DeliveryStatus   string    `json:"deliveryStatus,omitempty"`
	DroneID          int64     `json:"droneId,omitempty"`
	DroneNickName    string    `json:"droneNickName,omitempty"`
	UserID           int64     `json:"userId,omitempty"`
	UserName         string    `json:"userName,omitempty"`
}

func NewDeliveryEvent(d *domain.Delivery, droneNickName string, now time.Time) DeliveryEvent {
	return DeliveryEvent{
		EventID:          uuid.NewString(),
		EventDateTime:    now,
		DeliveryID:       d.ID,
		StartAddress:     d.StartAddress,
		EndAddress:       d.EndAddress,
		StartLatitude:    d.Start.Latitude,
		StartLongitude:   d.Start.Longitude,
		EndLatitude:      d.End.Latitude,
		EndLongitude:     d.End.Longitude,
		PickupTime:       d.PickupTime,
		EstimatedArrival: d.EstimatedArrival,
		TrackingNumber:   d.TrackingNumber,
		DeliveryStatus:   string(d.Status),
		DroneID:          d.DroneID,
		DroneNickName:    droneNickName,
		UserID:           d.UserID,
		UserName:         d.UserName,
	}
}

type DeliveryDeletedEvent struct {
	EventID        string    `json:"eventId,omitempty"`
	EventDateTime  time.Time `json:"eventDateTime,omitzero"`
	DeliveryID     int64     `json:"deliveryId,omitempty"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
}

type DroneStatusChangedEvent struct {
	EventID       string    `json:"eventId,omitempty"`
	EventDateTime time.Time `json:"eventDateTime,omitzero"`
	DroneID       int64     `json:"droneId,omitempty"`
	NickName      string    `json:"nickName,omitempty"`
	DroneStatus   string    `json:"droneStatus,omitempty"`
}

type PositionEvent struct {
	EventID        string         `json:"eventId,omitempty"`
	TrackingNumber string         `json:"trackingNumber,omitempty"`
	TrackingSignal TrackingSignal `json:"trackingSignal,omitempty"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
}
