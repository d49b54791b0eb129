package domain

import "fmt"

type DroneStatus string

const (
	DroneStatusParked                 DroneStatus = "PARKED"
	DroneStatusInFlightToStartAddress DroneStatus = "IN_FLIGHT_TO_START_ADDRESS"
	DroneStatusInFlightToEndAddress   DroneStatus = "IN_FLIGHT_TO_END_ADDRESS"
	DroneStatusInFlightToHeadOffice   DroneStatus = "IN_FLIGHT_TO_HEAD_OFFICE"
)

func ParseDroneStatus(s string) (DroneStatus, error) {
	switch st := DroneStatus(s); st {
	case DroneStatusParked, DroneStatusInFlightToStartAddress, DroneStatusInFlightToEndAddress, DroneStatusInFlightToHeadOffice:
		return st, nil
	}
	return "", fmt.Errorf("unknown drone status %q", s)
}

type OperationStatus string

const (
	OperationStatusOperational OperationStatus = "OPERATIONAL"
	OperationStatusMaintenance OperationStatus = "MAINTENANCE"
)

type Drone struct {
	ID              int64           `json:"id"`
	NickName        string          `json:"nick_name"`
	Model           string          `json:"model"`
	Status          DroneStatus     `json:"drone_status"`
	OperationStatus OperationStatus `json:"operation_status"`
}
