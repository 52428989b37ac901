package domain

import (
	"fmt"
	"strings"
	"time"
)

type FuelRequestStatus string

const (
	FuelRequestPending   FuelRequestStatus = "pending"
	FuelRequestApproved  FuelRequestStatus = "approved"
	FuelRequestAssigned  FuelRequestStatus = "assigned"
	FuelRequestInTransit FuelRequestStatus = "in_transit"
	FuelRequestDelivered FuelRequestStatus = "delivered"
	FuelRequestRejected  FuelRequestStatus = "rejected"
	FuelRequestCancelled FuelRequestStatus = "cancelled"
)

func ParseFuelRequestStatus(raw string) (FuelRequestStatus, error) {
	status := FuelRequestStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case FuelRequestPending, FuelRequestApproved, FuelRequestAssigned, FuelRequestInTransit,
		FuelRequestDelivered, FuelRequestRejected, FuelRequestCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("unsupported fuel request status %q", raw)
	}
}

type FuelRequest struct {
	ID              string            `json:"_id"`
	RequesterID     string            `json:"requester,omitempty"`
	ProducerID      string            `json:"assignedProducer,omitempty"`
	FuelType        string            `json:"fuelType"`
	Quantity        float64           `json:"quantity"`
	Unit            string            `json:"unit,omitempty"`
	DeliveryAddress string            `json:"deliveryAddress,omitempty"`
	PreferredDate   time.Time         `json:"preferredDeliveryDate,omitzero"`
	Urgency         string            `json:"urgency,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Status          FuelRequestStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt,omitempty"`
	UpdatedAt       time.Time         `json:"updatedAt,omitempty"`
}

type FuelRequestInput struct {
	FuelType        string    `json:"fuelType" validate:"required,oneof=biogas biomethane compost bio-slurry"`
	Quantity        float64   `json:"quantity" validate:"required,gt=0"`
	Unit            string    `json:"unit,omitempty" validate:"omitempty,oneof=kg m3 litres"`
	DeliveryAddress string    `json:"deliveryAddress" validate:"required"`
	PreferredDate   time.Time `json:"preferredDeliveryDate,omitzero"`
	Urgency         string    `json:"urgency,omitempty" validate:"omitempty,oneof=low medium high"`
	Notes           string    `json:"notes,omitempty" validate:"max=500"`
}

type FuelRequestFilter struct {
	Status FuelRequestStatus
	Limit  int
}
