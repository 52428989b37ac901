package domain

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type WasteEntry struct {
	ID                 string             `json:"_id"`
	SupplierID         string             `json:"supplier,omitempty"`
	WasteType          string             `json:"wasteType"`
	Quantity           float64            `json:"quantity"`
	Unit               string             `json:"unit"`
	Location           string             `json:"location"`
	CollectionDate     time.Time          `json:"collectionDate"`
	Description        string             `json:"description,omitempty"`
	ImageURL           string             `json:"imageUrl,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty"`
	VerificationNotes  string             `json:"verificationNotes,omitempty"`
	CoinsAwarded       int64              `json:"coinsAwarded,omitempty"`
	CreatedAt          time.Time          `json:"createdAt,omitempty"`
}

type WasteEntryInput struct {
	WasteType      string    `json:"wasteType" validate:"required,oneof=food_waste agricultural animal_manure garden_waste other"`
	Quantity       float64   `json:"quantity" validate:"required,gt=0"`
	Unit           string    `json:"unit" validate:"required,oneof=kg tonnes litres"`
	Location       string    `json:"location" validate:"required"`
	CollectionDate time.Time `json:"collectionDate" validate:"required"`
	Description    string    `json:"description,omitempty" validate:"max=1000"`
	ImageURL       string    `json:"imageUrl,omitempty" validate:"omitempty,url"`
}

type WasteEntryFilter struct {
	Status    VerificationStatus
	WasteType string
	Limit     int
}

type VerificationDecision struct {
	Status VerificationStatus `json:"status" validate:"required,oneof=verified rejected"`
	Notes  string             `json:"notes,omitempty" validate:"max=500"`
}
