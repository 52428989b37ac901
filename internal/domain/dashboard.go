package domain

import (
	"fmt"
	"time"
)

type DashboardStats struct {
	TotalUsers         int64   `json:"totalUsers"`
	TotalSuppliers     int64   `json:"totalSuppliers,omitempty"`
	TotalProducers     int64   `json:"totalProducers,omitempty"`
	TotalSchools       int64   `json:"totalSchools,omitempty"`
	TotalWasteKg       float64 `json:"totalWaste"`
	TotalFuelProduced  float64 `json:"totalFuelProduced"`
	PendingRequests    int64   `json:"pendingRequests"`
	CompletedRequests  int64   `json:"completedRequests"`
	PendingEntries     int64   `json:"pendingVerifications,omitempty"`
	CoinsInCirculation int64   `json:"totalCoins,omitempty"`
	CO2SavedKg         float64 `json:"co2Saved,omitempty"`
}

type Activity struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Actor       string    `json:"user,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CompactNumber renders large counters the way the dashboards do: 1.2k, 3.4M.
func CompactNumber(value int64) string {
	switch {
	case value >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(value)/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("%.1fk", float64(value)/1_000)
	default:
		return fmt.Sprintf("%d", value)
	}
}
