package domain

import "time"

type RewardSummary struct {
	Coins          int64   `json:"coins"`
	CashValue      float64 `json:"cashValue"`
	ConversionRate float64 `json:"conversionRate,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	TotalEarned    int64   `json:"totalEarned,omitempty"`
	TotalConverted int64   `json:"totalConverted,omitempty"`
}

type RewardTransaction struct {
	ID          string    `json:"_id"`
	Type        string    `json:"type"`
	Coins       int64     `json:"coins"`
	CashAmount  float64   `json:"cashAmount,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ConversionRequest struct {
	Coins int64 `json:"coins" validate:"required,gt=0"`
}

type ConversionResult struct {
	ConvertedCoins int64   `json:"convertedCoins"`
	CashAmount     float64 `json:"cashAmount"`
	RemainingCoins int64   `json:"remainingCoins"`
	Reference      string  `json:"reference,omitempty"`
}
