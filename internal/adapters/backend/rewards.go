package backend

import (
	"context"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type Rewards struct {
	*resource
}

func (r *Rewards) Summary(ctx context.Context) (domain.RewardSummary, error) {
	return oneOf[domain.RewardSummary](ctx, r.resource, get("/rewards", nil), "Error fetching rewards", "rewards", "summary")
}

func (r *Rewards) History(ctx context.Context) ([]domain.RewardTransaction, error) {
	return listOf[domain.RewardTransaction](ctx, r.resource, get("/rewards/history", nil),
		"Error fetching reward history", "transactions", "history")
}

// Convert turns coins into cash. The request is only retried when
// idempotencyKey is set, so a lost response can never convert twice.
func (r *Rewards) Convert(ctx context.Context, conversion domain.ConversionRequest, idempotencyKey string) (domain.ConversionResult, error) {
	if err := r.validator.check("conversion", conversion); err != nil {
		return domain.ConversionResult{}, err
	}

	req := post("/rewards/convert", conversion)
	req.IdempotencyKey = idempotencyKey

	return oneOf[domain.ConversionResult](ctx, r.resource, req, "Error converting coins", "conversion", "result")
}
