package backend

import (
	"context"
	"net/url"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type Dashboard struct {
	*resource
}

func (d *Dashboard) Stats(ctx context.Context) (domain.DashboardStats, error) {
	return oneOf[domain.DashboardStats](ctx, d.resource, get("/dashboard/stats", nil), "Error fetching dashboard stats", "stats")
}

func (d *Dashboard) RecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return listOf[domain.Activity](ctx, d.resource, get("/dashboard/activity", withLimit(url.Values{}, limit)),
		"Error fetching recent activity", "activities", "activity")
}
