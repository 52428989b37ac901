package backend

import (
	"context"
	"net/url"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type Notifications struct {
	*resource
}

func (n *Notifications) List(ctx context.Context, unreadOnly bool) ([]domain.Notification, error) {
	query := url.Values{}
	if unreadOnly {
		query.Set("unread", "true")
	}

	return listOf[domain.Notification](ctx, n.resource, get("/notifications", query), "Error fetching notifications", "notifications")
}

func (n *Notifications) MarkRead(ctx context.Context, id string) error {
	if err := checkID("notification", id); err != nil {
		return err
	}

	_, err := n.send(ctx, put("/notifications/"+id+"/read", nil), "Error marking notification as read")
	return err
}

func (n *Notifications) MarkAllRead(ctx context.Context) error {
	_, err := n.send(ctx, put("/notifications/read-all", nil), "Error marking notifications as read")
	return err
}

func (n *Notifications) Delete(ctx context.Context, id string) error {
	if err := checkID("notification", id); err != nil {
		return err
	}

	_, err := n.send(ctx, del("/notifications/"+id), "Error deleting notification")
	return err
}
