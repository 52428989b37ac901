package application

import (
	"time"

	"github.com/ecofuelconnect/efc/internal/domain"
)

type SessionStatus struct {
	Session   domain.Session
	Expired   bool
	ExpiresIn time.Duration
}

func statusFromSession(session domain.Session, now time.Time) SessionStatus {
	status := SessionStatus{
		Session: session,
		Expired: session.Expired(now),
	}
	if !session.ExpiresAt.IsZero() && !status.Expired {
		status.ExpiresIn = session.ExpiresAt.Sub(now)
	}

	return status
}
