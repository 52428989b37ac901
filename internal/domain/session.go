package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
	RoleProducer Role = "producer"
	RoleSchool   Role = "school"
)

func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleAdmin, RoleSupplier, RoleProducer, RoleSchool:
		return role, nil
	default:
		return "", fmt.Errorf("unsupported role %q", raw)
	}
}

type ProfileName string

const DefaultProfile ProfileName = "default"

// Session is the locally persisted half of a login. The bearer token itself
// lives in a secret store under CredentialRef.
type Session struct {
	Profile       ProfileName
	UserID        string
	Name          string
	Email         string
	Role          Role
	CredentialRef string
	ExpiresAt     time.Time
	LoggedInAt    time.Time
}

func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}

	return !now.Before(s.ExpiresAt)
}

func (s Session) DisplayName() string {
	switch {
	case s.Name != "" && s.Email != "":
		return fmt.Sprintf("%s <%s>", s.Name, s.Email)
	case s.Email != "":
		return s.Email
	case s.Name != "":
		return s.Name
	default:
		return s.UserID
	}
}

func CredentialKey(profile ProfileName) string {
	return fmt.Sprintf("efc/sessions/%s/token", profile)
}
