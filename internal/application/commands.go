package application

import (
	"github.com/ecofuelconnect/efc/internal/domain"
)

type LoginCommand struct {
	Profile  domain.ProfileName
	Email    string
	Password string
}

func (c LoginCommand) profile() domain.ProfileName {
	return profileOrDefault(c.Profile)
}

func profileOrDefault(profile domain.ProfileName) domain.ProfileName {
	if profile == "" {
		return domain.DefaultProfile
	}
	return profile
}
