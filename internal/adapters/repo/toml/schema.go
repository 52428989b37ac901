package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Sessions []sessionSchema `toml:"sessions"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported sessions schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	Profile    string     `toml:"profile"`
	User       userSchema `toml:"user"`
	SecretRef  string     `toml:"secret_ref"`
	ExpiresAt  string     `toml:"expires_at,omitempty"`
	LoggedInAt string     `toml:"logged_in_at,omitempty"`
}

type userSchema struct {
	ID    string `toml:"id"`
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
	Role  string `toml:"role,omitempty"`
}
