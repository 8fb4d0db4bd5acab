package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-dashboard/internal/errors"
	"github.com/jrsteele09/go-dashboard/users"
)

// InitialiseSystem makes sure the configured admin account exists and holds the
// ADMIN role. A generated password is logged once, on creation.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	adminEmail := users.NormaliseEmail(s.config.GetAdminEmail())
	if err := s.auth.Validator().ValidateEmail(adminEmail); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] admin email %q: %w", adminEmail, err)
	}

	existing, err := s.repos.Users.GetByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		if err := s.repos.Users.SetRole(ctx, existing.ID, users.RoleAdmin); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to promote %s: %w", adminEmail, err)
		}
		log.Warn().Str("email", adminEmail).Msg("existing account promoted to ADMIN")
		return nil
	case !errors.Is(err, errors.ErrNotFound):
		return fmt.Errorf("[Server InitialiseSystem] failed to look up admin: %w", err)
	}

	generatedPassword, err := s.createAdmin(ctx, adminEmail, s.config.GetAdminPassword())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap admin: %w", err)
	}

	if generatedPassword != "" {
		log.Info().Msg("System Configuration:")
		log.Info().Msgf("   Base URL:   %s", s.config.GetBaseURL())
		log.Info().Msgf("   Admin:      %s", adminEmail)
		log.Info().Msgf("   Password:   %s", generatedPassword)
		log.Warn().Msg("Save this password now, it will not be shown again")
	} else {
		log.Info().Str("email", adminEmail).Msg("admin account created from ADMIN_PASSWORD")
	}
	return nil
}

// createAdmin stores the admin account and returns the password when it had to be
// generated
func (s *Server) createAdmin(ctx context.Context, email, password string) (generatedPassword string, err error) {
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createAdmin] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[server createAdmin] failed to hash password: %w", err)
	}

	admin := &users.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         users.RoleAdmin,
	}
	if err := s.repos.Users.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("[server createAdmin] failed to create admin: %w", err)
	}
	return generatedPassword, nil
}
