package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"verdant/internal/auth"
	"verdant/internal/logging"
	"verdant/internal/models"
	"verdant/internal/store"
)

type Accounts struct {
	users           store.Users
	tokens          *auth.Tokens
	allowRoleSignup bool
	clock           Clock
}

func NewAccounts(users store.Users, tokens *auth.Tokens, clock Clock, allowRoleSignup bool) *Accounts {
	return &Accounts{users: users, tokens: tokens, clock: clock, allowRoleSignup: allowRoleSignup}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Session is what register and login hand back to the client.
type Session struct {
	Token string
	User  models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	var details []string
	if in.Name == "" {
		details = append(details, "name is required")
	}
	if in.Email == "" {
		details = append(details, "email is required")
	}
	switch {
	case in.Password == "":
		details = append(details, "password is required")
	case len(in.Password) > auth.MaxPasswordBytes:
		details = append(details, fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	if len(details) > 0 {
		return nil, invalid("validation failed", details...)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr("user", err)
	}

	role := models.RoleUser
	if in.Role == models.RoleAdmin && s.allowRoleSignup {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, storeErr("user", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID.Hex()).Str("role", role).Msg("user registered")
	return s.session(user)
}

func (s *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, storeErr("user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	return s.session(user)
}

func (s *Accounts) Me(ctx context.Context, caller auth.Identity) (*models.User, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr("user", err)
	}
	return user, nil
}

func (s *Accounts) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: *user}, nil
}
