package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/ariefcatur/go-retail-backoffice/internal/database"
	"github.com/ariefcatur/go-retail-backoffice/internal/notify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username   string  `json:"username" validate:"required,min=3,max=64"`
	Password   string  `json:"password" validate:"required,min=8,max=72"`
	Role       Role    `json:"role" validate:"required,oneof=Admin Employee"`
	Name       string  `json:"name" validate:"max=128"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
}

type Service struct {
	Users    *UserRepo
	Tokens   *Tokens
	Notifier notify.Notifier
	Activity *activity.Trail
	Log      logrus.FieldLogger
	Now      func() time.Time
	// Cost untuk bcrypt; 0 = bcrypt.DefaultCost
	Cost int
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) hash(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.Users.ByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, database.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	token, exp, err := s.Tokens.Issue(Principal{UserID: u.ID, Role: u.Role, Name: u.Name})
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, Role: u.Role, Name: u.Name, Email: u.Email}, nil
}

func (s *Service) Register(ctx context.Context, actor Principal, in RegisterInput) (User, error) {
	if err := actor.RequireAdmin(); err != nil {
		return User{}, err
	}
	return s.create(ctx, actor.UserID, in)
}

// Bootstrap creates a user without an authenticated caller. Only cmd/useradd uses it.
func (s *Service) Bootstrap(ctx context.Context, in RegisterInput) (User, error) {
	return s.create(ctx, "", in)
}

func (s *Service) create(ctx context.Context, by string, in RegisterInput) (User, error) {
	if !in.Role.Valid() {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return User{}, err
	}
	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Role:         in.Role,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Department:   in.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Insert(ctx, u); err != nil {
		return User{}, err
	}
	if by == "" {
		by = u.ID
	}
	s.Activity.Record(ctx, by, activity.ActionRegisterUser, fmt.Sprintf("Registered user %s", u.Username))
	return u, nil
}

// ResetPassword replaces the password of the user owning email with a random
// one and mails it. An unknown email is not reported to the caller.
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, database.ErrNotFound) {
		s.Log.WithField("email", email).Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	password := rand.Text()
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.Users.SetPassword(ctx, u.ID, hash, s.now()); err != nil {
		return err
	}

	err = s.Notifier.Send(ctx, notify.Message{
		To:      email,
		Subject: "Password Reset",
		Body:    fmt.Sprintf("Your new password is: %s", password),
	})
	if err != nil {
		s.Log.WithError(err).WithField("user_id", u.ID).Warn("password reset mail failed")
	}
	s.Activity.Record(ctx, u.ID, activity.ActionResetPassword, fmt.Sprintf("Reset password for %s", u.Username))
	return nil
}
