// Package auth orchestrates login and signup: validate the form, call
// the backend, establish the session, and activate the user's cart.
package auth

import (
	"context"
	"errors"

	"github.com/durianostics/durianostics-client/internal/api"
	"github.com/durianostics/durianostics-client/internal/cart"
	"github.com/durianostics/durianostics-client/internal/session"
	"github.com/durianostics/durianostics-client/pkg/logger"
	"github.com/durianostics/durianostics-client/pkg/validate"
)

var (
	errAPIRequired      = errors.New("api client is required")
	errSessionsRequired = errors.New("session manager is required")
	errCartsRequired    = errors.New("cart store is required")
	errLoggerRequired   = errors.New("auth logger is required")
)

// LoginForm is the login screen's input, validated before any network
// call goes out.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupForm is the registration screen's input.
type SignupForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// API is the slice of the backend client auth needs.
type API interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResult, error)
	SignUp(ctx context.Context, reg api.Registration) (*api.AuthResult, error)
	SignUpWithPhoto(ctx context.Context, reg api.Registration, photo api.Upload) (*api.AuthResult, error)
}

// Service wires the auth endpoints to the session and cart state.
type Service struct {
	api      API
	sessions *session.Manager
	carts    *cart.Store
	logger   *logger.Logger
}

func NewService(client API, sessions *session.Manager, carts *cart.Store, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, errAPIRequired
	}
	if sessions == nil {
		return nil, errSessionsRequired
	}
	if carts == nil {
		return nil, errCartsRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Service{api: client, sessions: sessions, carts: carts, logger: logg}, nil
}

// Login validates the form, exchanges credentials for a token, and
// activates the returned user's session and cart.
func (s *Service) Login(ctx context.Context, form LoginForm) (*session.User, error) {
	if err := validate.Struct(form); err != nil {
		return nil, err
	}

	result, err := s.api.Login(ctx, api.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, err
	}

	user := s.establish(ctx, result)
	s.logger.Info(s.logger.WithUserID(ctx, user.ID), "user logged in")
	return user, nil
}

// SignUp validates the form and registers the account, with the photo
// attached in the same call when provided. The plain signup route does
// not issue a token, so registration falls through to a login with the
// same credentials.
func (s *Service) SignUp(ctx context.Context, form SignupForm, photo *api.Upload) (*session.User, error) {
	if err := validate.Struct(form); err != nil {
		return nil, err
	}

	reg := api.Registration{
		Name:            form.Name,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	}

	var result *api.AuthResult
	var err error
	if photo != nil {
		result, err = s.api.SignUpWithPhoto(ctx, reg, *photo)
	} else {
		result, err = s.api.SignUp(ctx, reg)
	}
	if err != nil {
		return nil, err
	}

	if result.Token == "" {
		return s.Login(ctx, LoginForm{Email: form.Email, Password: form.Password})
	}

	user := s.establish(ctx, result)
	s.logger.Info(s.logger.WithUserID(ctx, user.ID), "user signed up")
	return user, nil
}

// Logout clears the session and deactivates the cart.
func (s *Service) Logout(ctx context.Context) {
	s.sessions.Logout(ctx)
	s.carts.SetActiveUser(ctx, "")
	s.logger.Info(ctx, "user logged out")
}

func (s *Service) establish(ctx context.Context, result *api.AuthResult) *session.User {
	user := session.User{
		ID:           result.User.ID,
		Name:         result.User.Name,
		Email:        result.User.Email,
		PhotoProfile: result.User.PhotoProfile,
		Role:         result.User.Role,
	}
	s.sessions.Establish(ctx, result.Token, user)
	s.carts.SetActiveUser(ctx, user.ID)
	return &user
}
