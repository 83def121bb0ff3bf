package api

import (
	"context"
	"net/http"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup request body. ConfirmPassword is checked
// server-side as well; the backend rejects mismatches.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// AuthUser is the profile snapshot returned alongside a fresh token.
type AuthUser struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PhotoProfile string `json:"photoProfile"`
}

// AuthResult carries the token and user issued by the auth endpoints.
// Plain signup responds without a token; callers follow up with Login.
type AuthResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// Login exchanges credentials for a token and profile snapshot.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.sendJSON(ctx, "auth_login", http.MethodPost, "/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignUp registers a new account with a JSON body.
func (c *Client) SignUp(ctx context.Context, reg Registration) (*AuthResult, error) {
	var result AuthResult
	if err := c.sendJSON(ctx, "auth_signup", http.MethodPost, "/auth/signup", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignUpWithPhoto registers a new account and uploads the initial
// profile picture in one multipart call.
func (c *Client) SignUpWithPhoto(ctx context.Context, reg Registration, photo Upload) (*AuthResult, error) {
	fields := map[string]string{
		"name":             reg.Name,
		"email":            reg.Email,
		"password":         reg.Password,
		"confirm_password": reg.ConfirmPassword,
	}
	var result AuthResult
	err := c.sendMultipart(ctx, "auth_signup_with_pfp", http.MethodPost, "/auth/signup-with-pfp",
		fields, map[string]Upload{"photo": photo}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
