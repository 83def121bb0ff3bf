package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgerrors "github.com/durianostics/durianostics-client/pkg/errors"
)

// Roles the backend accepts for SetUserRole.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AdminUser is one row in the admin user management table.
type AdminUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
	IsActive       bool   `json:"isActive"`
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context) ([]AdminUser, error) {
	var result struct {
		Users []AdminUser `json:"users"`
	}
	if err := c.get(ctx, "admin_users", "/admin/users", nil, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// SetUserRole changes an account's role.
func (c *Client) SetUserRole(ctx context.Context, userID, role string) error {
	if role != RoleUser && role != RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role)).
			WithDetails(map[string]string{"role": "must be user or admin"})
	}
	return c.sendJSON(ctx, "admin_set_role", http.MethodPut,
		"/admin/users/"+url.PathEscape(userID)+"/role",
		map[string]string{"role": role}, nil)
}

// DeactivateUser blocks an account from logging in.
func (c *Client) DeactivateUser(ctx context.Context, userID string) error {
	return c.do(ctx, "admin_deactivate_user", http.MethodPut,
		"/admin/users/"+url.PathEscape(userID)+"/deactivate", nil, nil, "", nil)
}

// ActivateUser restores a deactivated account.
func (c *Client) ActivateUser(ctx context.Context, userID string) error {
	return c.do(ctx, "admin_activate_user", http.MethodPut,
		"/admin/users/"+url.PathEscape(userID)+"/activate", nil, nil, "", nil)
}
