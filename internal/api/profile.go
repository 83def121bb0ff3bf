package api

import (
	"context"
	"net/http"
	"net/url"
)

// Profile is the full profile record for one user.
type Profile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhotoURI       string `json:"photoUri"`
	PhotoProfile   string `json:"photoProfile"`
	PhotoThumbnail string `json:"photoThumbnail"`
	PhotoPublicID  string `json:"photoPublicId"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
	IsLoggedIn     bool   `json:"isLoggedIn"`
}

// ProfileUpdate carries the mutable profile fields. Zero-valued fields
// are omitted from the request and left untouched server-side.
type ProfileUpdate struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Password      string `json:"password,omitempty"`
	PhotoProfile  string `json:"photoProfile,omitempty"`
	PhotoPublicID string `json:"photoPublicId,omitempty"`
}

// PhotoUpdate is the stored image set after an avatar upload.
type PhotoUpdate struct {
	PhotoProfile   string `json:"photoProfile"`
	PhotoThumbnail string `json:"photoThumbnail"`
	PhotoPublicID  string `json:"photoPublicId"`
}

// Profile fetches one user's profile.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "profile_get", "/profile/"+url.PathEscape(userID), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies the given field changes to one user's profile.
func (c *Client) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	return c.sendJSON(ctx, "profile_update", http.MethodPut, "/profile/"+url.PathEscape(userID), update, nil)
}

// UpdateProfilePhoto replaces the user's avatar and returns the hosted
// image URLs the backend stored.
func (c *Client) UpdateProfilePhoto(ctx context.Context, userID string, photo Upload) (*PhotoUpdate, error) {
	var result PhotoUpdate
	err := c.sendMultipart(ctx, "profile_update_pfp", http.MethodPut, "/profile/update-pfp",
		map[string]string{"userId": userID}, map[string]Upload{"photo": photo}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
