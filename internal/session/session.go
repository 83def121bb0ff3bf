package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/durianostics/durianostics-client/internal/storage"
	"github.com/durianostics/durianostics-client/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Storage keys shared with the backend contract. The web and mobile
// builds both read/write exactly these names.
const (
	KeyJWTToken      = "jwt_token"
	KeyUserID        = "user_id"
	KeyName          = "name"
	KeyEmail         = "email"
	KeyPhotoProfile  = "photoProfile"
	KeyPhotoPublicID = "photoPublicId"
	KeyUserRole      = "user_role"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var profileKeys = []string{KeyUserID, KeyName, KeyEmail, KeyPhotoProfile, KeyPhotoPublicID, KeyUserRole}

var allKeys = append([]string{KeyJWTToken}, profileKeys...)

// User is the currently authenticated identity.
type User struct {
	ID            string
	Name          string
	Email         string
	PhotoProfile  string
	PhotoPublicID string
	Role          string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Manager tracks the active user, sourced from persistent storage.
// Screens read Current; login/signup call Establish; Logout clears
// everything including the cached token.
type Manager struct {
	store storage.Store
	logg  *logger.Logger

	mu      sync.RWMutex
	user    *User
	loading bool
}

func NewManager(store storage.Store, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("storage store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Manager{store: store, logg: logg, loading: true}, nil
}

// Load hydrates the session from storage. Storage errors are logged and
// leave the session logged out; they never propagate into UI code.
func (m *Manager) Load(ctx context.Context) {
	values, err := m.store.GetMulti(ctx, profileKeys...)
	if err != nil {
		m.logg.Error(ctx, "loading session from storage", err)
		m.setUser(nil)
		return
	}

	if values[KeyUserID] == "" {
		m.setUser(nil)
		return
	}

	role := values[KeyUserRole]
	if role == "" {
		role = RoleUser
	}
	m.setUser(&User{
		ID:            values[KeyUserID],
		Name:          values[KeyName],
		Email:         values[KeyEmail],
		PhotoProfile:  values[KeyPhotoProfile],
		PhotoPublicID: values[KeyPhotoPublicID],
		Role:          role,
	})
}

// Refresh re-reads storage, flipping the loading flag while in flight.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()
	m.Load(ctx)
}

// Current returns a copy of the active user (nil when logged out) and
// whether the session is still resolving.
func (m *Manager) Current() (*User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, m.loading
	}
	user := *m.user
	return &user, m.loading
}

// Establish records a fresh login: the in-memory user is set first,
// then every key is written through to storage. A failed write is
// logged and swallowed; the session stays usable for this run.
func (m *Manager) Establish(ctx context.Context, token string, user User) {
	if user.Role == "" {
		user.Role = RoleUser
	}
	m.setUser(&user)

	err := m.store.SetMulti(ctx, map[string]string{
		KeyJWTToken:      token,
		KeyUserID:        user.ID,
		KeyName:          user.Name,
		KeyEmail:         user.Email,
		KeyPhotoProfile:  user.PhotoProfile,
		KeyPhotoPublicID: user.PhotoPublicID,
		KeyUserRole:      user.Role,
	})
	if err != nil {
		m.logg.Error(m.logg.WithUserID(ctx, user.ID), "persisting session", err)
	}
}

// Logout clears the in-memory user and removes every session key.
func (m *Manager) Logout(ctx context.Context) {
	m.setUser(nil)
	if err := m.store.Delete(ctx, allKeys...); err != nil {
		m.logg.Error(ctx, "clearing session storage", err)
	}
}

// Token returns the cached bearer token. Expired tokens are treated as
// absent; the signature itself is only ever verified by the backend.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, ok, err := m.store.Get(ctx, KeyJWTToken)
	if err != nil {
		m.logg.Error(ctx, "reading cached token", err)
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	if expired(token) {
		return "", false
	}
	return token, true
}

func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque tokens are passed through untouched.
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (m *Manager) setUser(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	m.loading = false
}
