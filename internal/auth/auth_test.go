package auth

import (
	"bytes"
	"context"
	"testing"

	"github.com/durianostics/durianostics-client/internal/api"
	"github.com/durianostics/durianostics-client/internal/cart"
	"github.com/durianostics/durianostics-client/internal/session"
	"github.com/durianostics/durianostics-client/internal/storage"
	pkgerrors "github.com/durianostics/durianostics-client/pkg/errors"
	"github.com/durianostics/durianostics-client/pkg/logger"
)

type fakeAPI struct {
	loginCalls  int
	signupCalls int
	photoCalls  int
	loginResult *api.AuthResult
	signupToken string
	err         error
}

func (f *fakeAPI) Login(ctx context.Context, creds api.Credentials) (*api.AuthResult, error) {
	f.loginCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.loginResult, nil
}

func (f *fakeAPI) SignUp(ctx context.Context, reg api.Registration) (*api.AuthResult, error) {
	f.signupCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &api.AuthResult{Token: f.signupToken, User: api.AuthUser{ID: "42", Name: reg.Name, Email: reg.Email}}, nil
}

func (f *fakeAPI) SignUpWithPhoto(ctx context.Context, reg api.Registration, photo api.Upload) (*api.AuthResult, error) {
	f.photoCalls++
	return &api.AuthResult{Token: "tok-pfp", User: api.AuthUser{ID: "42", Name: reg.Name, Email: reg.Email}}, nil
}

func newTestService(t *testing.T, client API) (*Service, *session.Manager, *cart.Store) {
	t.Helper()

	backing := storage.NewMemoryStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	sessions, err := session.NewManager(backing, logg)
	if err != nil {
		t.Fatalf("creating session manager: %v", err)
	}
	carts, err := cart.NewStore(backing, logg)
	if err != nil {
		t.Fatalf("creating cart store: %v", err)
	}
	svc, err := NewService(client, sessions, carts, logg)
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return svc, sessions, carts
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	client := &fakeAPI{}
	svc, _, _ := newTestService(t, client)

	_, err := svc.Login(context.Background(), LoginForm{Email: "not-an-email", Password: ""})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if client.loginCalls != 0 {
		t.Fatalf("invalid form must not reach the network")
	}
}

func TestLoginEstablishesSessionAndCart(t *testing.T) {
	ctx := context.Background()
	client := &fakeAPI{loginResult: &api.AuthResult{
		Token: "tok-abc",
		User:  api.AuthUser{ID: "42", Name: "Ana", Email: "ana@example.com", Role: "admin"},
	}}
	svc, sessions, carts := newTestService(t, client)

	user, err := svc.Login(ctx, LoginForm{Email: "ana@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != "42" || !user.IsAdmin() {
		t.Fatalf("unexpected user %+v", user)
	}

	current, loading := sessions.Current()
	if loading || current == nil || current.ID != "42" {
		t.Fatalf("session not established: %+v loading=%v", current, loading)
	}
	if token, ok := sessions.Token(ctx); !ok || token != "tok-abc" {
		t.Fatalf("token not persisted")
	}
	if carts.ActiveUser() != "42" {
		t.Fatalf("cart not activated for the logged-in user")
	}
}

func TestLoginPassesBackendErrorThrough(t *testing.T) {
	client := &fakeAPI{err: pkgerrors.New(pkgerrors.CodeServer, "login reported failure").WithServerMessage("Invalid credentials")}
	svc, sessions, _ := newTestService(t, client)

	_, err := svc.Login(context.Background(), LoginForm{Email: "ana@example.com", Password: "wrong"})
	if pkgerrors.UserMessageFor(err) != "Invalid credentials" {
		t.Fatalf("backend message must surface verbatim, got %q", pkgerrors.UserMessageFor(err))
	}
	if user, _ := sessions.Current(); user != nil {
		t.Fatalf("failed login must not establish a session")
	}
}

func TestSignUpRejectsPasswordMismatch(t *testing.T) {
	client := &fakeAPI{}
	svc, _, _ := newTestService(t, client)

	_, err := svc.SignUp(context.Background(), SignupForm{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "secret",
		ConfirmPassword: "different",
	}, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if client.signupCalls != 0 {
		t.Fatalf("mismatched passwords must not reach the network")
	}
}

func TestSignUpWithoutTokenFallsBackToLogin(t *testing.T) {
	client := &fakeAPI{
		signupToken: "",
		loginResult: &api.AuthResult{Token: "tok-abc", User: api.AuthUser{ID: "42", Email: "ana@example.com"}},
	}
	svc, sessions, _ := newTestService(t, client)

	user, err := svc.SignUp(context.Background(), SignupForm{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "secret",
		ConfirmPassword: "secret",
	}, nil)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if client.signupCalls != 1 || client.loginCalls != 1 {
		t.Fatalf("expected signup then login, got signup=%d login=%d", client.signupCalls, client.loginCalls)
	}
	if user == nil || user.ID != "42" {
		t.Fatalf("unexpected user %+v", user)
	}
	if current, _ := sessions.Current(); current == nil {
		t.Fatalf("session not established after fallback login")
	}
}

func TestSignUpWithPhotoSkipsFallback(t *testing.T) {
	client := &fakeAPI{}
	svc, _, carts := newTestService(t, client)

	photo := &api.Upload{FileName: "me.png", ContentType: "image/png", Reader: bytes.NewReader([]byte("png"))}
	user, err := svc.SignUp(context.Background(), SignupForm{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "secret",
		ConfirmPassword: "secret",
	}, photo)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if client.photoCalls != 1 || client.loginCalls != 0 {
		t.Fatalf("expected one multipart signup and no login, got photo=%d login=%d", client.photoCalls, client.loginCalls)
	}
	if carts.ActiveUser() != user.ID {
		t.Fatalf("cart not activated for the new user")
	}
}

func TestLogoutClearsSessionAndDeactivatesCart(t *testing.T) {
	ctx := context.Background()
	client := &fakeAPI{loginResult: &api.AuthResult{Token: "tok", User: api.AuthUser{ID: "42", Email: "ana@example.com"}}}
	svc, sessions, carts := newTestService(t, client)

	if _, err := svc.Login(ctx, LoginForm{Email: "ana@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	svc.Logout(ctx)

	if user, _ := sessions.Current(); user != nil {
		t.Fatalf("session must be cleared on logout")
	}
	if carts.ActiveUser() != "" {
		t.Fatalf("cart must deactivate on logout")
	}
}
