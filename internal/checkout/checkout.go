// Package checkout drives the two-phase order flow: confirm first,
// then a single guarded submission, ending in a receipt or a retryable
// failure with the cart intact.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/durianostics/durianostics-client/internal/api"
	"github.com/durianostics/durianostics-client/internal/cart"
	"github.com/durianostics/durianostics-client/internal/session"
	pkgerrors "github.com/durianostics/durianostics-client/pkg/errors"
	"github.com/durianostics/durianostics-client/pkg/logger"
)

// State is the checkout dialog's position in the flow.
type State string

const (
	StateIdle       State = "idle"
	StateConfirming State = "confirming"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var (
	errCartRequired      = errors.New("cart store is required")
	errSessionsRequired  = errors.New("session source is required")
	errSubmitterRequired = errors.New("order submitter is required")
	errLoggerRequired    = errors.New("checkout logger is required")

	// ErrSessionResolving means the session has not finished loading;
	// the caller shows a busy indicator and tries again, it is not a
	// user-facing failure.
	ErrSessionResolving = errors.New("session still resolving")
)

// Receipt is the immutable snapshot produced once at successful
// checkout: the purchased lines, the charged total, and the server's
// transaction id.
type Receipt struct {
	Items         []cart.Item
	Total         decimal.Decimal
	TransactionID string
}

// Submitter posts a confirmed order. Satisfied by the api client.
type Submitter interface {
	SubmitOrder(ctx context.Context, order api.Order) (*api.OrderResult, error)
}

// Sessions exposes the resolved user. Satisfied by the session manager.
type Sessions interface {
	Current() (*session.User, bool)
}

// Flow owns one checkout dialog's state machine:
// idle -> confirming -> submitting -> succeeded | failed. Submission is
// single-flight; a confirm arriving while one is in flight is dropped
// before any network work happens.
type Flow struct {
	cart     *cart.Store
	sessions Sessions
	submit   Submitter
	logger   *logger.Logger

	mu      sync.Mutex
	state   State
	receipt *Receipt
	lastErr error
}

func NewFlow(cartStore *cart.Store, sessions Sessions, submit Submitter, logg *logger.Logger) (*Flow, error) {
	if cartStore == nil {
		return nil, errCartRequired
	}
	if sessions == nil {
		return nil, errSessionsRequired
	}
	if submit == nil {
		return nil, errSubmitterRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Flow{
		cart:     cartStore,
		sessions: sessions,
		submit:   submit,
		logger:   logg,
		state:    StateIdle,
	}, nil
}

// State reports the current dialog state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Receipt returns the snapshot from the last successful checkout, nil
// before any success.
func (f *Flow) Receipt() *Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

// Err returns the failure that moved the flow into StateFailed.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Total recomputes the payable amount from the live cart.
func (f *Flow) Total() decimal.Decimal {
	return f.cart.Total()
}

// Begin opens the confirmation step. It refuses while the session is
// still resolving, when nobody with an email is signed in, or when the
// cart is empty.
func (f *Flow) Begin() error {
	user, loading := f.sessions.Current()
	if loading {
		return ErrSessionResolving
	}
	if user == nil || user.Email == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "checkout requires a signed-in user")
	}
	if len(f.cart.Items()) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateIdle && f.state != StateFailed {
		return pkgerrors.New(pkgerrors.CodeInternal, "checkout already in progress")
	}
	f.state = StateConfirming
	f.lastErr = nil
	return nil
}

// Cancel backs out of the confirmation step without touching the cart.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateConfirming || f.state == StateFailed {
		f.state = StateIdle
		f.lastErr = nil
	}
}

// Confirm submits the order. The in-flight guard lives here, not in any
// button state: a second confirm while one is submitting returns
// immediately without a network call. On success the cart is cleared
// and the receipt captured; on failure the cart is left untouched so
// the user can retry.
func (f *Flow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil
	}
	if f.state != StateConfirming {
		f.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeInternal, "nothing to confirm")
	}

	user, loading := f.sessions.Current()
	if loading || user == nil || user.Email == "" {
		f.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "checkout requires a signed-in user")
	}

	// Snapshot before releasing the lock; the order must reflect the
	// cart as confirmed even if it changes mid-flight.
	items := f.cart.Items()
	if len(items) == 0 {
		f.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	total := f.cart.Total()
	f.state = StateSubmitting
	f.mu.Unlock()

	logCtx := f.logger.WithUserID(ctx, user.ID)
	result, err := f.submit.SubmitOrder(ctx, buildOrder(user.Email, items, total))
	if err != nil {
		f.logger.Warn(logCtx, "checkout submission failed")
		f.mu.Lock()
		f.state = StateFailed
		f.lastErr = err
		f.mu.Unlock()
		return err
	}

	f.logger.Info(f.logger.WithField(logCtx, "transaction_id", result.TransactionID), "checkout succeeded")
	f.mu.Lock()
	f.state = StateSucceeded
	f.receipt = &Receipt{
		Items:         items,
		Total:         total,
		TransactionID: result.TransactionID,
	}
	f.lastErr = nil
	f.mu.Unlock()

	f.cart.Clear(ctx)
	return nil
}

// Dismiss closes the terminal dialogs. A dismissed success returns to
// idle over the now-empty cart; a dismissed failure returns to the
// confirmation step with the cart intact for another attempt.
func (f *Flow) Dismiss() {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateSucceeded:
		f.state = StateIdle
	case StateFailed:
		f.state = StateConfirming
		f.lastErr = nil
	}
}

func buildOrder(email string, items []cart.Item, total decimal.Decimal) api.Order {
	lines := make([]api.OrderItem, len(items))
	for i, item := range items {
		lines[i] = api.OrderItem{
			Name:     item.Name,
			Price:    json.Number(item.Price.String()),
			Quantity: item.Quantity,
		}
	}
	return api.Order{
		Email: email,
		Items: lines,
		Total: json.Number(total.String()),
	}
}
