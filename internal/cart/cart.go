package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/durianostics/durianostics-client/internal/storage"
	"github.com/durianostics/durianostics-client/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const keyPrefix = "cart_"

// Item is one product line in a cart, uniquely identified by product id
// within a single user's cart.
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
	// Image is an opaque URI; the cart never interprets it.
	Image string
}

// Subtotal is price times quantity for this line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Store holds one cart per signed-in user. Mutations apply to the
// active user's cart only, mirror to persistent storage best-effort,
// and are no-ops while nobody is signed in. Entries for previously
// active users stay cached in memory so switching accounts on one
// device keeps each cart intact.
type Store struct {
	store storage.Store
	logg  *logger.Logger

	mu         sync.Mutex
	activeUser string
	carts      map[string][]Item
	hydrated   map[string]bool
}

func NewStore(store storage.Store, logg *logger.Logger) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("storage store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{
		store:    store,
		logg:     logg,
		carts:    map[string][]Item{},
		hydrated: map[string]bool{},
	}, nil
}

// SetActiveUser switches the cart the mutations below operate on,
// hydrating it from storage the first time that user becomes active.
// An empty id deactivates the cart entirely (logged out).
func (s *Store) SetActiveUser(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeUser = userID
	if userID == "" || s.hydrated[userID] {
		return
	}
	s.hydrated[userID] = true

	raw, ok, err := s.store.Get(ctx, storageKey(userID))
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID), "hydrating cart from storage", err)
		s.carts[userID] = nil
		return
	}
	if !ok {
		s.carts[userID] = nil
		return
	}
	items, err := decodeItems([]byte(raw))
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID), "decoding stored cart", err)
		s.carts[userID] = nil
		return
	}
	s.carts[userID] = items
}

// ActiveUser returns the user id the cart currently belongs to.
func (s *Store) ActiveUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeUser
}

// Items returns a copy of the active user's cart in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == "" {
		return nil
	}
	current := s.carts[s.activeUser]
	items := make([]Item, len(current))
	copy(items, current)
	return items
}

// Add appends item with quantity 1, or bumps the quantity of an
// existing line with the same id. Metadata on the existing line wins;
// any quantity the caller passed in is ignored. No-op when nobody is
// signed in.
func (s *Store) Add(ctx context.Context, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == "" {
		return
	}

	current := s.carts[s.activeUser]
	updated := make([]Item, len(current))
	copy(updated, current)

	merged := false
	for i := range updated {
		if updated[i].ID == item.ID {
			updated[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = 1
		updated = append(updated, item)
	}

	s.carts[s.activeUser] = updated
	s.persistLocked(ctx)
}

// Remove drops the line with the given id; absent ids are a no-op.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == "" {
		return
	}

	current := s.carts[s.activeUser]
	updated := make([]Item, 0, len(current))
	for _, item := range current {
		if item.ID != id {
			updated = append(updated, item)
		}
	}
	if len(updated) == len(current) {
		return
	}

	s.carts[s.activeUser] = updated
	s.persistLocked(ctx)
}

// UpdateQuantity replaces the quantity of the matching line. Quantities
// below 1 are rejected as a no-op; the floor is enforced here, not just
// at the buttons.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == "" || quantity < 1 {
		return
	}

	current := s.carts[s.activeUser]
	updated := make([]Item, len(current))
	copy(updated, current)

	changed := false
	for i := range updated {
		if updated[i].ID == id {
			updated[i].Quantity = quantity
			changed = true
			break
		}
	}
	if !changed {
		return
	}

	s.carts[s.activeUser] = updated
	s.persistLocked(ctx)
}

// Clear empties the active cart and removes its persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == "" {
		return
	}

	s.carts[s.activeUser] = nil
	if err := s.store.Delete(ctx, storageKey(s.activeUser)); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, s.activeUser), "removing persisted cart", err)
	}
}

// Total sums price*quantity over the active cart. Computed fresh on
// every call; nothing caches it.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	if s.activeUser == "" {
		return total
	}
	for _, item := range s.carts[s.activeUser] {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Flush synchronously re-persists every cached cart and reports the
// aggregated failures. Mutations never wait on storage; this exists for
// callers that need a durability guarantee (e.g. app shutdown).
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	for userID, items := range s.carts {
		if err := s.write(ctx, userID, items); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// persistLocked mirrors the active cart to storage. Failures are logged
// and swallowed: the in-memory cart is the source of truth for this
// session, and the next successful mutation re-writes current state.
func (s *Store) persistLocked(ctx context.Context) {
	if err := s.write(ctx, s.activeUser, s.carts[s.activeUser]); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, s.activeUser), "persisting cart", err)
	}
}

func (s *Store) write(ctx context.Context, userID string, items []Item) error {
	raw, err := encodeItems(items)
	if err != nil {
		return fmt.Errorf("encoding cart for %s: %w", userID, err)
	}
	if err := s.store.Set(ctx, storageKey(userID), string(raw)); err != nil {
		return fmt.Errorf("writing cart for %s: %w", userID, err)
	}
	return nil
}

func storageKey(userID string) string {
	return keyPrefix + userID
}

// persistedItem pins the on-disk shape: the same JSON the web and
// mobile builds have always written, with price as a plain number.
type persistedItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
	Image    string      `json:"image,omitempty"`
}

func encodeItems(items []Item) ([]byte, error) {
	records := make([]persistedItem, len(items))
	for i, item := range items {
		records[i] = persistedItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    json.Number(item.Price.String()),
			Quantity: item.Quantity,
			Image:    item.Image,
		}
	}
	return json.Marshal(records)
}

func decodeItems(raw []byte) ([]Item, error) {
	var records []persistedItem
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	items := make([]Item, len(records))
	for i, record := range records {
		price, err := decimal.NewFromString(record.Price.String())
		if err != nil {
			return nil, fmt.Errorf("item %s: bad price %q: %w", record.ID, record.Price, err)
		}
		items[i] = Item{
			ID:       record.ID,
			Name:     record.Name,
			Price:    price,
			Quantity: record.Quantity,
			Image:    record.Image,
		}
	}
	return items, nil
}
