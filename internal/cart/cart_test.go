package cart

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/durianostics/durianostics-client/internal/storage"
	"github.com/durianostics/durianostics-client/pkg/logger"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryStore) {
	t.Helper()

	backing := storage.NewMemoryStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	store, err := NewStore(backing, logg)
	if err != nil {
		t.Fatalf("creating cart store: %v", err)
	}
	return store, backing
}

func item(id, name string, price int64) Item {
	return Item{ID: id, Name: name, Price: decimal.NewFromInt(price), Image: "durian.png"}
}

func TestAddMergesQuantityForSameID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")

	for i := 0; i < 3; i++ {
		store.Add(ctx, item("d1", "Musang King", 250))
	}

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
}

func TestAddIgnoresCallerQuantityOnFirstAdd(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")

	first := item("d1", "Musang King", 250)
	first.Quantity = 99
	store.Add(ctx, first)

	if got := store.Items()[0].Quantity; got != 1 {
		t.Fatalf("first add must start at quantity 1, got %d", got)
	}
}

func TestAddKeepsFirstWriteMetadata(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")

	store.Add(ctx, item("d1", "Musang King", 250))
	store.Add(ctx, item("d1", "Renamed", 999))

	got := store.Items()[0]
	if got.Name != "Musang King" || !got.Price.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("metadata must be first-write-wins, got %+v", got)
	}
}

func TestAddPreservesInsertionOrderOnIncrement(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")

	store.Add(ctx, item("d1", "Musang King", 250))
	store.Add(ctx, item("d2", "D24", 180))
	store.Add(ctx, item("d1", "Musang King", 250))

	items := store.Items()
	if items[0].ID != "d1" || items[1].ID != "d2" {
		t.Fatalf("incrementing must not reorder, got %v then %v", items[0].ID, items[1].ID)
	}
}

func TestAddWithoutActiveUserIsNoOp(t *testing.T) {
	ctx := context.Background()
	store, backing := newTestStore(t)

	store.Add(ctx, item("d1", "Musang King", 250))

	if len(store.Items()) != 0 {
		t.Fatalf("expected gated add to do nothing")
	}
	if values, _ := backing.GetMulti(ctx, "cart_"); len(values) != 0 {
		t.Fatalf("nothing should be persisted without a user")
	}
}

func TestUpdateQuantityFloor(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")
	store.Add(ctx, item("d1", "Musang King", 250))

	for _, q := range []int{0, -1, -99} {
		store.UpdateQuantity(ctx, "d1", q)
		if got := store.Items()[0].Quantity; got != 1 {
			t.Fatalf("quantity %d must be rejected, cart now has %d", q, got)
		}
	}

	store.UpdateQuantity(ctx, "d1", 5)
	if got := store.Items()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")
	store.Add(ctx, item("d1", "Musang King", 250))
	store.Add(ctx, item("d2", "D24", 180))

	store.Remove(ctx, "never-added")
	if len(store.Items()) != 2 {
		t.Fatalf("removing an absent id must not change the cart")
	}

	store.Remove(ctx, "d1")
	store.Remove(ctx, "d1")
	items := store.Items()
	if len(items) != 1 || items[0].ID != "d2" {
		t.Fatalf("double remove must equal single remove, got %+v", items)
	}
}

func TestPerUserIsolation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	store.SetActiveUser(ctx, "alice")
	store.Add(ctx, item("d1", "Musang King", 250))
	store.Add(ctx, item("d2", "D24", 180))

	store.SetActiveUser(ctx, "bob")
	if len(store.Items()) != 0 {
		t.Fatalf("bob must not see alice's cart")
	}
	store.Add(ctx, item("d3", "Red Prawn", 300))
	store.Remove(ctx, "d1")

	store.SetActiveUser(ctx, "alice")
	items := store.Items()
	if len(items) != 2 || items[0].ID != "d1" || items[1].ID != "d2" {
		t.Fatalf("alice's cart was contaminated: %+v", items)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, backing := newTestStore(t)
	store.SetActiveUser(ctx, "42")
	store.Add(ctx, item("d1", "Musang King", 250))
	store.Add(ctx, item("d1", "Musang King", 250))
	premium := item("d2", "Black Thorn", 0)
	premium.Price = decimal.RequireFromString("399.50")
	store.Add(ctx, premium)

	// Simulate an app restart: a fresh cart store over the same backing.
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	restarted, err := NewStore(backing, logg)
	if err != nil {
		t.Fatalf("creating restarted store: %v", err)
	}
	restarted.SetActiveUser(ctx, "42")

	items := restarted.Items()
	if len(items) != 2 {
		t.Fatalf("expected two lines after restart, got %d", len(items))
	}
	if items[0].ID != "d1" || items[0].Quantity != 2 || !items[0].Price.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("first line did not round-trip: %+v", items[0])
	}
	if items[1].ID != "d2" || !items[1].Price.Equal(decimal.RequireFromString("399.50")) {
		t.Fatalf("second line did not round-trip: %+v", items[1])
	}
}

func TestClearRemovesPersistedRecord(t *testing.T) {
	ctx := context.Background()
	store, backing := newTestStore(t)
	store.SetActiveUser(ctx, "42")
	store.Add(ctx, item("d1", "Musang King", 250))

	store.Clear(ctx)

	if len(store.Items()) != 0 {
		t.Fatalf("expected empty cart after clear")
	}
	if _, ok, _ := backing.Get(ctx, "cart_42"); ok {
		t.Fatalf("persisted record must be removed on clear")
	}
}

func TestTotalRecomputesAfterMutation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	store.SetActiveUser(ctx, "42")

	store.Add(ctx, item("d1", "Musang King", 100))
	store.UpdateQuantity(ctx, "d1", 2)
	store.Add(ctx, item("d2", "D24", 50))
	store.UpdateQuantity(ctx, "d2", 3)

	if !store.Total().Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected total 350, got %s", store.Total())
	}

	store.Remove(ctx, "d2")
	if !store.Total().Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected total 200 after remove, got %s", store.Total())
	}
}

// failingStore rejects every write so mutation semantics under storage
// failure can be observed.
type failingStore struct {
	storage.Store
}

func (f failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestMutationsSucceedWhenPersistenceFails(t *testing.T) {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	store, err := NewStore(failingStore{storage.NewMemoryStore()}, logg)
	if err != nil {
		t.Fatalf("creating cart store: %v", err)
	}
	store.SetActiveUser(ctx, "42")

	store.Add(ctx, item("d1", "Musang King", 250))

	if len(store.Items()) != 1 {
		t.Fatalf("in-memory mutation must survive a failed write")
	}
	if err := store.Flush(ctx); err == nil {
		t.Fatalf("flush must surface the aggregated write failure")
	}
}
