package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"fxledger/internal/domain"
)

type backend struct {
	name   string
	users  UserStore
	orders OrderStore
}

// backends returns a fresh instance of every store implementation.
func backends(t *testing.T) []backend {
	t.Helper()

	sq, err := NewSQLiteStore(context.Background())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return []backend{
		{name: "memory", users: NewMemoryUserStore(), orders: NewMemoryOrderStore()},
		{name: "sqlite", users: sq, orders: sq},
	}
}

func TestUserStoreAddGet(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			u := domain.User{ID: "u1", Balances: map[string]float64{"USD": 100, "EUR": 5.5}}
			if err := b.users.AddUser(ctx, u); err != nil {
				t.Fatalf("AddUser: %v", err)
			}

			got, err := b.users.GetUser(ctx, "u1")
			if err != nil {
				t.Fatalf("GetUser: %v", err)
			}
			if got == nil {
				t.Fatal("GetUser returned nil for registered user")
			}
			if !reflect.DeepEqual(*got, u) {
				t.Errorf("GetUser = %+v, want %+v", *got, u)
			}

			missing, err := b.users.GetUser(ctx, "nobody")
			if err != nil {
				t.Fatalf("GetUser(missing): %v", err)
			}
			if missing != nil {
				t.Errorf("GetUser(missing) = %+v, want nil", missing)
			}
		})
	}
}

func TestUserStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			if err := b.users.AddUser(ctx, domain.User{ID: "u1", Balances: map[string]float64{"USD": 1}}); err != nil {
				t.Fatalf("AddUser: %v", err)
			}
			if err := b.users.AddUser(ctx, domain.NewUser("u1")); err != nil {
				t.Fatalf("AddUser (overwrite): %v", err)
			}

			got, err := b.users.GetUser(ctx, "u1")
			if err != nil || got == nil {
				t.Fatalf("GetUser = %v, %v", got, err)
			}
			if len(got.Balances) != 0 {
				t.Errorf("balances after overwrite = %v, want empty", got.Balances)
			}

			all, err := b.users.ListUsers(ctx)
			if err != nil {
				t.Fatalf("ListUsers: %v", err)
			}
			if len(all) != 1 {
				t.Errorf("ListUsers has %d entries, want 1", len(all))
			}
		})
	}
}

func TestUserStoreExists(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			ok, err := b.users.UserExists(ctx, "u1")
			if err != nil {
				t.Fatalf("UserExists: %v", err)
			}
			if ok {
				t.Error("UserExists = true before registration")
			}

			b.users.AddUser(ctx, domain.NewUser("u1"))

			ok, err = b.users.UserExists(ctx, "u1")
			if err != nil {
				t.Fatalf("UserExists: %v", err)
			}
			if !ok {
				t.Error("UserExists = false after registration")
			}
		})
	}
}

func TestUserStoreListIsSnapshot(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			b.users.AddUser(ctx, domain.User{ID: "a", Balances: map[string]float64{"USD": 1}})
			b.users.AddUser(ctx, domain.NewUser("b"))

			all, err := b.users.ListUsers(ctx)
			if err != nil {
				t.Fatalf("ListUsers: %v", err)
			}
			if len(all) != 2 {
				t.Fatalf("ListUsers has %d entries, want 2", len(all))
			}
			if all["a"].Balances["USD"] != 1 {
				t.Errorf("a.USD = %v, want 1", all["a"].Balances["USD"])
			}

			all["a"].Balances["USD"] = 42
			delete(all, "b")

			again, _ := b.users.ListUsers(ctx)
			if again["a"].Balances["USD"] != 1 {
				t.Error("mutating ListUsers result changed the store")
			}
			if _, ok := again["b"]; !ok {
				t.Error("deleting from ListUsers result removed a stored user")
			}
		})
	}
}

func TestOrderStoreByUserInsertionOrder(t *testing.T) {
	ctx := context.Background()
	orders := []domain.Order{
		{UserID: "u1", Pair: domain.CurrencyPair{Source: "RUB", Target: "USD"}, Value: 20, Price: 61},
		{UserID: "u2", Pair: domain.CurrencyPair{Source: "USD", Target: "RUB"}, Value: 1, Price: 0.016},
		{UserID: "u1", Pair: domain.CurrencyPair{Source: "USD", Target: "EUR"}, Value: 5, Price: 1.1},
	}

	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			for _, o := range orders {
				if err := b.orders.AddOrder(ctx, o); err != nil {
					t.Fatalf("AddOrder: %v", err)
				}
			}

			got, err := b.orders.OrdersByUser(ctx, "u1")
			if err != nil {
				t.Fatalf("OrdersByUser: %v", err)
			}
			want := []domain.Order{orders[0], orders[2]}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("OrdersByUser(u1) = %+v, want %+v", got, want)
			}

			none, err := b.orders.OrdersByUser(ctx, "u3")
			if err != nil {
				t.Fatalf("OrdersByUser(u3): %v", err)
			}
			if none == nil || len(none) != 0 {
				t.Errorf("OrdersByUser(u3) = %#v, want empty non-nil slice", none)
			}
		})
	}
}

func TestOrderStoreAcceptsAnyValues(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t) {
		t.Run(b.name, func(t *testing.T) {
			o := domain.Order{UserID: "ghost", Pair: domain.CurrencyPair{Source: "X", Target: "Y"}, Value: -3, Price: 0}
			if err := b.orders.AddOrder(ctx, o); err != nil {
				t.Fatalf("AddOrder: %v", err)
			}
			got, _ := b.orders.OrdersByUser(ctx, "ghost")
			if len(got) != 1 || got[0] != o {
				t.Errorf("OrdersByUser(ghost) = %+v, want [%+v]", got, o)
			}
		})
	}
}

func TestMemoryStoresConcurrent(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserStore()
	orders := NewMemoryOrderStore()

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", w)
			for i := 0; i < perWorker; i++ {
				users.AddUser(ctx, domain.NewUser(id))
				users.UserExists(ctx, id)
				orders.AddOrder(ctx, domain.Order{UserID: id, Value: float64(i)})
				orders.OrdersByUser(ctx, id)
			}
		}(w)
	}
	wg.Wait()

	all, _ := users.ListUsers(ctx)
	if len(all) != workers {
		t.Errorf("ListUsers has %d entries, want %d", len(all), workers)
	}
	for w := 0; w < workers; w++ {
		got, _ := orders.OrdersByUser(ctx, fmt.Sprintf("user-%d", w))
		if len(got) != perWorker {
			t.Fatalf("user-%d has %d orders, want %d", w, len(got), perWorker)
		}
		for i, o := range got {
			if o.Value != float64(i) {
				t.Fatalf("user-%d order %d has value %v, want %v", w, i, o.Value, float64(i))
			}
		}
	}
}
