// Package domain defines the core value types of the ledger: users with
// per-currency balances and the exchange orders they submit.
package domain

import "sort"

// User is a registered account. ID uniquely identifies the user.
type User struct {
	ID       string
	Balances map[string]float64 // currency code -> amount
}

// NewUser returns a user with an empty balance mapping.
func NewUser(id string) User {
	return User{ID: id, Balances: make(map[string]float64)}
}

// Clone returns a copy of u that shares no state with it.
func (u User) Clone() User {
	out := User{ID: u.ID, Balances: make(map[string]float64, len(u.Balances))}
	for cur, amt := range u.Balances {
		out.Balances[cur] = amt
	}
	return out
}

// Currencies returns the currency codes held by u in ascending order.
func (u User) Currencies() []string {
	out := make([]string, 0, len(u.Balances))
	for cur := range u.Balances {
		out = append(out, cur)
	}
	sort.Strings(out)
	return out
}

// CurrencyPair is the (source, target) pair an order exchanges between.
type CurrencyPair struct {
	Source string
	Target string
}

// Order is a one-sided request to exchange Value units of Pair.Source for
// Pair.Target at Price. Orders are immutable once recorded.
type Order struct {
	UserID string
	Pair   CurrencyPair
	Value  float64
	Price  float64
}
