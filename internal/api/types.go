package api

import (
	"encoding/json"
	"fmt"

	"fxledger/internal/domain"
)

// OrderJSON is the JSON representation of a recorded order.
type OrderJSON struct {
	UserID string  `json:"user_id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Price  float64 `json:"price"`
}

// OrdersResponse is the body of a successful get_orders call.
type OrdersResponse struct {
	Orders []OrderJSON `json:"orders"`
}

// BalanceEntry is one currency holding. It encodes as a two-element array
// [currency, amount] rather than an object.
type BalanceEntry struct {
	Currency string
	Amount   float64
}

// MarshalJSON encodes the entry as [currency, amount].
func (b BalanceEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{b.Currency, b.Amount})
}

// UnmarshalJSON decodes [currency, amount].
func (b *BalanceEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("balance entry: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &b.Currency); err != nil {
		return fmt.Errorf("balance currency: %w", err)
	}
	if err := json.Unmarshal(pair[1], &b.Amount); err != nil {
		return fmt.Errorf("balance amount: %w", err)
	}
	return nil
}

// UserDetailResponse is the body of a successful get_userdetail call.
type UserDetailResponse struct {
	UserID  string         `json:"user_id"`
	Balance []BalanceEntry `json:"balance"`
}

func convertOrders(orders []domain.Order) OrdersResponse {
	out := OrdersResponse{Orders: make([]OrderJSON, 0, len(orders))}
	for _, o := range orders {
		out.Orders = append(out.Orders, OrderJSON{
			UserID: o.UserID,
			Source: o.Pair.Source,
			Target: o.Pair.Target,
			Value:  o.Value,
			Price:  o.Price,
		})
	}
	return out
}

func convertUserDetail(u domain.User) UserDetailResponse {
	out := UserDetailResponse{UserID: u.ID, Balance: make([]BalanceEntry, 0, len(u.Balances))}
	for _, cur := range u.Currencies() {
		out.Balance = append(out.Balance, BalanceEntry{Currency: cur, Amount: u.Balances[cur]})
	}
	return out
}
