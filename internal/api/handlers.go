package api

import (
	"context"
	"encoding/json"
	"fmt"

	"fxledger/internal/domain"
)

// handleAddUser registers {"user_id"} with an empty balance, replacing any
// existing user with that id.
func (r *Router) handleAddUser(ctx context.Context, body []byte) Response {
	id, err := decodeUserID(body)
	if err != nil {
		return r.badRequest(ctx, PathAddUser, err)
	}
	// User ids are non-empty, so "" is never registered. Lookups of "" get 403.
	if id == "" {
		return r.badRequest(ctx, PathAddUser, fmt.Errorf("%w: empty user_id", ErrBadRequest))
	}

	if err := r.users.AddUser(ctx, domain.NewUser(id)); err != nil {
		return r.storeFailure(ctx, PathAddUser, err)
	}
	r.log.Debug("user registered", "user_id", id, "request_id", RequestID(ctx))
	return statusResponse(200)
}

// handleAddOrder records {"user_id","source","target","value","price"} for a
// registered user. Values and prices are not range-checked.
func (r *Router) handleAddOrder(ctx context.Context, body []byte) Response {
	order, err := decodeOrder(body)
	if err != nil {
		return r.badRequest(ctx, PathAddOrder, err)
	}

	ok, err := r.users.UserExists(ctx, order.UserID)
	if err != nil {
		return r.storeFailure(ctx, PathAddOrder, err)
	}
	if !ok {
		return statusResponse(403)
	}

	if err := r.orders.AddOrder(ctx, order); err != nil {
		return r.storeFailure(ctx, PathAddOrder, err)
	}
	r.log.Debug("order recorded",
		"user_id", order.UserID,
		"source", order.Pair.Source,
		"target", order.Pair.Target,
		"request_id", RequestID(ctx),
	)
	return statusResponse(200)
}

// handleGetOrders returns {"orders":[...]} for a registered user.
func (r *Router) handleGetOrders(ctx context.Context, body []byte) Response {
	id, err := decodeUserID(body)
	if err != nil {
		return r.badRequest(ctx, PathGetOrders, err)
	}

	ok, err := r.users.UserExists(ctx, id)
	if err != nil {
		return r.storeFailure(ctx, PathGetOrders, err)
	}
	if !ok {
		return statusResponse(403)
	}

	orders, err := r.orders.OrdersByUser(ctx, id)
	if err != nil {
		return r.storeFailure(ctx, PathGetOrders, err)
	}
	return r.writeJSON(ctx, PathGetOrders, convertOrders(orders))
}

// handleGetUserDetail returns {"user_id","balance":[[cur,amt],...]}.
func (r *Router) handleGetUserDetail(ctx context.Context, body []byte) Response {
	id, err := decodeUserID(body)
	if err != nil {
		return r.badRequest(ctx, PathGetUserDetail, err)
	}

	ok, err := r.users.UserExists(ctx, id)
	if err != nil {
		return r.storeFailure(ctx, PathGetUserDetail, err)
	}
	if !ok {
		return statusResponse(403)
	}

	user, err := r.users.GetUser(ctx, id)
	if err != nil {
		return r.storeFailure(ctx, PathGetUserDetail, err)
	}
	if user == nil {
		return statusResponse(403)
	}
	return r.writeJSON(ctx, PathGetUserDetail, convertUserDetail(*user))
}

func (r *Router) writeJSON(ctx context.Context, path string, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		r.log.Error("encoding JSON response", "path", path, "request_id", RequestID(ctx), "error", err)
		return statusResponse(500)
	}
	return jsonResponse(body)
}
