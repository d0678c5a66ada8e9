package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fxledger/internal/store"
)

type route struct {
	method string
	path   string
}

type handlerFunc func(ctx context.Context, body []byte) Response

// Router dispatches requests to the ledger handlers by exact (method, path)
// match. Anything else is 404.
type Router struct {
	users  store.UserStore
	orders store.OrderStore
	log    *slog.Logger
	routes map[route]handlerFunc
}

// NewRouter creates a Router backed by the given stores.
func NewRouter(users store.UserStore, orders store.OrderStore, log *slog.Logger) *Router {
	r := &Router{
		users:  users,
		orders: orders,
		log:    log,
	}
	r.routes = map[route]handlerFunc{
		{http.MethodPost, PathAddUser}:       r.handleAddUser,
		{http.MethodPost, PathAddOrder}:      r.handleAddOrder,
		{http.MethodPost, PathGetOrders}:     r.handleGetOrders,
		{http.MethodPost, PathGetUserDetail}: r.handleGetUserDetail,
	}
	return r
}

// Route runs the handler registered for req's method and path.
func (r *Router) Route(ctx context.Context, req Request) Response {
	start := time.Now()

	h, ok := r.routes[route{req.Method, req.Path}]
	if !ok {
		observe(unmatchedRoute, 404, start)
		return statusResponse(404)
	}

	resp := h(ctx, req.Body)
	observe(req.Path, resp.StatusCode, start)
	return resp
}

// badRequest logs a decode failure and returns 400.
func (r *Router) badRequest(ctx context.Context, path string, err error) Response {
	r.log.Warn("rejecting request", "path", path, "request_id", RequestID(ctx), "error", err)
	return statusResponse(400)
}

// storeFailure logs a store error and returns 500.
func (r *Router) storeFailure(ctx context.Context, path string, err error) Response {
	r.log.Error("store operation failed", "path", path, "request_id", RequestID(ctx), "error", err)
	return statusResponse(500)
}
