// Package api is the ledger's request core and its transports. The core is
// transport-agnostic: Router.Route takes a parsed Request and returns a
// Response. HTTPHandler and GRPCService adapt it to net/http and gRPC, and
// Server runs both listeners.
package api

import (
	"context"
	"strconv"
)

// Routes served by the core. All are POST.
const (
	PathAddUser       = "/api/add_user"
	PathAddOrder      = "/api/add_order"
	PathGetOrders     = "/api/get_orders"
	PathGetUserDetail = "/api/get_userdetail"
)

// Request is what a transport hands to the core.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Header is a single response header. Order is preserved.
type Header struct {
	Name  string
	Value string
}

// Response is what the core hands back to a transport.
type Response struct {
	StatusCode int
	Status     string
	Headers    []Header
	Body       []byte
}

// Header returns the value of the first header called name, or "".
func (r Response) Header(name string) string {
	for _, h := range r.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

var reasons = map[int]string{
	200: "Ok",
	400: "Bad Request",
	403: "Unauthorized",
	404: "Not Found",
	500: "Internal Server Error",
}

// statusResponse is a bodiless response with the ledger's reason phrase.
func statusResponse(code int) Response {
	return Response{StatusCode: code, Status: reasons[code]}
}

// jsonResponse is a 200 carrying body with JSON content headers.
func jsonResponse(body []byte) Response {
	return Response{
		StatusCode: 200,
		Status:     reasons[200],
		Headers: []Header{
			{Name: "Content-Type", Value: "application/json"},
			{Name: "Content-Length", Value: strconv.Itoa(len(body))},
		},
		Body: body,
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request id used to correlate log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
