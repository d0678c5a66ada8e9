package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCServiceName is the fully qualified gRPC service name.
const GRPCServiceName = "fxledger.v1.Ledger"

// grpcMethods maps each unary method to the core route it calls.
var grpcMethods = map[string]string{
	"AddUser":       PathAddUser,
	"AddOrder":      PathAddOrder,
	"GetOrders":     PathGetOrders,
	"GetUserDetail": PathGetUserDetail,
}

// GRPCMethod returns the full method name for one of the ledger's methods,
// e.g. "/fxledger.v1.Ledger/AddUser".
func GRPCMethod(name string) string {
	return "/" + GRPCServiceName + "/" + name
}

// LedgerServer is the handler type the service descriptor is registered
// against.
type LedgerServer interface {
	Call(ctx context.Context, path string, in *structpb.Struct) (*structpb.Struct, error)
}

// GRPCService exposes the Router over gRPC. Messages are
// google.protobuf.Struct carrying the same JSON shapes as the HTTP surface.
type GRPCService struct {
	router *Router
	log    *slog.Logger
}

var _ LedgerServer = (*GRPCService)(nil)

// NewGRPCService creates a GRPCService backed by the given router.
func NewGRPCService(router *Router, log *slog.Logger) *GRPCService {
	return &GRPCService{router: router, log: log}
}

// RegisterGRPC registers the service on the given gRPC server instance.
func (s *GRPCService) RegisterGRPC(gs *grpc.Server) {
	gs.RegisterService(&ledgerServiceDesc, s)
}

// Call routes in as a POST to path and converts the core response.
func (s *GRPCService) Call(ctx context.Context, path string, in *structpb.Struct) (*structpb.Struct, error) {
	body, err := in.MarshalJSON()
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encoding request: %v", err)
	}

	resp := s.router.Route(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if resp.StatusCode != 200 {
		return nil, status.Error(grpcCode(resp.StatusCode), resp.Status)
	}

	out := &structpb.Struct{}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := out.UnmarshalJSON(resp.Body); err != nil {
		return nil, status.Errorf(codes.Internal, "decoding response: %v", err)
	}
	return out, nil
}

func grpcCode(httpCode int) codes.Code {
	switch httpCode {
	case 400:
		return codes.InvalidArgument
	case 403:
		return codes.PermissionDenied
	case 404:
		return codes.NotFound
	default:
		return codes.Internal
	}
}

func unaryHandler(method, path string) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(LedgerServer).Call(ctx, path, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GRPCMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(LedgerServer).Call(ctx, path, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ledgerServiceDesc = grpc.ServiceDesc{
	ServiceName: GRPCServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods:     ledgerMethods(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    "fxledger/v1/ledger.proto",
}

func ledgerMethods() []grpc.MethodDesc {
	out := make([]grpc.MethodDesc, 0, len(grpcMethods))
	for _, name := range []string{"AddUser", "AddOrder", "GetOrders", "GetUserDetail"} {
		out = append(out, grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, grpcMethods[name])})
	}
	return out
}

// LoggingInterceptor logs each unary call and tags the context with the
// caller's x-request-id metadata when present.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 {
				ctx = WithRequestID(ctx, ids[0])
			}
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
			"request_id", RequestID(ctx),
		)
		return resp, err
	}
}
