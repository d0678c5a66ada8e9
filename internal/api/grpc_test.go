package api

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"fxledger/internal/util"
)

func newGRPCClient(t *testing.T) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	log := util.Discard()
	gs := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(log)))
	NewGRPCService(newTestRouter(t), log).RegisterGRPC(gs)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	if err != nil {
		t.Fatalf("structpb.NewStruct: %v", err)
	}
	out := &structpb.Struct{}
	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "grpc-test")
	err = conn.Invoke(ctx, GRPCMethod(method), req, out)
	return out, err
}

func TestGRPCFlow(t *testing.T) {
	conn := newGRPCClient(t)

	if _, err := invoke(t, conn, "AddUser", map[string]any{"user_id": "u1"}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if _, err := invoke(t, conn, "AddOrder", map[string]any{
		"user_id": "u1", "source": "RUB", "target": "USD", "value": 20, "price": 61,
	}); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}

	out, err := invoke(t, conn, "GetOrders", map[string]any{"user_id": "u1"})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	orders := out.GetFields()["orders"].GetListValue().GetValues()
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	o := orders[0].GetStructValue().GetFields()
	if o["source"].GetStringValue() != "RUB" || o["target"].GetStringValue() != "USD" {
		t.Errorf("order pair = %s/%s, want RUB/USD", o["source"].GetStringValue(), o["target"].GetStringValue())
	}
	if o["value"].GetNumberValue() != 20 || o["price"].GetNumberValue() != 61 {
		t.Errorf("order value/price = %v/%v, want 20/61", o["value"].GetNumberValue(), o["price"].GetNumberValue())
	}

	out, err = invoke(t, conn, "GetUserDetail", map[string]any{"user_id": "u1"})
	if err != nil {
		t.Fatalf("GetUserDetail: %v", err)
	}
	if got := out.GetFields()["user_id"].GetStringValue(); got != "u1" {
		t.Errorf("user_id = %q, want u1", got)
	}
	bal := out.GetFields()["balance"].GetListValue()
	if bal == nil || len(bal.GetValues()) != 0 {
		t.Errorf("balance = %v, want empty list", out.GetFields()["balance"])
	}
}

func TestGRPCStatusCodes(t *testing.T) {
	conn := newGRPCClient(t)

	tests := []struct {
		name     string
		method   string
		in       map[string]any
		wantCode codes.Code
		wantMsg  string
	}{
		{"missing field", "AddUser", map[string]any{}, codes.InvalidArgument, "Bad Request"},
		{"mistyped field", "GetOrders", map[string]any{"user_id": 5}, codes.InvalidArgument, "Bad Request"},
		{"unknown user", "GetUserDetail", map[string]any{"user_id": "ghost"}, codes.PermissionDenied, "Unauthorized"},
		{"unknown user order", "AddOrder", map[string]any{
			"user_id": "ghost", "source": "RUB", "target": "USD", "value": 1, "price": 1,
		}, codes.PermissionDenied, "Unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invoke(t, conn, tt.method, tt.in)
			st, ok := status.FromError(err)
			if !ok {
				t.Fatalf("error %v is not a gRPC status", err)
			}
			if st.Code() != tt.wantCode {
				t.Errorf("code = %v, want %v", st.Code(), tt.wantCode)
			}
			if st.Message() != tt.wantMsg {
				t.Errorf("message = %q, want %q", st.Message(), tt.wantMsg)
			}
		})
	}
}

func TestGRPCUnknownMethod(t *testing.T) {
	conn := newGRPCClient(t)
	_, err := invoke(t, conn, "DeleteUser", map[string]any{"user_id": "u1"})
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("code = %v, want Unimplemented", status.Code(err))
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := map[int]codes.Code{
		400: codes.InvalidArgument,
		403: codes.PermissionDenied,
		404: codes.NotFound,
		500: codes.Internal,
	}
	for in, want := range tests {
		if got := grpcCode(in); got != want {
			t.Errorf("grpcCode(%d) = %v, want %v", in, got, want)
		}
	}
}
