package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fixture struct {
	conn  *grpc.ClientConn
	svc   *services.AuthService
	token string
}

// startServer runs a server on an in-memory listener with one registered
// user, alice, and returns a client connection plus alice's token.
func startServer(t *testing.T) *fixture {
	t.Helper()

	tokens, err := auth.NewJWTService([]byte("0123456789abcdef0123456789abcdef"), "gophauth", 15*time.Minute)
	require.NoError(t, err)
	hasher := auth.NewArgon2idHasher(cryptox.Params{MemoryKiB: 64, Iterations: 1, Parallelism: 1})
	svc, err := services.NewAuthService(users.NewMemoryRepository(), hasher, tokens, logging.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Register(ctx, "alice", "a@x.io", "s3cret!")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", "s3cret!")
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop(), svc)

	srvCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(srvCtx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &fixture{conn: conn, svc: svc, token: token}
}

func withBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestVerifyToken(t *testing.T) {
	f := startServer(t)
	ctx := context.Background()

	out := &wrapperspb.StringValue{}
	require.NoError(t, f.conn.Invoke(ctx, VerifyTokenMethod, wrapperspb.String(f.token), out))
	assert.Equal(t, "alice", out.GetValue())

	err := f.conn.Invoke(ctx, VerifyTokenMethod, wrapperspb.String("garbage"), out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestWhoAmI(t *testing.T) {
	f := startServer(t)

	out := &structpb.Struct{}
	require.NoError(t, f.conn.Invoke(withBearer(context.Background(), f.token), WhoAmIMethod, &emptypb.Empty{}, out))

	fields := out.AsMap()
	assert.Equal(t, "alice", fields["username"])
	assert.Equal(t, "a@x.io", fields["email"])
	assert.NotEmpty(t, fields["id"])
	assert.NotContains(t, fields, "password_hash")
}

func TestWhoAmI_Unauthenticated(t *testing.T) {
	f := startServer(t)

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no metadata", context.Background()},
		{"bad token", withBearer(context.Background(), "garbage")},
		{"wrong scheme", metadata.AppendToOutgoingContext(context.Background(), "authorization", "Basic "+f.token)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.conn.Invoke(tt.ctx, WhoAmIMethod, &emptypb.Empty{}, &structpb.Struct{})
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
		})
	}
}

func TestHealth(t *testing.T) {
	f := startServer(t)

	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestServe_NoGoroutineLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("serve and stop", func(t *testing.T) {
		f := startServer(t)
		out := &wrapperspb.StringValue{}
		require.NoError(t, f.conn.Invoke(context.Background(), VerifyTokenMethod, wrapperspb.String(f.token), out))
	})
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
