package grpc

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/repository/memory"
	"locationapp-backend/internal/security"
	"locationapp-backend/internal/service"
	"locationapp-backend/internal/storage"
)

type testEnv struct {
	conn  *grpc.ClientConn
	store *memory.Store
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := security.HashPassword("pw")
	require.NoError(t, err)
	auth := service.NewAuthService(
		security.NewLocalProvider("admin@example.com", hash),
		security.NewTokenManager(strings.Repeat("x", 32), time.Hour),
	)
	session, err := auth.Login(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)

	files, err := storage.NewMockStorageService("http://api.test", t.TempDir())
	require.NoError(t, err)
	store := memory.NewStore(nil)
	ops := NewOpsHandler(
		service.NewAvailabilityService(store.RoomRepository),
		service.NewRoomService(store.RoomRepository, files, time.UTC, 30*24*time.Hour),
	)

	srv, _ := NewServer(auth, ops)
	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testEnv{conn: conn, store: store, token: session.Token}
}

func (e *testEnv) withToken(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+e.token)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: opsServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestReleaseExpiredRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	method := "/" + opsServiceName + "/ReleaseExpiredRooms"

	past, err := domain.Occupied(time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)
	overdue := &domain.Room{Title: "A", Address: domain.Address{City: "Lomé"}, PricePerMonth: 1000, Availability: past}
	require.NoError(t, env.store.RoomRepository.Create(ctx, overdue))

	t.Run("Requires a session", func(t *testing.T) {
		err := env.conn.Invoke(ctx, method, &emptypb.Empty{}, new(structpb.Struct))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Releases overdue rooms", func(t *testing.T) {
		out := new(structpb.Struct)
		require.NoError(t, env.conn.Invoke(env.withToken(ctx), method, &emptypb.Empty{}, out))
		released := out.GetFields()["released"].GetListValue().GetValues()
		require.Len(t, released, 1)
		assert.Equal(t, overdue.ID, released[0].GetStringValue())

		room, err := env.store.RoomRepository.GetByID(ctx, overdue.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomStatusAvailable, room.Availability.Status())
	})
}

func TestGetRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	method := "/" + opsServiceName + "/GetRoom"

	room := &domain.Room{Title: "Studio", Address: domain.Address{City: "Kara"}, PricePerMonth: 20000, Availability: domain.Reserved()}
	require.NoError(t, env.store.RoomRepository.Create(ctx, room))

	req, err := structpb.NewStruct(map[string]interface{}{"id": room.ID})
	require.NoError(t, err)
	out := new(structpb.Struct)
	require.NoError(t, env.conn.Invoke(ctx, method, req, out))
	assert.Equal(t, "Studio", out.GetFields()["title"].GetStringValue())
	assert.Equal(t, "reservation", out.GetFields()["status"].GetStringValue())

	missing, _ := structpb.NewStruct(map[string]interface{}{"id": "nope"})
	err = env.conn.Invoke(ctx, method, missing, new(structpb.Struct))
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = env.conn.Invoke(ctx, method, &structpb.Struct{}, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
