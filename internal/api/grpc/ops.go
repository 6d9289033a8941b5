package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
	"locationapp-backend/internal/service"
)

const opsServiceName = "locationapp.v1.OpsService"

// OpsServer is the operator surface: the reconciliation trigger and a room
// lookup for tooling. Messages are well-known protobuf types.
type OpsServer interface {
	ReleaseExpiredRooms(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRoom(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type OpsHandler struct {
	availability service.AvailabilityService
	rooms        service.RoomService
}

func NewOpsHandler(availability service.AvailabilityService, rooms service.RoomService) *OpsHandler {
	return &OpsHandler{availability: availability, rooms: rooms}
}

func (h *OpsHandler) ReleaseExpiredRooms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	admin, err := GetAdminEmailFromContext(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Manual release of expired rooms", "admin", admin)

	ids, err := h.availability.ReleaseExpiredRooms(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	released := make([]interface{}, len(ids))
	for i, id := range ids {
		released[i] = id
	}
	out, err := structpb.NewStruct(map[string]interface{}{"released": released})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// GetRoom expects {"id": "<room id>"}.
func (h *OpsHandler) GetRoom(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	room, err := h.rooms.GetRoom(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := recordStruct(room.Record())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func recordStruct(rec domain.RoomRecord) (*structpb.Struct, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

// RegisterOpsServer registers srv under locationapp.v1.OpsService.
func RegisterOpsServer(s grpc.ServiceRegistrar, srv OpsServer) {
	s.RegisterService(&opsServiceDesc, srv)
}

var opsServiceDesc = grpc.ServiceDesc{
	ServiceName: opsServiceName,
	HandlerType: (*OpsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReleaseExpiredRooms", Handler: releaseExpiredRoomsHandler},
		{MethodName: "GetRoom", Handler: getRoomHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func releaseExpiredRoomsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OpsServer).ReleaseExpiredRooms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + opsServiceName + "/ReleaseExpiredRooms"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OpsServer).ReleaseExpiredRooms(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getRoomHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OpsServer).GetRoom(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + opsServiceName + "/GetRoom"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OpsServer).GetRoom(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
