package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "launcher.auth.v1.AuthService"

// Method names of the auth service.
const (
	MethodLogin                 = "Login"
	MethodLogout                = "Logout"
	MethodCheckSession          = "CheckSession"
	MethodReauthenticateByToken = "ReauthenticateByToken"
	MethodCreateUser            = "CreateUser"
	MethodEditUser              = "EditUser"
	MethodDeleteUser            = "DeleteUser"
	MethodResetPassword         = "ResetPassword"
	MethodToggleActive          = "ToggleActive"
	MethodListUsers             = "ListUsers"
	MethodSystemOverview        = "SystemOverview"
)

// FullMethod returns the invocation path of method, e.g.
// "/launcher.auth.v1.AuthService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is the server side of the auth service. Every method
// takes and returns a google.protobuf.Struct body.
type AuthServiceServer interface {
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReauthenticateByToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleActive(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SystemOverview(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AuthServiceDesc describes the auth service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodLogin, AuthServiceServer.Login),
		unaryHandler(MethodLogout, AuthServiceServer.Logout),
		unaryHandler(MethodCheckSession, AuthServiceServer.CheckSession),
		unaryHandler(MethodReauthenticateByToken, AuthServiceServer.ReauthenticateByToken),
		unaryHandler(MethodCreateUser, AuthServiceServer.CreateUser),
		unaryHandler(MethodEditUser, AuthServiceServer.EditUser),
		unaryHandler(MethodDeleteUser, AuthServiceServer.DeleteUser),
		unaryHandler(MethodResetPassword, AuthServiceServer.ResetPassword),
		unaryHandler(MethodToggleActive, AuthServiceServer.ToggleActive),
		unaryHandler(MethodListUsers, AuthServiceServer.ListUsers),
		unaryHandler(MethodSystemOverview, AuthServiceServer.SystemOverview),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "launcher/auth/v1/auth.proto",
}
