package grpc

import (
	"context"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

// authService is the part of services.AuthService exposed over gRPC.
type authService interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	CheckSession(ctx context.Context) (*models.UserView, error)
	ReauthenticateByToken(ctx context.Context, token string, kind models.TokenKind) (*models.UserView, error)
	CreateUser(ctx context.Context, req services.CreateUserRequest) (*models.UserView, error)
	EditUser(ctx context.Context, id string, req services.EditUserRequest) (*models.UserView, error)
	DeleteUser(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id, newPassword string) error
	ToggleActive(ctx context.Context, id string) (*models.UserView, error)
	ListUsers(ctx context.Context) ([]*models.UserView, error)
	SystemOverview(ctx context.Context) (*services.Overview, error)
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var (
		req services.LoginRequest
		err error
	)
	if req.UserName, err = stringField(in, fieldUserName); err != nil {
		return nil, err
	}
	if req.Password, err = stringField(in, fieldPassword); err != nil {
		return nil, err
	}
	if req.RememberMe, err = boolField(in, fieldRememberMe); err != nil {
		return nil, err
	}
	if req.AutoLogin, err = boolField(in, fieldAutoLogin); err != nil {
		return nil, err
	}
	if req.DeviceInfo, err = stringField(in, fieldDeviceInfo); err != nil {
		return nil, err
	}

	res, err := s.auth.Login(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeLogin(res)
}

// Logout accepts an optional userId; without it the signed-in user is
// logged out.
func (s *GRPCServer) Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(in, fieldUserID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.Logout(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	return empty(), nil
}

func (s *GRPCServer) CheckSession(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	v, err := s.auth.CheckSession(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeUser(v)
}

func (s *GRPCServer) ReauthenticateByToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	token, err := requiredString(in, fieldToken)
	if err != nil {
		return nil, err
	}
	raw, err := requiredString(in, fieldTokenType)
	if err != nil {
		return nil, err
	}
	kind, err := models.ParseTokenKind(raw)
	if err != nil {
		return nil, toStatus(err)
	}

	v, err := s.auth.ReauthenticateByToken(ctx, token, kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeUser(v)
}

func (s *GRPCServer) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var (
		req  services.CreateUserRequest
		role string
		err  error
	)
	if req.UserName, err = stringField(in, fieldUserName); err != nil {
		return nil, err
	}
	if req.Password, err = stringField(in, fieldPassword); err != nil {
		return nil, err
	}
	if role, err = stringField(in, fieldRole); err != nil {
		return nil, err
	}
	req.Role = models.Role(role)

	v, err := s.auth.CreateUser(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeUser(v)
}

func (s *GRPCServer) EditUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, fieldUserID)
	if err != nil {
		return nil, err
	}

	var req services.EditUserRequest
	if req.UserName, err = optionalString(in, fieldUserName); err != nil {
		return nil, err
	}
	role, err := optionalString(in, fieldRole)
	if err != nil {
		return nil, err
	}
	if role != nil {
		r := models.Role(*role)
		req.Role = &r
	}
	if req.IsActive, err = optionalBool(in, fieldIsActive); err != nil {
		return nil, err
	}

	v, err := s.auth.EditUser(ctx, id, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeUser(v)
}

func (s *GRPCServer) DeleteUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, fieldUserID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.DeleteUser(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	return empty(), nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, fieldUserID)
	if err != nil {
		return nil, err
	}
	pw, err := stringField(in, fieldNewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ResetPassword(ctx, id, pw); err != nil {
		return nil, toStatus(err)
	}
	return empty(), nil
}

func (s *GRPCServer) ToggleActive(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(in, fieldUserID)
	if err != nil {
		return nil, err
	}
	v, err := s.auth.ToggleActive(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeUser(v)
}

func (s *GRPCServer) ListUsers(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.auth.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeUsers(list)
}

func (s *GRPCServer) SystemOverview(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	o, err := s.auth.SystemOverview(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeOverview(o)
}
