package grpc

import (
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/chengshang-tools/launcher-auth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request field names.
const (
	fieldUserName    = "username"
	fieldPassword    = "password"
	fieldRememberMe  = "rememberMe"
	fieldAutoLogin   = "autoLogin"
	fieldDeviceInfo  = "deviceInfo"
	fieldUserID      = "userId"
	fieldToken       = "token"
	fieldTokenType   = "tokenType"
	fieldRole        = "role"
	fieldIsActive    = "isActive"
	fieldNewPassword = "newPassword"
)

func badField(key, want string) error {
	return status.Errorf(codes.InvalidArgument, "field %q must be a %s", key, want)
}

// lookup returns the value under key, treating null as absent.
func lookup(in *structpb.Struct, key string) (*structpb.Value, bool) {
	v, ok := in.GetFields()[key]
	if !ok || v == nil {
		return nil, false
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil, false
	}
	return v, true
}

func optionalString(in *structpb.Struct, key string) (*string, error) {
	v, ok := lookup(in, key)
	if !ok {
		return nil, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, badField(key, "string")
	}
	return &s.StringValue, nil
}

func stringField(in *structpb.Struct, key string) (string, error) {
	s, err := optionalString(in, key)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

// requiredString rejects an absent or empty value.
func requiredString(in *structpb.Struct, key string) (string, error) {
	s, err := stringField(in, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", status.Errorf(codes.InvalidArgument, "field %q is required", key)
	}
	return s, nil
}

func optionalBool(in *structpb.Struct, key string) (*bool, error) {
	v, ok := lookup(in, key)
	if !ok {
		return nil, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, badField(key, "bool")
	}
	return &b.BoolValue, nil
}

func boolField(in *structpb.Struct, key string) (bool, error) {
	b, err := optionalBool(in, key)
	if err != nil || b == nil {
		return false, err
	}
	return *b, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func userMap(v *models.UserView) map[string]any {
	var lastLogin any
	if v.LastLoginAt != nil {
		lastLogin = formatTime(*v.LastLoginAt)
	}
	return map[string]any{
		"id":             v.ID,
		"username":       v.UserName,
		"role":           string(v.Role),
		"isActive":       v.IsActive,
		"createdAt":      formatTime(v.CreatedAt),
		"lastLoginAt":    lastLogin,
		"totalUsageTime": v.TotalUsageTime,
		"loginCount":     v.LoginCount,
	}
}

func encode(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func encodeUser(v *models.UserView) (*structpb.Struct, error) {
	return encode(map[string]any{"user": userMap(v)})
}

func encodeLogin(res *services.LoginResult) (*structpb.Struct, error) {
	m := map[string]any{"user": userMap(res.User)}
	if res.RememberMeToken != "" {
		m["rememberMeToken"] = res.RememberMeToken
	}
	if res.AutoLoginToken != "" {
		m["autoLoginToken"] = res.AutoLoginToken
	}
	return encode(m)
}

func encodeUsers(list []*models.UserView) (*structpb.Struct, error) {
	items := make([]any, 0, len(list))
	for _, v := range list {
		items = append(items, userMap(v))
	}
	return encode(map[string]any{"users": items})
}

func encodeOverview(o *services.Overview) (*structpb.Struct, error) {
	return encode(map[string]any{
		"totalUsers":    o.TotalUsers,
		"activeUsers":   o.ActiveUsers,
		"totalSessions": o.TotalSessions,
	})
}

func empty() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}
