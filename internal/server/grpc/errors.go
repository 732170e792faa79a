package grpc

import (
	"context"
	"errors"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status. Taxonomy and store errors
// keep their full message, including the failed operation and driver error;
// unexpected failures are reported as internal.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrNotAuthenticated),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenTypeMismatch),
		errors.Is(err, common.ErrTokenRevokedOrExpired):
		return status.Error(codes.Unauthenticated, err.Error())

	case errors.Is(err, common.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, common.ErrAccountDisabled),
		errors.Is(err, common.ErrSelfActionForbidden):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, common.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, err.Error())

	case errors.Is(err, common.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, common.ErrInvalidUsername),
		errors.Is(err, common.ErrInvalidRole),
		errors.Is(err, common.ErrPasswordTooShort),
		errors.Is(err, common.ErrNoFieldsToUpdate),
		errors.Is(err, common.ErrInvalidTokenKind):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, common.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}

	return status.Error(codes.Internal, "internal error")
}
