package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusMapping is checked in order; the first category err matches wins.
var statusMapping = []struct {
	target error
	code   codes.Code
}{
	{common.ErrInvalidSession, codes.Unauthenticated},
	{common.ErrSessionRevoked, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
	{common.ErrForbidden, codes.PermissionDenied},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrConflict, codes.AlreadyExists},
	{common.ErrValidation, codes.InvalidArgument},
	{common.ErrTransactionAborted, codes.Aborted},
}

// Code maps a service error to its gRPC status code.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	for _, m := range statusMapping {
		if errors.Is(err, m.target) {
			return m.code
		}
	}
	return codes.Internal
}

// toStatus converts err to a status error. Sentinel messages are passed to
// the caller; anything unexpected is logged and reported as "internal error".
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	code := Code(err)
	switch code {
	case codes.Internal:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	case codes.Aborted:
		s.logger.Warn(ctx, "transaction aborted", "error", err)
		return status.Error(codes.Aborted, common.ErrTransactionAborted.Error())
	case codes.Unauthenticated:
		if errors.Is(err, common.ErrSessionRevoked) {
			return status.Error(code, common.ErrSessionRevoked.Error())
		}
		if errors.Is(err, common.ErrInvalidSession) {
			return status.Error(code, common.ErrInvalidSession.Error())
		}
	}
	return status.Error(code, err.Error())
}
