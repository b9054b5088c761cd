package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/middleware"
)

var errAuthRequired = errors.New("authentication required")

// requireUser returns the caller's user ID or an Unauthenticated error.
func requireUser(ctx context.Context) (int64, error) {
	userID := middleware.GetUserID(ctx)
	if userID == 0 {
		return 0, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return userID, nil
}

// toConnectError maps an engine error to a connect status. Unclassified
// errors are logged with op and reach the caller only as "server error".
func toConnectError(op string, err error) error {
	msg := errors.New(apperr.Message(err))
	switch {
	case apperr.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, msg)
	case apperr.IsUnauthorized(err):
		return connect.NewError(connect.CodePermissionDenied, msg)
	case apperr.IsNotFound(err):
		return connect.NewError(connect.CodeNotFound, msg)
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, msg)
	}
}
