package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/outlayhq/outlay/internal/service"
	"github.com/outlayhq/outlay/pkg/httpx"
	"github.com/outlayhq/outlay/pkg/slogx"
)

// writeServiceError is the single place service failures become HTTP error
// bodies. Anything unrecognised is a 500 with a generic body; the detail goes
// to the log, never to the client.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.ErrAlreadyInUse.WriteError(w)
	case errors.Is(err, service.ErrBadCredentials):
		httpx.ErrBadCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrRefreshExpired):
		httpx.ErrRefreshExpired.WriteError(w)
	case errors.Is(err, service.ErrExpenseNotFound):
		httpx.ErrExpenseNotFound.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("request failed", "err", err)
		httpx.ErrInternal.WriteError(w)
	}
}
