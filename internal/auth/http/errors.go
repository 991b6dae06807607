package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/docuchat/docuchat/internal/auth/service"
	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/docuchat/docuchat/pkg/httpx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

const maxBodyBytes = 1 << 20

// writeServiceError maps service errors onto API errors. Anything unknown is
// logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := authsdk.ErrInvalidRequest.WithDescription(verr.Message)
		apiErr.Details = map[string]string{verr.Field: verr.Message}
		apiErr.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		authsdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrEmailNotVerified):
		authsdk.ErrEmailNotVerified.WriteError(w)
	case errors.Is(err, service.ErrNoMembership):
		authsdk.ErrNoMembership.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		authsdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		authsdk.ErrInvalidOrExpiredToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidInvite):
		authsdk.ErrInvalidInvite.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		authsdk.ErrServerError.WriteError(w)
	}
}

// decodeBody reads a JSON request body, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst, maxBodyBytes); err != nil {
		authsdk.ErrInvalidRequest.WithDescription("request body must be a JSON object").WriteError(w)
		return false
	}
	return true
}
