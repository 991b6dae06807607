package authsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docuchat/docuchat/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestClientEchoesCSRFCookie(t *testing.T) {
	var gotHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: authsdk.DefaultCSRFCookieName, Value: "csrf-1", Path: "/"})
		_ = json.NewEncoder(w).Encode(authsdk.StatusResponse{Status: "ok"})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-CSRF-Token")
		_ = json.NewEncoder(w).Encode(authsdk.StatusResponse{Status: "ok"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := authsdk.NewSDKClient(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Login(ctx, authsdk.LoginRequest{Email: "a@example.com", Password: "x"}))
	require.Equal(t, "csrf-1", c.CSRFToken())

	require.NoError(t, c.Logout(ctx))
	require.Equal(t, "csrf-1", gotHeader)
}

func TestClientParsesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/register":
			authsdk.ErrInvalidRequest.WithDescription("Email is invalid.").WriteError(w)
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := authsdk.NewSDKClient(srv.URL)
	require.NoError(t, err)

	err = c.Register(context.Background(), authsdk.RegisterRequest{Email: "nope"})
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, apiErr.Code)
	require.Equal(t, "Email is invalid.", apiErr.Description)
	require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeInvalidRequest))

	_, err = c.GetLiveness(context.Background())
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestWithDescriptionCopies(t *testing.T) {
	e := authsdk.ErrForbidden.WithDescription("nope")
	require.Equal(t, "nope", e.Description)
	require.Equal(t, "Forbidden", authsdk.ErrForbidden.Description)
}
