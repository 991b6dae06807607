/*
Package authsdk is a Go client for the DocuChat identity service.

The service keeps sessions in cookies: an httpOnly access token, an httpOnly
refresh token and a script-readable CSRF value that must be echoed in the
X-CSRF-Token header on every state-changing request. SDKClient holds a cookie
jar and does the echoing for you:

	client, err := authsdk.NewSDKClient("https://app.example.com")
	if err != nil {
		return err
	}

	if err := client.Login(ctx, authsdk.LoginRequest{Email: email, Password: password}); err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeEmailNotVerified {
			// ask the user to check their inbox
		}
		return err
	}

	me, err := client.Me(ctx)

Refresh rotates all three cookies. Presenting a refresh token twice revokes
every session of the user, so a client must not share its jar between
concurrent refreshes.

The request and response types double as the server's wire types.
*/
package authsdk
