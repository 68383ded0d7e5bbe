/*
Package identitysdk holds the wire types, stable error codes and a Go client
for the identity service.

# Flow

A typical signup and login:

	client := identitysdk.NewClient("http://localhost:8080")

	_, err := client.Register(ctx, identitysdk.RegisterRequest{Email: "a@x.com", Password: "secret1"})
	sent, err := client.SendCode(ctx, "a@x.com")
	err = client.CheckCode(ctx, identitysdk.CheckCodeRequest{Email: "a@x.com", Code: sent.Code})
	login, err := client.Login(ctx, identitysdk.LoginRequest{Email: "a@x.com", Password: "secret1"})

	me, err := client.Me(ctx, login.Token)

# Errors

Failed calls return *APIError. Code is one of the ErrorCode constants and is
stable across releases; Message is for humans. Use IsCode to branch:

	if identitysdk.IsCode(err, identitysdk.ErrorCodeNotVerified) {
		// ask the user to verify first
	}

Every response body also carries the legacy "status" field: "0" on success,
"1" on failure.

# Validation

Request types implement Validate using ozzo-validation. The server runs the
same checks and reports field problems in APIError.Details.
*/
package identitysdk
