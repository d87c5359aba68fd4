/*
Package authsdk provides a client for the credauth authentication service and
the wire types its HTTP API speaks.

# Overview

The service has two operations: register a principal with a username and
password, and log in with them to get a signed bearer token that stays valid
for 24 hours.

	client := authsdk.NewClient("http://localhost:8080")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Password: "correct horse",
	})

	login, err := client.Login(ctx, "alice", "correct horse")
	fmt.Println(login.Token, login.ExpiresAt)

# Error Handling

Every non-2xx response is returned as an *APIError carrying the HTTP status
and the "error" code from the body:

	_, err := client.Register(ctx, req)
	switch {
	case authsdk.IsCode(err, authsdk.ErrorCodeUserExists):
		// username taken
	case authsdk.IsCode(err, authsdk.ErrorCodeInvalidRequest):
		var apiErr *authsdk.APIError
		errors.As(err, &apiErr)
		fmt.Println(apiErr.Fields)
	}

Login never says which half of the credentials was wrong. An unknown username
and a wrong password both yield ErrorCodeInvalidCredentials.

# Server Side

The server writes its error responses through APIError.WriteError so both
ends share one definition of the wire format.
*/
package authsdk
