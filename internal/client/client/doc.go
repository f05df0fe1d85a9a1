// Package client is the Verixa CLI's view of the auth server.
//
// Client is the transport-agnostic contract; HTTPClient implements it over
// the JSON API. HTTPClient keeps the session in memory: the access token is
// sent as a Bearer header and the refresh token, captured from the login
// response's Set-Cookie header, is sent back as a cookie. Me retries once
// after a refresh when the access token has expired.
//
// # Error Handling
//
// Transport failures and 502/503/504 match ErrUnavailable, 401 matches
// ErrUnauthorized and every non-2xx response also carries an *APIError with
// the server's message. Use errors.Is and errors.As.
package client
