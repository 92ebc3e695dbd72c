// Package client talks to the brandforge gRPC API.
//
// The Client interface is the transport-agnostic contract; GRPCClient is the
// implementation. It owns one connection, attaches the bearer token to every
// call through an interceptor, and maps gRPC status codes to the sentinel
// errors in this package or to common.InsufficientCreditsError when the
// server rejects a call for lack of credits.
package client
