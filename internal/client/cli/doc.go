// Package cli is the brandforge command-line client. It wraps the gRPC API
// in cobra commands: generate, refine, balance, show, compare and ping.
// Results are printed as indented JSON.
package cli
