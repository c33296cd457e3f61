// Package middleware provides the gateway's HTTP middleware chain:
// request correlation IDs, structured request logging, and panic
// recovery. The chain wraps every route, including health endpoints.
package middleware
