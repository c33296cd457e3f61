// Package gateway provides the HTTP surface shared by the gateway's
// handlers: response and SSE writers, rate-limit headers, and the
// translation from internal error types to the unified error body.
//
// The error taxonomy is closed. Whatever fails inside a request, the
// caller sees one of the fixed error kinds with enough structure
// (exceeded dimension, reset time, upstream status) to decide whether
// and when to retry.
package gateway
