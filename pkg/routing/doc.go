// Package routing selects a provider adapter from a request's model name.
//
// Matching is case-sensitive literal-prefix lookup against a static table,
// longest prefix first. The router also enforces the account's
// enabled-provider set; that policy check runs before any upstream contact.
package routing
