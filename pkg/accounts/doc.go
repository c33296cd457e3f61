// Package accounts holds the read-only account model: plan tiers with
// their quota ceilings and enabled-provider sets, and a Catalog that loads
// provisioned accounts from a YAML snapshot and hot-reloads it on change.
//
// Account provisioning, authentication, and billing belong to external
// systems; the gateway only reads this data.
package accounts
