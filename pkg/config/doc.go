// Package config loads, defaults, and validates the gateway's YAML
// configuration.
//
// Loading is a fixed sequence: parse the file, fill zero values with
// defaults, apply WEBRANA_SECTION_FIELD environment overrides, then
// validate. Validation collects every failure before reporting, so a
// broken file surfaces all of its problems in one pass.
//
// Credentials never live in the file. Provider entries carry an
// api_key_ref naming a secret, resolved at startup through the
// security/secrets chain.
package config
