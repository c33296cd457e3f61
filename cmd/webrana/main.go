// Webrana is an AI proxy gateway for multi-provider LLM traffic.
//
// It exposes one OpenAI-compatible chat completion endpoint and, per
// request, resolves the account, enforces monthly and per-minute quota,
// routes the model name to its upstream provider (OpenAI, Anthropic,
// Google, Qwen), translates the request and response between schemas,
// and records token usage and estimated cost.
//
// Usage:
//
//	# Start the gateway with default configuration
//	webrana run
//
//	# Start with a custom configuration file
//	webrana run --config /etc/webrana/config.yaml
//
//	# Validate configuration without starting
//	webrana validate
//
//	# Query recorded usage
//	webrana usage query --account acct-42 --limit 50
//
//	# Show version information
//	webrana version
package main

func main() {
	Execute()
}
