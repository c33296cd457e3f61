// Package costs prices token usage in USD.
//
// The calculator resolves a per-1000-token rate by exact model name,
// then longest model-prefix match ("gpt-4" covers "gpt-4-0613"), then the
// provider's "default" entry. Costs on usage records are estimates for
// reporting, not invoices; billing reconciliation happens downstream.
package costs
