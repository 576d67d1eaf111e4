// Package metrics computes spending figures from eagerly fetched transaction lists.
//
// Every function is pure: callers fetch incomes, expenses and budgets up front and pass
// them in, so results can be recomputed from source data on every call and the package is
// safe for concurrent use. Amounts stay exact decimals; rounding to two places happens at
// the presentation boundary.
package metrics
