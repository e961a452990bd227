// Package domain holds the core types shared across the orchestration layer:
// ledger accounts, the business/infrastructure error taxonomy, the wire-safe
// ActivityError envelope, retry policies and workflow run results.
//
// Nothing in this package performs I/O. Adapters and services depend on it;
// it depends on nothing but the decimal representation of money.
package domain
