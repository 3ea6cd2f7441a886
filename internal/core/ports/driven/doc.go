// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// Services in internal/core/services depend on these interfaces only;
// concrete backends live under internal/adapters/driven and can be
// swapped without touching retrieval logic.
package driven
