// Package tracker derives per-row progress state from a schedule and
// classifies every slot for display.
//
// Derive computes the effective pointer, the ordinals matching a query
// identifier and the "next" ordinal for one row. Classify maps a single slot
// to a display Class. PointerStore holds the per-row pointer overrides a user
// makes during a session.
package tracker
