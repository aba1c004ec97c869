// Package events defines the negotiation related events emitted on the event
// bus.
//
// Available event types:
//   - RoundCompleted: one offer/response round finished
//   - NegotiationFinished: a negotiation cycle produced its result
//   - OptimizationFinished: a price/dispatch optimization finished
package events
