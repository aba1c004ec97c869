// Package metrics defines the sinks that record negotiation outcomes.
// Sinks like PromSink and InfluxSink (infra/metrics) record negotiation,
// round and optimization events and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when several sinks are
// configured.
package metrics
