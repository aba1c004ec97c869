// Package infra holds the adapters around the negotiation core: the MQTT
// supplier transport, the metrics sinks, the KPI store and the zerolog
// logger. They depend on interfaces defined under core.
package infra
