// Package app assembles the EnergyMix dashboard server: configuration,
// logging, OpenTelemetry, the SQLite store, services, HTTP routes and the
// WebSocket refresh channel.
//
// Construction happens only inside New, called from an entry point; no
// package builds anything at import time, so tests can assemble as many
// application instances as they need without side effects.
package app
