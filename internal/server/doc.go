// Package server holds the shared runtime state of the MCP server.
//
// ServerContext wires the host storage client, the credential manager,
// and the metrics registry together, and hands out per-call contacts
// clients. Contacts clients are deliberately not cached: each tool call
// gets a client whose token source reflects the current credential
// state, so a refresh between calls is always picked up.
//
// MetricsServer optionally exposes the Prometheus registry on a
// dedicated port, isolated from the MCP transport.
package server
