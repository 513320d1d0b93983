// Package server provides the HTTP surface of the triage dashboard: the
// dashboard page itself, the Google OAuth2 login round-trip, the custom-rule
// API, in-memory browser sessions, health probes, and a dedicated Prometheus
// metrics server.
package server
