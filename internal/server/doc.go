// Package server exposes the bridge's host-facing HTTP and WebSocket API.
//
// The server:
//   - Serves sensor states and attributes over REST
//   - Pushes refreshed sensor states to WebSocket clients after every cycle
//   - Reports coordinator and history health under /health
//   - Drops WebSocket clients that cannot keep up with the broadcast rate
package server
