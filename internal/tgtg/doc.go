// Package tgtg provides the TooGoodToGo app API client used by the bridge.
//
// REST endpoints (relative to https://apptoogoodtogo.com/api):
//   - POST /auth/v3/token/refresh: exchange the refresh token for a new session
//   - POST /item/v8/{item_id}: fetch a single listing
//   - POST /item/v8/: list favorited listings (paged)
//   - POST /order/v6/active: list active orders
//
// Every call authenticates with a bearer access token plus the datadome
// cookie captured from an app session. A stale or rejected session is
// refreshed transparently; rotated refresh tokens and cookies are kept.
package tgtg
