// Package coordinator implements the refresh cycle at the core of the bridge.
//
// The coordinator:
//   - Polls the TGTG API on a fixed interval (explicit items or favorites)
//   - Normalizes responses into a keyed listing snapshot
//   - Publishes each snapshot wholesale; consumers read, never merge
//   - Keeps the last good snapshot through failed cycles
package coordinator
