// Package history implements the optional availability history sink.
//
// The sink:
//   - Flattens each refresh cycle into one row per listing
//   - Buffers rows in a growable ring so recording never blocks a cycle
//   - Batch-inserts into Postgres with ON CONFLICT DO NOTHING
//   - Is write-only; nothing in the bridge ever reads history back
package history
