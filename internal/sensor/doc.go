// Package sensor projects listings from the coordinator snapshot into
// host-facing entities.
//
// Each Sensor:
//   - Binds to one listing id for its whole lifetime
//   - Recomputes state and attributes from the current snapshot on every read
//   - Degrades to unknown state or empty attributes when fields are missing
package sensor
