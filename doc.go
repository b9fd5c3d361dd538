// Package adder implements the ADΔER (Address, Decimation, Δt Event
// Representation) event-based video codec: pixel-level event generation,
// raw and compressed stream codecs, and frame reconstruction.
package adder
