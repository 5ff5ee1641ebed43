// Package dubbing converts translated text into timed speech-synthesis
// requests. It builds behavioral instruction clauses for a remote synthesis
// model, computes a bounded speed multiplier, and drives single, batch, and
// streaming synthesis flows.
package dubbing
