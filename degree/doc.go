// Package degree defines the degree record and its canonical byte encoding.
//
// A record reaches the world state only through Encode. The encoding is compact
// JSON whose top-level keys are emitted in byte order, independent of struct
// layout or the order fields were assigned, so every replica executing the ledger
// writes byte-identical values and therefore agrees on hashes.
//
// Canonicalize is the choke point for bytes arriving from elsewhere (snapshots,
// operator tooling): it accepts a value only if re-encoding it reproduces it
// exactly.
package degree
