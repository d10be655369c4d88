// Package handle defines the integer identities used to reference pooled
// records.
//
// A Handle is a 64 bit value. The zero value is the universal "no record"
// sentinel. The high bits carry the number of the arena that issued the
// handle and the low bits a per arena sequence that only ever increases.
// Handles are never derived from addresses and are never re-issued, so a
// handle that outlives its record can always be detected as stale.
//
// Ref[T] is the typed form. It carries the expected record type as a type
// parameter so that mixing up handles of different record kinds is a
// compile error rather than a run time surprise.
package handle
