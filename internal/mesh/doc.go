// Package mesh serializes computed mesh data to and from the boltz mesh
// container, a self-describing binary file of named, typed entries.
//
// Values are explicit tagged variants (dense arrays, fixed-width text lists,
// scalars, a crystal-structure record, and an absent marker). Spin-resolved
// quantities are held as a BySpin mapping and stored with an explicit
// per-entry spin tag rather than a name suffix, so any logical key name
// round-trips losslessly.
package mesh
