// Package identity tracks which copy stands for which original instance
// during one clone session.
//
// Only reference values have an identity: pointers, maps and slices. A slice
// is identified by its element type, the address of its first element and its
// capacity, and is mapped to a full capacity copy of its backing array;
// callers re-slice that copy to the length they need. Everything else,
// including nil references and invalid values, maps to itself.
package identity
