// Package access reads and writes struct fields regardless of their export
// status, within the limits of a runtime Capability.
//
// Two capabilities exist:
//   - Unsafe reaches unexported fields through package unsafe, refusing only
//     the unexported fields of Go runtime packages
//   - Exported restricts access to exported fields
//
// Default returns the one selected at build time: Unsafe, or Exported when
// built with the clonersafe tag.
package access
