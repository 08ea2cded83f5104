// Package diagnostic provides structured warnings and notes produced while
// the cloner builds type descriptors.
//
// Key capabilities:
//   - Inaccessible field reports (fields skipped automatically)
//   - Policy notes (defaults overridden, markers applied)
//   - A concurrency-safe Collector shared by a registry
package diagnostic
