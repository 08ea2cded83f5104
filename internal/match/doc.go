// Package match ranks known names by edit distance so that policy files
// referring to a misspelled type or field can report "did you mean" hints.
//
// Key functions:
//   - Levenshtein: computes edit distance between strings
//   - Suggest: returns the closest candidates to a name
package match
