// Package policy decides, per type and per struct field, whether the cloner
// deep copies a value, shares it, skips it or keeps the original instance.
//
// Rules come from several sources:
//   - explicit rules registered on a Builder (Type, Field)
//   - predicate rules (TypeFunc, FieldFunc)
//   - `clone:"..."` struct tags on fields
//   - the Marker interface implemented by a type
//   - process-wide defaults for runtime types (see Defaults)
//   - YAML policy files (Load, LoadFile)
//
// Field level rules take precedence over type level rules. Rules of the same
// level that disagree are reported as a faults.PolicyConflictError. Defaults
// are consulted only when no other type level rule matches.
package policy
