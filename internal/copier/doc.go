// Package copier decides how values of each type are copied.
//
// The Registry resolves a reflect.Type to a Descriptor naming the strategy
// (passthrough, pointer, array, slice, map, container, composite, interface
// or custom), the type level action of the copy policy and, for structs, the
// per field actions. Descriptors are built on first use and cached for the
// lifetime of the registry.
//
// Custom strategies come in two shapes. A Copier produces the copy of a value
// itself, typically from a plain function parsed by ParseFunc or from the
// CloneWith method of a type implementing Self. A Container
// lets the walker allocate an empty instance first and fill it afterwards,
// which keeps cycles through user defined containers safe; Sequence and
// Mapping adapt ordinary Go container types.
package copier
