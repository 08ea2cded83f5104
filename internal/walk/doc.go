// Package walk runs clone sessions: it traverses an original value graph and
// builds the copy graph, allocating one copy per original reference instance.
//
// Every reference copy is registered in the identity table before its
// contents are filled, so cycles and shared references terminate and keep
// their shape. Structs held by value inside other structs are registered
// under their own address too, which lets pointers to them resolve into the
// copy.
//
// Fills of pointers, slices, maps and reference containers are the units of
// work. A depth-first session runs them immediately and a breadth-first
// session queues them in discovery order. A parallel session hands them to an
// errgroup. Values held by value are always filled inline.
package walk
