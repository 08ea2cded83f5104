package copier

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is the copy strategy selected for a type.
type Kind int

const (
	_ Kind = iota // skip zero value, a resolved descriptor always has a strategy

	KindCustom      // custom
	KindPassthrough // passthrough
	KindPointer     // pointer
	KindArray       // array
	KindSlice       // slice
	KindMap         // map
	KindContainer   // container
	KindComposite   // composite
	KindInterface   // interface

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

