package walk

import (
	"strings"

	"github.com/pkg/errors"
)

//go:generate go tool stringer -type=Traversal -linecomment -output=traversal_string.go

// Traversal selects the order in which reference fills run.
type Traversal int

const (
	DepthFirst   Traversal = iota // depth-first
	BreadthFirst                  // breadth-first
)

// ParseTraversal accepts the String forms and the short names "dfs" and "bfs".
func ParseTraversal(s string) (Traversal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "depth-first", "dfs":
		return DepthFirst, nil
	case "breadth-first", "bfs":
		return BreadthFirst, nil
	default:
		return DepthFirst, errors.Errorf("unknown traversal %q", s)
	}
}
