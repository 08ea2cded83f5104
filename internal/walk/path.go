package walk

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"reflect-cloner/internal/common"
)

type segment uint8

const (
	segRoot segment = iota
	segField
	segIndex
	segKey
)

// path locates a value inside the original graph, e.g. Order.Items[2].
// Nodes are built on the way down and only formatted when an error needs
// them.
type path struct {
	parent *path
	kind   segment
	name   string
	index  int
	key    reflect.Value
}

func rootPath(t reflect.Type) *path {
	for t.Kind() == reflect.Ptr && t.Elem().Name() != "" {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		name = common.TypeName(t)
	}

	return &path{kind: segRoot, name: name}
}

func (p *path) field(name string) *path { return &path{parent: p, kind: segField, name: name} }

func (p *path) elem(i int) *path { return &path{parent: p, kind: segIndex, index: i} }

func (p *path) entry(key reflect.Value) *path { return &path{parent: p, kind: segKey, key: key} }

func (p *path) String() string {
	var nodes []*path
	for n := p; n != nil; n = n.parent {
		nodes = append(nodes, n)
	}

	var sb strings.Builder

	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]

		switch n.kind {
		case segRoot:
			sb.WriteString(n.name)
		case segField:
			sb.WriteByte('.')
			sb.WriteString(n.name)
		case segIndex:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(n.index))
			sb.WriteByte(']')
		case segKey:
			fmt.Fprintf(&sb, "[%v]", n.key)
		}
	}

	return sb.String()
}

// located marks errors that already carry the path they occurred at.
type located struct{ error }

func (l located) Unwrap() error { return l.error }

// wrap prefixes err with the path unless an inner call already did.
func (p *path) wrap(err error) error {
	if err == nil {
		return nil
	}

	var l located
	if errors.As(err, &l) {
		return err
	}

	return located{errors.Wrapf(err, "%s", p)}
}
