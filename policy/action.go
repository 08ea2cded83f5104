package policy

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:generate go tool stringer -type=Action -linecomment -output=action_string.go

// Action is the decision applied to a type or a field while cloning.
type Action int

const (
	Default  Action = iota // default
	Copy                   // copy
	Share                  // share
	Skip                   // skip
	Original               // original
)

// ParseAction parses the lower-case action names used in struct tags and
// policy files. The empty string parses as Default.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Default, nil
	case "copy", "deep":
		return Copy, nil
	case "share", "shallow":
		return Share, nil
	case "skip", "-":
		return Skip, nil
	case "original":
		return Original, nil
	default:
		return Default, errors.Errorf("unknown copy action %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Action) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: copy action must be a scalar", node.Line)
	}

	return errors.Wrapf(a.UnmarshalText([]byte(node.Value)), "line %d", node.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (a Action) MarshalYAML() (any, error) {
	return a.String(), nil
}
