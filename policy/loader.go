package policy

import (
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"reflect-cloner/internal/common"
	"reflect-cloner/internal/match"
)

// File is the YAML form of a policy:
//
//	version: "1"
//	defaults: true
//	types:
//	  testmodel.Customer: share
//	  "*testmodel.Product": original
//	fields:
//	  testmodel.Order.Notes: skip
//
// Type names are package alias qualified (or fully import path qualified) and
// are resolved against the types handed to Apply.
type File struct {
	Version  string            `yaml:"version"`
	Defaults *bool             `yaml:"defaults,omitempty"`
	Tags     *bool             `yaml:"tags,omitempty"`
	Types    map[string]Action `yaml:"types,omitempty"`
	Fields   map[string]Action `yaml:"fields,omitempty"`
}

// ParseFile loads and parses a YAML policy file from the given path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy file %s", path)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse policy YAML")
	}

	if f.Version == "" {
		f.Version = "1"
	}

	if f.Version != "1" {
		return nil, errors.Errorf("unsupported policy file version %q", f.Version)
	}

	return &f, nil
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// Apply registers the file's rules on b. Every unknown type or field name is
// reported, with suggestions, in a single aggregated error.
func (f *File) Apply(b *Builder, types Known) error {
	var errs *multierror.Error

	if f.Defaults != nil && !*f.Defaults {
		b.WithoutDefaults()
	}

	if f.Tags != nil && !*f.Tags {
		b.IgnoreTags()
	}

	for _, name := range sortedKeys(f.Types) {
		t, err := types.lookup(name)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		b.Type(t, f.Types[name])
	}

	for _, path := range sortedKeys(f.Fields) {
		dot := strings.LastIndex(path, ".")
		if dot <= 0 || dot == len(path)-1 {
			errs = multierror.Append(errs, errors.Errorf("field rule %q must look like Type.Field", path))
			continue
		}

		t, err := types.lookup(path[:dot])
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		b.Field(t, path[dot+1:], f.Fields[path])
	}

	return errs.ErrorOrNil()
}

// Load parses data and builds a policy, resolving names against types.
func Load(data []byte, types ...reflect.Type) (*Policy, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return build(f, types)
}

// LoadFile is Load reading from path.
func LoadFile(path string, types ...reflect.Type) (*Policy, error) {
	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}

	p, err := build(f, types)

	return p, errors.Wrapf(err, "policy file %s", path)
}

func build(f *File, types []reflect.Type) (*Policy, error) {
	b := NewBuilder()

	if err := f.Apply(b, NewKnown(types...)); err != nil {
		return nil, err
	}

	return b.Build()
}

// Known indexes types by the names a policy file may use for them.
type Known map[string]reflect.Type

// NewKnown indexes each type (and the pointer to it) by alias qualified and
// fully qualified name.
func NewKnown(types ...reflect.Type) Known {
	k := make(Known, 4*len(types))

	for _, t := range types {
		if t == nil {
			continue
		}

		for _, tt := range []reflect.Type{t, reflect.PointerTo(t)} {
			k[common.TypeName(tt)] = tt
			k[common.QualifiedName(tt)] = tt
		}
	}

	return k
}

func (k Known) lookup(name string) (reflect.Type, error) {
	if t, ok := k[name]; ok {
		return t, nil
	}

	err := errors.Errorf("unknown type %q", name)
	if hints := match.Suggest(name, sortedKeys(k), 3); len(hints) > 0 {
		err = errors.Errorf("%v (did you mean %s?)", err, strings.Join(hints, ", "))
	}

	return nil, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
