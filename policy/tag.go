package policy

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"reflect-cloner/internal/common"
)

// TagAction parses the `clone` struct tag. The tag holds an action name
// optionally followed by a comma and free-form text:
//
//	Cache  map[string]*Entry `clone:"skip,rebuilt on load"`
//	Parent *Node             `clone:"share"`
func TagAction(tag reflect.StructTag) (Action, error) {
	value, ok := tag.Lookup(TagName)
	if !ok {
		return Default, nil
	}

	name, _ := common.Unpack2(strings.SplitN(value, ",", 2))

	a, err := ParseAction(name)
	if err != nil {
		return Default, errors.Wrapf(err, "invalid %s tag %q", TagName, value)
	}

	return a, nil
}
