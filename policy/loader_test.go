package policy_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reflect-cloner/policy"
)

func TestParse(t *testing.T) {
	yaml := `
types:
  policy_test.person: share
  "*policy_test.account": original
fields:
  policy_test.account.Notes: skip
`

	f, err := policy.Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Nil(t, f.Defaults)
	assert.Equal(t, map[string]policy.Action{
		"policy_test.person":   policy.Share,
		"*policy_test.account": policy.Original,
	}, f.Types)
	assert.Equal(t, policy.Skip, f.Fields["policy_test.account.Notes"])

	out, err := policy.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), "policy_test.account.Notes: skip")
}

func TestParseErrors(t *testing.T) {
	_, err := policy.Parse([]byte("version: \"2\"\n"))
	assert.EqualError(t, err, `unsupported policy file version "2"`)

	_, err = policy.Parse([]byte("types:\n  a.B: twice\n"))
	assert.ErrorContains(t, err, `unknown copy action "twice"`)

	_, err = policy.Parse([]byte("types:\n  a.B: [copy]\n"))
	assert.ErrorContains(t, err, "copy action must be a scalar")
}

func TestLoad(t *testing.T) {
	yaml := `
version: "1"
defaults: false
tags: false
types:
  policy_test.person: share
fields:
  policy_test.account.Notes: skip
`

	accountType := reflect.TypeFor[account]()

	p, err := policy.Load([]byte(yaml), accountType, reflect.TypeFor[person]())
	require.NoError(t, err)

	a, err := p.TypeAction(reflect.TypeFor[person]())
	require.NoError(t, err)
	assert.Equal(t, policy.Share, a)

	a, err = p.FieldAction(fieldRef(accountType, "Notes"))
	require.NoError(t, err)
	assert.Equal(t, policy.Skip, a)

	a, err = p.FieldAction(fieldRef(accountType, "Owner"))
	require.NoError(t, err)
	assert.Equal(t, policy.Default, a, "tags disabled by the file")
}

func TestLoadUnknownNames(t *testing.T) {
	yaml := `
types:
  policy_test.persn: share
  policy_test.acount: skip
fields:
  policy_test.account.Notez: skip
  nodot: skip
`

	_, err := policy.Load([]byte(yaml), reflect.TypeFor[account](), reflect.TypeFor[person]())
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `unknown type "policy_test.persn" (did you mean policy_test.person`)
	assert.Contains(t, msg, `unknown type "policy_test.acount" (did you mean policy_test.account`)
	assert.Contains(t, msg, `field rule "nodot" must look like Type.Field`)
	assert.NotContains(t, msg, "Notez", "builder errors surface only after every name resolves")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  policy_test.account.ID: share\n"), 0o600))

	p, err := policy.LoadFile(path, reflect.TypeFor[account]())
	require.NoError(t, err)

	a, err := p.FieldAction(fieldRef(reflect.TypeFor[account](), "ID"))
	require.NoError(t, err)
	assert.Equal(t, policy.Share, a)

	_, err = policy.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read policy file")

	_, err = policy.LoadFile(path)
	assert.ErrorContains(t, err, "policy file "+path)
}

func TestKnown(t *testing.T) {
	k := policy.NewKnown(reflect.TypeFor[person](), nil)

	assert.Equal(t, reflect.TypeFor[person](), k["policy_test.person"])
	assert.Equal(t, reflect.TypeFor[*person](), k["*policy_test.person"])
	assert.Equal(t, reflect.TypeFor[person](), k["reflect-cloner/policy_test.person"])
	assert.Len(t, k, 4)
}
