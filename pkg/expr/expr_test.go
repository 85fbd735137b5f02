// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

type todoItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type todoComp struct {
	Items   []*todoItem
	text    string
	clicked int
	extra   map[string]any
}

func (c *todoComp) Text() string { return c.text }
func (c *todoComp) SetText(v string) { c.text = v }
func (c *todoComp) NumOpen() int {
	n := 0
	for _, item := range c.Items {
		if !item.Done {
			n++
		}
	}
	return n
}
func (c *todoComp) AddClicked() { c.clicked++ }
func (c *todoComp) Remove(item *todoItem) { c.clicked += 10 }
func (c *todoComp) Broken() (int, error) { return 0, errors.New("broken") }
func (c *todoComp) GetAttr(name string) (any, bool) {
	val, ok := c.extra[name]
	return val, ok
}

func newComp() *todoComp {
	return &todoComp{
		Items: []*todoItem{{Text: "a"}, {Text: "b", Done: true}, {Text: "c"}},
		text:  "hello",
		extra: map[string]any{"font_size": 14},
	}
}

func TestEvalAccess(t *testing.T) {
	ev := NewEvaluator(16)
	comp := newComp()
	scope := NewScope(map[string]any{"self": comp})

	cases := []struct {
		src  string
		want any
	}{
		{"self.text", "hello"},
		{"self.num_open", 2},
		{"self.items[1].text", "b"},
		{"self.items[0].done", false},
		{"!self.items[1].done", false},
		{"self.font_size + 1", 15},
		{"len(self.items)", 3},
		{"self.num_open > 1 ? \"many\" : \"few\"", "many"},
		{"\"${self.num_open} open\"", "2 open"},
		{"\"${self.text}\"", "hello"},
		{"10 / 4", 2.5},
		{"7 % 3", 1},
		{"-(2 * 3)", -6},
		{"[1, 2][1]", 2},
		{"{a = 1}.a", 1},
		{"self.text == \"hello\" && self.num_open == 2", true},
		{"null", nil},
	}
	for _, tc := range cases {
		got, err := ev.Eval(tc.src, scope)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, got, tc.src)
	}
}

func TestEvalMethodValues(t *testing.T) {
	comp := newComp()
	scope := NewScope(map[string]any{"self": comp})

	fn, err := Default.Eval("self.add_clicked", scope)
	require.NoError(t, err)
	_, err = Call(fn)
	require.NoError(t, err)
	assert.Equal(t, 1, comp.clicked)

	bound, err := Default.Eval("partial(self.remove, self.items[0])", scope)
	require.NoError(t, err)
	_, err = Call(bound)
	require.NoError(t, err)
	assert.Equal(t, 11, comp.clicked)

	_, err = Default.Eval("self.broken", scope)
	assert.Error(t, err)
}

func TestEvalErrors(t *testing.T) {
	scope := NewScope(map[string]any{"self": newComp()})
	for _, src := range []string{"missing", "self.nope", "self.items[7]", "1 +", "nosuchfn(1)", "\"a\" < 1"} {
		_, err := Default.Eval(src, scope)
		require.Error(t, err, src)
		assert.Equal(t, utilds.CodeExpr, utilds.GetErrorCode(err), src)
	}
}

func TestAssign(t *testing.T) {
	comp := newComp()
	scope := NewScope(map[string]any{"self": comp, "n": 1})

	require.NoError(t, Default.Assign("self.text", scope, "bye"))
	assert.Equal(t, "bye", comp.text)

	require.NoError(t, Default.Assign("self.items[0].done", scope, true))
	assert.True(t, comp.Items[0].Done)

	child := scope.With("x", 1)
	require.NoError(t, Default.Assign("n", child, 5))
	val, _ := scope.Lookup("n")
	assert.Equal(t, 5, val)

	assert.Error(t, Default.Assign("self.num_open", scope, 3))
	assert.Error(t, Default.Assign("1 + 2", scope, 3))
}

func TestForEach(t *testing.T) {
	comp := newComp()
	scope := NewScope(map[string]any{"self": comp})

	scopes, err := Default.ForEach("for item in self.items", scope)
	require.NoError(t, err)
	require.Len(t, scopes, 3)
	item, _ := scopes[2].Lookup("item")
	assert.Same(t, comp.Items[2], item)

	scopes, err = Default.ForEach("for i, v in range(2, 4)", scope)
	require.NoError(t, err)
	require.Len(t, scopes, 2)
	i, _ := scopes[1].Lookup("i")
	v, _ := scopes[1].Lookup("v")
	assert.Equal(t, 1, i)
	assert.Equal(t, 3, v)

	_, err = Default.ForEach("for item of self.items", scope)
	assert.Error(t, err)
	_, err = Default.ForEach("for a b in self.items", scope)
	assert.Error(t, err)
}

func TestTruthy(t *testing.T) {
	var nilPtr *todoItem
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(0))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy([]int{}))
	assert.False(t, Truthy(nilPtr))
	assert.True(t, Truthy(0.5))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(&todoItem{}))
}

func TestCallConversions(t *testing.T) {
	out, err := Call(func(a float64, b string) string { return b }, 3, "x", "ignored")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, out)

	out, err = Call(func(xs ...int) int { return len(xs) }, 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out)

	_, err = Call(func(a int) {}, "nope")
	assert.Error(t, err)
	_, err = Call(func() error { return errors.New("x") })
	assert.Error(t, err)
}
