// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetermdev/guiml/pkg/draw"
	"github.com/wavetermdev/guiml/pkg/geom"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/resource"
	"github.com/wavetermdev/guiml/pkg/util/logutil"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

var lifecycle []string

type appComp struct {
	Of[NoProps, NoDeps]
}

type itemProps struct {
	Label string  `json:"label"`
	W     float64 `json:"w" default:"10"`
	H     float64 `json:"h" default:"10"`
}

type itemDeps struct {
	Clock  *Clock
	Engine *Engine
}

type itemComp struct {
	Of[itemProps, itemDeps]
	inits int
	ticks int
}

func (c *itemComp) OnInit() error {
	c.inits++
	lifecycle = append(lifecycle, "init:"+c.Props.Label)
	c.Track(c.Deps.Clock.OnUpdate.Subscribe(func(float64) { c.ticks++ }))
	return nil
}

func (c *itemComp) OnDestroy() {
	lifecycle = append(lifecycle, "destroy:"+c.Props.Label)
}

func (c *itemComp) Width() float64  { return c.Props.W }
func (c *itemComp) Height() float64 { return c.Props.H }

func (c *itemComp) OnDraw(s draw.Surface) {
	s.DrawText(c.Position().Left, c.Position().Top, c.Props.Label, draw.TextStyle{})
}

type counterProps struct {
	Name string `json:"name" default:"start"`
}

type counterComp struct {
	Of[counterProps, NoDeps]
}

func noReload() (bool, error) {
	return false, nil
}

func newTestEngine(t *testing.T, src string, setup func(r *Registry)) *Engine {
	t.Helper()
	lifecycle = nil
	r := NewRegistry()
	require.NoError(t, r.Register("application", func() Component { return &appComp{} }, &ComponentOpts{
		Style: resource.MustParseRawStyle("application:\n  layout: stack\n"),
	}))
	require.NoError(t, r.Register("item", func() Component { return &itemComp{} }, nil))
	if setup != nil {
		setup(r)
	}
	e, err := NewEngine(r, Options{Root: markup.MustParse(src), Reload: noReload})
	require.NoError(t, err)
	return e
}

func items(e *Engine) []*itemComp {
	var rtn []*itemComp
	for _, comp := range e.Components() {
		if item, ok := comp.(*itemComp); ok {
			rtn = append(rtn, item)
		}
	}
	return rtn
}

func TestIdentityIsStable(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/><item label="b"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	first := items(e)
	require.Len(t, first, 2)
	props0 := first[0].Properties()

	require.NoError(t, e.Frame(DefaultTick))
	second := items(e)
	require.Len(t, second, 2)
	assert.Same(t, first[0], second[0])
	assert.Same(t, first[1], second[1])
	assert.NotSame(t, props0, second[0].Properties())
	assert.Same(t, first[0].Deps.Clock, second[0].Deps.Clock)
	assert.Equal(t, 1, second[0].inits)
	assert.Equal(t, 2, second[0].ticks)
	assert.Equal(t, []string{"init:a", "init:b"}, lifecycle)
	assert.Equal(t, 2, e.Clock().Frame())
}

func TestRemovingMiddleSiblingShiftsIdentity(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/><item label="b"/><item label="c"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	before := items(e)
	require.Len(t, before, 3)
	nodes := e.NodeCount()

	require.NoError(t, e.SetRoot(markup.MustParse(`<application><item label="a"/><item label="c"/></application>`)))
	require.NoError(t, e.Frame(DefaultTick))
	after := items(e)
	require.Len(t, after, 2)
	assert.Same(t, before[0], after[0])
	// the slot is positional, so "c" now lives in the second component
	assert.Same(t, before[1], after[1])
	assert.Equal(t, "c", after[1].Props.Label)
	assert.Equal(t, nodes-1, e.NodeCount())
	assert.Equal(t, []string{"init:a", "init:b", "init:c", "destroy:c"}, lifecycle)
}

func TestDestroyCancelsSubscriptions(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	assert.Equal(t, 1, e.Clock().OnUpdate.Len())

	require.NoError(t, e.SetRoot(markup.MustParse(`<application/>`)))
	require.NoError(t, e.Frame(DefaultTick))
	assert.Equal(t, 0, e.Clock().OnUpdate.Len())
	assert.Equal(t, []string{"init:a", "destroy:a"}, lifecycle)

	e.Shutdown()
	assert.Equal(t, 0, e.NodeCount())
}

func TestStackLayoutThroughEngine(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/><item label="b" h="20" w="4"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	got := items(e)
	require.Len(t, got, 2)
	assert.Equal(t, geom.MakeRect(0, 0, 10, 10), got[0].Position())
	assert.Equal(t, geom.MakeRect(10, 3, 30, 7), got[1].Position())
	assert.True(t, got[0].Realized())

	rec := draw.MakeRecorder(80, 24)
	e.Draw(rec)
	assert.Equal(t, []string{"a", "b"}, rec.Texts())
}

func TestStructuralNodesAreFlattened(t *testing.T) {
	e := newTestEngine(t, `<application><group><item label="a"/></group><item label="b"/></application>`, nil)
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	logutil.ResetOnce()

	require.NoError(t, e.Frame(DefaultTick))
	require.NoError(t, e.Frame(DefaultTick))
	got := items(e)
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[1].Position().Top)
	assert.Equal(t, 1, strings.Count(buf.String(), "unknown tag <group>"))
	assert.Len(t, e.Root().LayoutChildren(), 2)
}

func TestBindingWritesThrough(t *testing.T) {
	e := newTestEngine(t, `<application><counter name="x"/></application>`, func(r *Registry) {
		require.NoError(t, r.Register("counter", func() Component { return &counterComp{} }, &ComponentOpts{
			Template: resource.NewRawTemplate(markup.MustParse(`<counter><item bind_label="self.name"/></counter>`)),
		}))
	})
	require.NoError(t, e.Frame(DefaultTick))
	counter, ok := Find[*counterComp](e)
	require.True(t, ok)
	item, ok := Find[*itemComp](e)
	require.True(t, ok)
	assert.Equal(t, "x", item.Props.Label)
	assert.True(t, item.Properties().Bound("label"))

	require.NoError(t, item.Update("label", "y"))
	assert.Equal(t, "y", item.Props.Label)
	assert.Equal(t, "y", counter.Props.Name)
}

type cycX struct {
	Deps struct{ Y *cycY }
}

type cycY struct {
	Deps struct{ X *cycX }
}

func TestCyclicInjectablesAreFatal(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("application", func() Component { return &appComp{} }, nil))
	require.NoError(t, r.RegisterInjectable("application", inject.Injectable(func() *cycX { return &cycX{} })))
	require.NoError(t, r.RegisterInjectable("application", inject.Injectable(func() *cycY { return &cycY{} })))
	_, err := NewEngine(r, Options{Reload: noReload})
	require.Error(t, err)
	assert.True(t, utilds.HasCode(err, utilds.CodeCyclicDependency))
}

type needsMissing struct {
	Of[NoProps, struct{ Missing *cycX }]
}

func TestMissingDependencyIsFatal(t *testing.T) {
	e := newTestEngine(t, `<application><needy/><item label="a"/></application>`, func(r *Registry) {
		require.NoError(t, r.Register("needy", func() Component { return &needsMissing{} }, nil))
	})
	err := e.Frame(DefaultTick)
	require.Error(t, err)
	assert.True(t, utilds.HasCode(err, utilds.CodeMissingDependency))
	// the frame stopped before the later sibling was created
	assert.Empty(t, items(e))
	assert.Equal(t, 0, e.Clock().Frame())
}

func TestConversionErrorSkipsSubtree(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a" w="wide"><item label="inner"/></item><item label="b"/></application>`, nil)
	err := e.Frame(DefaultTick)
	require.Error(t, err)
	assert.False(t, utilds.HasCode(err, utilds.CodeMissingDependency))
	labels := []string{}
	for _, item := range items(e) {
		labels = append(labels, item.Props.Label)
	}
	if diff := cmp.Diff([]string{"b"}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
}

func TestReloadErrorLeavesTreeAlone(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	e.opts.Reload = func() (bool, error) {
		return false, utilds.Errorf(utilds.CodeReload, "bad file")
	}
	err := e.Frame(DefaultTick)
	require.Error(t, err)
	assert.True(t, utilds.HasCode(err, utilds.CodeReload))
	assert.Len(t, items(e), 1)
	assert.Equal(t, 1, e.Clock().Frame())
}

func TestFrameFromOtherGoroutine(t *testing.T) {
	e := newTestEngine(t, `<application/>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	errCh := make(chan error)
	go func() {
		errCh <- e.Frame(DefaultTick)
	}()
	err := <-errCh
	require.Error(t, err)
	assert.True(t, utilds.HasCode(err, utilds.CodeThread))
	assert.True(t, e.CheckThread())
}

func TestAppInitRunsOnce(t *testing.T) {
	calls := 0
	r := NewRegistry()
	require.NoError(t, r.Register("application", func() Component { return &appComp{} }, nil))
	e, err := NewEngine(r, Options{Reload: noReload, AppInit: func(scope *inject.Scope) error {
		calls++
		_, ok := inject.Get[*Engine](scope)
		if !ok {
			return errors.New("engine not in scope")
		}
		return nil
	}})
	require.NoError(t, err)
	require.NoError(t, e.Frame(DefaultTick))
	require.NoError(t, e.Frame(DefaultTick))
	assert.Equal(t, 1, calls)
}

func TestDrawOrderByZIndex(t *testing.T) {
	e := newTestEngine(t, `<application><item label="top" z_index="5"/><item label="bottom"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	var labels []string
	for _, comp := range e.DrawOrder() {
		if item, ok := comp.(*itemComp); ok {
			labels = append(labels, item.Props.Label)
		}
	}
	assert.Equal(t, []string{"bottom", "top"}, labels)
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry()
	newItem := func() Component { return &itemComp{} }
	require.NoError(t, r.Register("item", newItem, nil))

	err := r.Register("item", newItem, nil)
	assert.Equal(t, utilds.CodeRegistry, utilds.GetErrorCode(err))
	assert.Equal(t, "item", utilds.GetErrorSubCode(err))

	bad, err := resource.NewManager(t.TempDir(), nil).Template(`<other/>`)
	require.NoError(t, err)
	err = r.Register("card", newItem, &ComponentOpts{Template: bad})
	assert.True(t, utilds.HasCode(err, utilds.CodeRegistry))
	_, ok := r.Get("card")
	assert.False(t, ok)

	require.NoError(t, r.Register("application", func() Component { return &appComp{} }, nil))
	_, err = NewEngine(r, Options{Reload: noReload})
	require.NoError(t, err)
	assert.Error(t, r.Register("late", newItem, nil))

	fields, err := r.Describe("item")
	require.NoError(t, err)
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	assert.Subset(t, names, []string{"label", "w", "h"})
	_, err = r.Describe("nope")
	assert.True(t, utilds.HasCode(err, utilds.CodeUnknownTag))
}

func drawnTexts(e *Engine) []string {
	rec := draw.MakeRecorder(80, 24)
	e.Draw(rec)
	return rec.Texts()
}

func TestFatalFrameKeepsPreviousDrawing(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/></application>`, func(r *Registry) {
		require.NoError(t, r.Register("needy", func() Component { return &needsMissing{} }, nil))
	})
	require.NoError(t, e.Frame(DefaultTick))
	item := items(e)[0]
	pos := item.Position()
	props := item.Properties()
	require.Equal(t, []string{"a"}, drawnTexts(e))

	require.NoError(t, e.SetRoot(markup.MustParse(`<application><item label="changed"/><needy/></application>`)))
	err := e.Frame(DefaultTick)
	require.True(t, utilds.HasCode(err, utilds.CodeMissingDependency))

	assert.Equal(t, []string{"a"}, drawnTexts(e))
	assert.Len(t, e.DrawOrder(), 2)
	assert.Same(t, props, item.Properties())
	assert.Equal(t, "a", item.Props.Label)
	assert.Equal(t, pos, item.Position())
	assert.True(t, item.Realized())
	assert.Equal(t, 1, e.Clock().Frame())

	require.NoError(t, e.SetRoot(markup.MustParse(`<application><item label="b"/></application>`)))
	require.NoError(t, e.Frame(DefaultTick))
	assert.Equal(t, []string{"b"}, drawnTexts(e))
	assert.Same(t, item, items(e)[0])
}

func TestLayoutErrorKeepsPreviousPositions(t *testing.T) {
	e := newTestEngine(t, `<application><item label="a"/><item label="b"/></application>`, nil)
	require.NoError(t, e.Frame(DefaultTick))
	before := items(e)
	require.Len(t, before, 2)
	posB := before[1].Position()
	require.Equal(t, 10.0, posB.Top)

	require.NoError(t, e.SetRoot(markup.MustParse(
		`<application direction="diagonal"><item label="a"/><item label="b"/><item label="c"/></application>`)))
	err := e.Frame(DefaultTick)
	require.Error(t, err)
	assert.True(t, utilds.HasCode(err, utilds.CodeLayout))

	assert.Equal(t, posB, before[1].Position())
	assert.True(t, before[1].Realized())
	// the item created by the aborted frame is not drawn
	assert.Equal(t, []string{"a", "b"}, drawnTexts(e))
	assert.Len(t, items(e), 2)
	assert.Equal(t, 1, e.Clock().Frame())

	require.NoError(t, e.SetRoot(markup.MustParse(`<application><item label="a"/><item label="b"/><item label="c"/></application>`)))
	require.NoError(t, e.Frame(DefaultTick))
	assert.Equal(t, []string{"a", "b", "c"}, drawnTexts(e))
	assert.Equal(t, posB, items(e)[1].Position())
}

type boxProps struct {
	Name string `json:"name"`
}

type boxComp struct {
	Of[boxProps, NoDeps]
}

func (c *boxComp) OnDestroy() {
	lifecycle = append(lifecycle, "destroy:"+c.Props.Name)
}

func (c *boxComp) Width() float64 {
	lifecycle = append(lifecycle, "size:"+c.Props.Name)
	return 5
}

func (c *boxComp) Height() float64 { return 5 }

func indexOf(list []string, val string) int {
	for i, v := range list {
		if v == val {
			return i
		}
	}
	return -1
}

func TestRemovedAncestorDestroysDescendantsFirst(t *testing.T) {
	e := newTestEngine(t, `<application><box name="outer"><item label="a"/></box></application>`, func(r *Registry) {
		require.NoError(t, r.Register("box", func() Component { return &boxComp{} }, nil))
		require.NoError(t, r.Register("panel", func() Component { return &boxComp{} }, nil))
	})
	require.NoError(t, e.Frame(DefaultTick))
	oldItem := items(e)[0]
	lifecycle = nil

	// <item> keeps its (tag, index) key, but under a different parent
	require.NoError(t, e.SetRoot(markup.MustParse(`<application><panel name="new"/><item label="a"/></application>`)))
	require.NoError(t, e.Frame(DefaultTick))
	newItem := items(e)[0]
	assert.NotSame(t, oldItem, newItem)

	want := []string{"init:a", "destroy:a", "destroy:outer"}
	if diff := cmp.Diff(want, lifecycle[:3]); diff != "" {
		t.Errorf("lifecycle (-want +got):\n%s", diff)
	}
	sized := indexOf(lifecycle, "size:new")
	require.Greater(t, sized, indexOf(lifecycle, "destroy:outer"))
	assert.Equal(t, -1, indexOf(lifecycle, "size:outer"))
}

type gaugeService struct {
	inits    int
	destroys int
}

func (g *gaugeService) OnInit() error {
	g.inits++
	return nil
}

func (g *gaugeService) OnDestroy() {
	g.destroys++
}

type gaugeProps struct {
	W float64 `json:"w"`
}

type gaugeComp struct {
	Of[gaugeProps, NoDeps]
}

func TestFailedConstructionWaitsForSourceChange(t *testing.T) {
	service := &gaugeService{}
	e := newTestEngine(t, `<application><gauge w="wide"/></application>`, func(r *Registry) {
		require.NoError(t, r.Register("gauge", func() Component { return &gaugeComp{} }, nil))
		require.NoError(t, r.RegisterInjectable("gauge", inject.Injectable(func() *gaugeService { return service })))
	})
	err := e.Frame(DefaultTick)
	require.True(t, utilds.HasCode(err, utilds.CodeConversion))
	assert.Equal(t, 1, service.inits)
	assert.Equal(t, 1, service.destroys)

	err = e.Frame(DefaultTick)
	require.True(t, utilds.HasCode(err, utilds.CodeConversion))
	assert.Equal(t, 1, service.inits)

	require.NoError(t, e.SetRoot(markup.MustParse(`<application><gauge w="3"/></application>`)))
	require.NoError(t, e.Frame(DefaultTick))
	assert.Equal(t, 2, service.inits)
	_, ok := Find[*gaugeComp](e)
	assert.True(t, ok)
}
