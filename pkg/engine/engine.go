// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package engine reconciles markup against persistent component instances.
//
// Every frame the source tree is copied and walked depth first. Each node is
// matched to the slot its parent saved for (tag, n-th occurrence of tag)
// in the previous frame. A matched slot keeps its component, dependencies
// and injectables and only gets new properties; an unmatched node gets a
// fresh slot and a new component; saved slots nothing matched are destroyed,
// descendants first. Layout and the clock tick follow the walk.
package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/outrigdev/goid"
	"github.com/wavetermdev/guiml/pkg/expr"
	"github.com/wavetermdev/guiml/pkg/inject"
	"github.com/wavetermdev/guiml/pkg/layout"
	"github.com/wavetermdev/guiml/pkg/markup"
	"github.com/wavetermdev/guiml/pkg/panichandler"
	"github.com/wavetermdev/guiml/pkg/resource"
	"github.com/wavetermdev/guiml/pkg/style"
	"github.com/wavetermdev/guiml/pkg/transform"
	"github.com/wavetermdev/guiml/pkg/util/logutil"
	"github.com/wavetermdev/guiml/pkg/utilds"
)

const DefaultRootTag = "application"

type Options struct {
	// RootTag names the distinguished root component (default "application").
	RootTag string
	// Root is the source tree copied every frame; defaults to <RootTag/>.
	Root *markup.Node
	// GlobalStyle applies to every node, above the tags' own styles.
	GlobalStyle resource.StyleSource
	// Globals is the outermost injectable layer (backend services).
	Globals *inject.Layer
	// AppInit runs once, when the root component is first created, with the
	// root's scope.
	AppInit func(scope *inject.Scope) error
	// Reload is called at the start of every frame; defaults to resource.ReloadAll.
	Reload   func() (bool, error)
	Eval     *expr.Evaluator
	Pipeline *transform.Pipeline
}

type frameCtx struct {
	scope *inject.Scope
	// nearest component ancestor
	container *PersistedNode
	depth     int
}

type templateEntry struct {
	node    *markup.Node
	changed bool
	err     error
}

type sheetEntry struct {
	sheet style.Sheet
	err   error
}

type Engine struct {
	registry *Registry
	opts     Options
	eval     *expr.Evaluator
	pipeline *transform.Pipeline
	scope    *inject.Scope
	clock    *Clock

	root        *PersistedNode
	nodes       map[string]*PersistedNode
	appInitDone bool
	ownerGoId   uint64
	frame       int

	// per frame state
	templates map[string]templateEntry
	sheets    map[string]sheetEntry
	global    style.Sheet
	topLevel  []*PersistedNode
	rendered  []*PersistedNode
	errs      []error
	journal   []savedState
	// bumped when the source tree or a resource changes
	sourceGen int
}

// savedState is a surviving slot as the last committed frame left it.
type savedState struct {
	slot           *PersistedNode
	props          *Properties
	realized       bool
	depth          int
	order          int
	layoutKind     string
	layout         layout.Strategy
	layoutChildren []*PersistedNode
}

// NewEngine freezes the registry. The engine and its Clock are added to the
// outermost layer so components can depend on them.
func NewEngine(registry *Registry, opts Options) (*Engine, error) {
	if err := registry.freeze(); err != nil {
		return nil, err
	}
	if opts.RootTag == "" {
		opts.RootTag = DefaultRootTag
	}
	if opts.Root == nil {
		opts.Root = markup.NewNode(opts.RootTag)
	}
	if opts.Root.Tag != opts.RootTag {
		return nil, utilds.SubErrorf(utilds.CodeRegistry, opts.RootTag, "root node <%s> is not the root tag <%s>", opts.Root.Tag, opts.RootTag)
	}
	if opts.Reload == nil {
		opts.Reload = resource.ReloadAll
	}
	if opts.Eval == nil {
		opts.Eval = expr.Default
	}
	if opts.Pipeline == nil {
		opts.Pipeline = transform.DefaultPipeline()
	}
	globals := opts.Globals
	if globals == nil {
		globals = inject.NewLayer("")
	}
	e := &Engine{
		registry: registry,
		opts:     opts,
		eval:     opts.Eval,
		pipeline: opts.Pipeline,
		clock:    &Clock{},
		nodes:    make(map[string]*PersistedNode),
	}
	globals.Provide(e)
	globals.Provide(e.clock)
	e.scope = inject.NewScope(globals)
	return e, nil
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) Clock() *Clock {
	return e.clock
}

// Root is the slot of the root node, nil before the first frame.
func (e *Engine) Root() *PersistedNode {
	return e.root
}

// SetRoot replaces the source tree from the next frame on.
func (e *Engine) SetRoot(root *markup.Node) error {
	if root == nil || root.Tag != e.opts.RootTag {
		return utilds.SubErrorf(utilds.CodeRegistry, e.opts.RootTag, "root node must be <%s>", e.opts.RootTag)
	}
	e.opts.Root = root
	e.sourceGen++
	return nil
}

// NodeCount is the number of live persisted slots.
func (e *Engine) NodeCount() int {
	return len(e.nodes)
}

func (e *Engine) FrameNum() int {
	return e.frame
}

func (e *Engine) checkThread() error {
	gid := goid.Get()
	if e.ownerGoId == 0 {
		e.ownerGoId = gid
		return nil
	}
	if gid != e.ownerGoId {
		return utilds.Errorf(utilds.CodeThread, "frame called from goroutine %d, engine belongs to %d", gid, e.ownerGoId)
	}
	return nil
}

// CheckThread reports whether the caller runs on the engine's goroutine.
// Before the first frame any goroutine is accepted.
func (e *Engine) CheckThread() bool {
	return e.ownerGoId == 0 || goid.Get() == e.ownerGoId
}

func isFatal(err error) bool {
	return utilds.HasCode(err, utilds.CodeCyclicDependency) ||
		utilds.HasCode(err, utilds.CodeMissingDependency) ||
		utilds.HasCode(err, utilds.CodeThread)
}

// Frame runs one update: reload resources, reconcile, lay out, tick the
// clock. Node-level errors do not stop the frame and are returned joined.
// A fatal error or a failed layout pass rolls the surviving components back
// to the last committed frame, so the previous drawing stays.
func (e *Engine) Frame(dt float64) error {
	if err := e.checkThread(); err != nil {
		return err
	}
	changed, err := e.opts.Reload()
	if err != nil {
		return fmt.Errorf("reloading resources: %w", err)
	}
	if changed {
		e.sourceGen++
	}
	var global style.Sheet
	if e.opts.GlobalStyle != nil {
		sheet, _, err := e.opts.GlobalStyle.Get()
		if err != nil {
			return fmt.Errorf("global style: %w", err)
		}
		global = sheet
	}
	e.templates = make(map[string]templateEntry)
	e.sheets = make(map[string]sheetEntry)
	e.global = global
	e.errs = nil
	e.journal = nil
	prevTopLevel, prevRendered := e.topLevel, e.rendered
	e.topLevel = nil
	e.rendered = nil

	tree := e.opts.Root.DeepCopy()
	if e.root == nil {
		e.root = e.newSlot(tree.Tag, nil)
	}
	if err := e.render(tree, e.root, frameCtx{scope: e.scope}); err != nil {
		e.rollback(prevTopLevel, prevRendered)
		return err
	}
	if err := e.layoutPass(); err != nil {
		e.rollback(prevTopLevel, prevRendered)
		e.errs = append(e.errs, err)
	} else {
		e.journal = nil
		e.clock.tick(dt)
	}
	e.frame++
	return errors.Join(e.errs...)
}

// rollback restores the draw lists and every journaled slot. Components
// created by the aborted frame stay persisted but unrealized until a frame
// commits.
func (e *Engine) rollback(topLevel []*PersistedNode, rendered []*PersistedNode) {
	for _, slot := range e.rendered {
		if slot.Data != nil {
			slot.Data.Component.base().realized = false
		}
	}
	for i := len(e.journal) - 1; i >= 0; i-- {
		st := e.journal[i]
		if st.slot.Data == nil {
			continue
		}
		comp := st.slot.Data.Component
		b := comp.base()
		if b.props != st.props {
			e.applyProperties(comp, st.props)
			if pu, ok := comp.(PropsUpdater); ok {
				pu.OnPropsUpdated()
			}
		}
		b.realized = st.realized
		b.depth = st.depth
		b.order = st.order
		st.slot.Data.LayoutKind = st.layoutKind
		st.slot.Data.Layout = st.layout
		st.slot.layoutChildren = st.layoutChildren
	}
	e.journal = nil
	e.topLevel = topLevel
	e.rendered = rendered
}

func (e *Engine) saveState(slot *PersistedNode) {
	b := slot.Data.Component.base()
	e.journal = append(e.journal, savedState{
		slot:           slot,
		props:          b.props,
		realized:       b.realized,
		depth:          b.depth,
		order:          b.order,
		layoutKind:     slot.Data.LayoutKind,
		layout:         slot.Data.Layout,
		layoutChildren: slot.layoutChildren,
	})
}

func (e *Engine) fail(err error) {
	e.errs = append(e.errs, err)
	logutil.OncePrintf("engine:"+err.Error(), "[engine] %v\n", err)
}

func (e *Engine) newSlot(tag string, parent *PersistedNode) *PersistedNode {
	slot := makePersistedNode(tag, parent)
	e.nodes[slot.Id] = slot
	return slot
}

func (e *Engine) render(node *markup.Node, slot *PersistedNode, fc frameCtx) error {
	if slot.Data != nil {
		e.saveState(slot)
	}
	slot.node = node
	slot.layoutChildren = nil
	desc, ok := e.registry.Get(node.Tag)
	if !ok {
		logutil.OncePrintf("unknowntag:"+node.Tag, "[engine] unknown tag <%s>\n", node.Tag)
		if _, err := e.pipeline.Apply(node, &transform.Context{Templates: e, Eval: e.eval}); err != nil {
			e.fail(err)
		}
		return e.renderChildren(node, slot, fc)
	}
	parentLayout := ""
	if fc.container != nil {
		parentLayout = fc.container.Data.LayoutKind
	}
	if slot.Data == nil {
		if slot.failed && slot.failedGen == e.sourceGen {
			// construction is not retried until the source changes
			e.errs = append(e.errs, slot.failErr)
			return nil
		}
		if err := e.create(node, slot, desc, fc, parentLayout); err != nil {
			if isFatal(err) {
				return err
			}
			// the subtree cannot be built without its component
			e.fail(err)
			slot.failed = true
			slot.failedGen = e.sourceGen
			slot.failErr = err
			return nil
		}
	} else {
		e.restore(node, slot, desc, parentLayout)
	}
	slot.failed = false
	slot.failErr = nil
	data := slot.Data
	b := data.Component.base()
	b.depth = fc.depth
	b.order = len(e.rendered)
	b.realized = false
	if kind := b.props.Common.Layout; kind != data.LayoutKind {
		data.LayoutKind = kind
		data.Layout = nil
		if layoutKind, ok := e.registry.layouts.Get(kind); ok {
			data.Layout = layoutKind.New()
		}
	}
	if _, err := e.pipeline.Apply(node, &transform.Context{Self: data.Component, Templates: e, Eval: e.eval}); err != nil {
		e.fail(fmt.Errorf("<%s>: %w", node.Tag, err))
	}
	if fc.container != nil {
		fc.container.layoutChildren = append(fc.container.layoutChildren, slot)
	} else {
		e.topLevel = append(e.topLevel, slot)
	}
	e.rendered = append(e.rendered, slot)
	return e.renderChildren(node, slot, frameCtx{scope: data.Scope, container: slot, depth: fc.depth + 1})
}

func (e *Engine) create(node *markup.Node, slot *PersistedNode, desc *Descriptor, fc frameCtx, parentLayout string) (rtnErr error) {
	scope := fc.scope
	var layer *inject.Layer
	if descs := e.registry.Injectables(node.Tag); len(descs) > 0 {
		var err error
		layer, err = inject.Resolve(node.Tag, descs, scope)
		if err != nil {
			return err
		}
		scope = scope.Push(layer)
	}
	defer func() {
		if rtnErr != nil && layer != nil {
			layer.Destroy()
		}
	}()
	if node.Tag == e.opts.RootTag && fc.container == nil && !e.appInitDone {
		e.appInitDone = true
		if e.opts.AppInit != nil {
			if err := panichandler.Guard("appinit", func() error { return e.opts.AppInit(scope) }); err != nil {
				return fmt.Errorf("application init: %w", err)
			}
		}
	}

	comp := desc.New()
	b := comp.base()
	b.tag = node.Tag
	b.id = slot.Id
	b.engine = e
	b.scope = scope
	target, err := styleTarget(node, nil)
	if err != nil {
		return fmt.Errorf("<%s> classes: %w", node.Tag, err)
	}
	p, err := e.makeProperties(node, desc, target, parentLayout)
	if err != nil {
		return fmt.Errorf("<%s>: %w", node.Tag, err)
	}
	e.applyProperties(comp, p)
	if err := inject.Fill(comp, scope, node.Tag); err != nil {
		return err
	}
	if initer, ok := comp.(Initer); ok {
		if err := panichandler.Guard("oninit:"+node.Tag, initer.OnInit); err != nil {
			b.subs.CancelAll()
			return fmt.Errorf("<%s> init: %w", node.Tag, err)
		}
	}
	slot.Data = &Data{Component: comp, Layer: layer, Scope: scope}
	if pu, ok := comp.(PropsUpdater); ok {
		pu.OnPropsUpdated()
	}
	logutil.DevPrintf("[engine] created <%s> %s\n", node.Tag, slot.Id)
	return nil
}

// restore keeps the component and gives it new properties. On error the
// previous properties stay.
func (e *Engine) restore(node *markup.Node, slot *PersistedNode, desc *Descriptor, parentLayout string) {
	comp := slot.Data.Component
	target, err := styleTarget(node, comp.base().dynamicClasses())
	if err != nil {
		e.fail(fmt.Errorf("<%s> classes: %w", node.Tag, err))
	}
	p, err := e.makeProperties(node, desc, target, parentLayout)
	if err != nil {
		e.fail(fmt.Errorf("<%s>: %w", node.Tag, err))
		return
	}
	e.applyProperties(comp, p)
	if pu, ok := comp.(PropsUpdater); ok {
		pu.OnPropsUpdated()
	}
}

func (e *Engine) makeProperties(node *markup.Node, desc *Descriptor, target style.Target, parentLayout string) (*Properties, error) {
	data, bindings, err := e.collect(node, target)
	if err != nil {
		return nil, err
	}
	p, err := e.buildProperties(node.Tag, desc.PropsType, data, parentLayout)
	if err != nil {
		return nil, err
	}
	p.Classes = target.Classes
	p.bindings = bindings
	return p, nil
}

func (e *Engine) applyProperties(comp Component, p *Properties) {
	comp.base().props = p
	comp.setOwnProps(p.Own)
}

type leftover struct {
	strategy string
	key      ChildKey
	slot     *PersistedNode
}

func (e *Engine) renderChildren(node *markup.Node, slot *PersistedNode, fc frameCtx) error {
	prev := slot.saved
	next := make(map[string]map[ChildKey]*PersistedNode)
	counts := make(map[string]map[string]int)
	var fatal error
	for _, child := range node.Children {
		strategy := persistStrategy(child)
		if strategy != PersistPositional {
			logutil.OncePrintf("persist:"+strategy, "[engine] unknown persistance_strategy %q, using %q\n", strategy, PersistPositional)
		}
		if counts[strategy] == nil {
			counts[strategy] = make(map[string]int)
			next[strategy] = make(map[ChildKey]*PersistedNode)
		}
		key := ChildKey{Tag: child.Tag, Idx: counts[strategy][child.Tag]}
		counts[strategy][child.Tag]++
		childSlot, ok := prev[strategy][key]
		if ok {
			delete(prev[strategy], key)
		} else {
			childSlot = e.newSlot(child.Tag, slot)
		}
		next[strategy][key] = childSlot
		if fatal != nil {
			continue
		}
		if err := e.render(child, childSlot, fc); err != nil {
			fatal = err
		}
	}
	var stale []leftover
	for strategy, group := range prev {
		for key, childSlot := range group {
			stale = append(stale, leftover{strategy: strategy, key: key, slot: childSlot})
		}
	}
	if fatal != nil {
		// keep everything for the next frame
		for _, lo := range stale {
			if next[lo.strategy] == nil {
				next[lo.strategy] = make(map[ChildKey]*PersistedNode)
			}
			next[lo.strategy][lo.key] = lo.slot
		}
		slot.saved = next
		return fatal
	}
	sort.Slice(stale, func(i, j int) bool {
		if stale[i].key.Tag != stale[j].key.Tag {
			return stale[i].key.Tag < stale[j].key.Tag
		}
		return stale[i].key.Idx < stale[j].key.Idx
	})
	for _, lo := range stale {
		e.destroy(lo.slot)
	}
	slot.saved = next
	return nil
}

// destroy tears down a slot, descendants first.
func (e *Engine) destroy(slot *PersistedNode) {
	for _, group := range slot.saved {
		for _, child := range group {
			e.destroy(child)
		}
	}
	slot.saved = nil
	if slot.Data != nil {
		comp := slot.Data.Component
		if d, ok := comp.(Destroyer); ok {
			panichandler.Guard("ondestroy:"+slot.Tag, func() error {
				d.OnDestroy()
				return nil
			})
		}
		comp.base().subs.CancelAll()
		if slot.Data.Layer != nil {
			slot.Data.Layer.Destroy()
		}
		logutil.DevPrintf("[engine] destroyed <%s> %s\n", slot.Tag, slot.Id)
		slot.Data = nil
	}
	delete(e.nodes, slot.Id)
}

// Shutdown destroys the whole tree.
func (e *Engine) Shutdown() {
	if e.root != nil {
		e.destroy(e.root)
		e.root = nil
	}
	log.Printf("[engine] shut down after %d frames\n", e.frame)
}

// Template implements transform.Templates. Each template handle is read once
// per frame.
func (e *Engine) Template(tag string) (*markup.Node, bool, bool, error) {
	desc, ok := e.registry.Get(tag)
	if !ok || desc.Template == nil {
		return nil, false, false, nil
	}
	entry, ok := e.templates[tag]
	if !ok {
		entry.node, entry.changed, entry.err = desc.Template.Get()
		if e.templates != nil {
			e.templates[tag] = entry
		}
	}
	return entry.node, entry.changed, true, entry.err
}

func (e *Engine) HasStyle(tag string) bool {
	desc, ok := e.registry.Get(tag)
	return ok && desc.Style != nil
}

func (e *Engine) sheetFor(tag string) (style.Sheet, error) {
	desc, ok := e.registry.Get(tag)
	if !ok || desc.Style == nil {
		return nil, nil
	}
	entry, ok := e.sheets[tag]
	if !ok {
		entry.sheet, _, entry.err = desc.Style.Get()
		if e.sheets != nil {
			e.sheets[tag] = entry
		}
	}
	return entry.sheet, entry.err
}

// Components returns the live components of the latest frame in document order.
func (e *Engine) Components() []Component {
	rtn := make([]Component, 0, len(e.rendered))
	for _, slot := range e.rendered {
		if slot.Data != nil {
			rtn = append(rtn, slot.Data.Component)
		}
	}
	return rtn
}

// Find returns the first live component of type T in document order.
func Find[T Component](e *Engine) (T, bool) {
	var zero T
	for _, comp := range e.Components() {
		if rtn, ok := comp.(T); ok {
			return rtn, true
		}
	}
	return zero, false
}

func (e *Engine) String() string {
	rootTag := ""
	if e.root != nil {
		rootTag = e.root.Tag
	}
	return fmt.Sprintf("engine(frame=%d nodes=%d root=<%s>)", e.frame, len(e.nodes), rootTag)
}
