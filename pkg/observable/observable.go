// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package observable implements synchronous event hubs. Callbacks run on the
// emitting goroutine, in subscription order, and may subscribe or cancel
// while an emit is in progress.
package observable

import (
	"sync"

	"github.com/wavetermdev/guiml/pkg/utilds"
)

type Observable[T any] struct {
	subs utilds.IdList[*subscriber[T]]
}

type subscriber[T any] struct {
	fn       func(T)
	canceled bool
}

// Subscription cancels a callback registration. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

type subscription[T any] struct {
	once sync.Once
	obs  *Observable[T]
	id   string
	sub  *subscriber[T]
}

func (s *subscription[T]) Cancel() {
	s.once.Do(func() {
		s.sub.canceled = true
		s.obs.subs.Unregister(s.id)
	})
}

func (o *Observable[T]) Subscribe(fn func(T)) Subscription {
	sub := &subscriber[T]{fn: fn}
	id := o.subs.Register(sub)
	return &subscription[T]{obs: o, id: id, sub: sub}
}

// Emit calls every live subscriber. A subscriber canceled by an earlier
// callback in the same emit is skipped.
func (o *Observable[T]) Emit(val T) {
	for _, sub := range o.subs.GetList() {
		if sub.canceled {
			continue
		}
		sub.fn(val)
	}
}

func (o *Observable[T]) Len() int {
	return o.subs.Len()
}

// Signal is an Observable without a payload.
type Signal struct {
	obs Observable[struct{}]
}

func (s *Signal) Subscribe(fn func()) Subscription {
	return s.obs.Subscribe(func(struct{}) { fn() })
}

func (s *Signal) Emit() {
	s.obs.Emit(struct{}{})
}

func (s *Signal) Len() int {
	return s.obs.Len()
}

// Group owns a set of subscriptions and cancels them together.
type Group struct {
	subs []Subscription
}

func (g *Group) Add(sub Subscription) Subscription {
	g.subs = append(g.subs, sub)
	return sub
}

func (g *Group) Len() int {
	return len(g.subs)
}

func (g *Group) CancelAll() {
	subs := g.subs
	g.subs = nil
	for _, sub := range subs {
		sub.Cancel()
	}
}
