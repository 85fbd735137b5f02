// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package inject

import (
	"fmt"
	"sort"

	"github.com/wavetermdev/guiml/pkg/utilds"
)

// Registry maps tags to the injectables each occurrence of the tag
// introduces. It is append-only and frozen once the engine is built.
type Registry struct {
	byTag  map[string][]Descriptor
	frozen bool
}

func MakeRegistry() *Registry {
	return &Registry{byTag: make(map[string][]Descriptor)}
}

func (r *Registry) Register(tag string, d Descriptor) error {
	if r.frozen {
		return utilds.SubErrorf(utilds.CodeRegistry, tag, "registry is frozen")
	}
	if err := d.Validate(); err != nil {
		return utilds.MakeSubCodedError(utilds.CodeRegistry, tag, err)
	}
	for _, existing := range r.byTag[tag] {
		if existing.Type == d.Type {
			return utilds.SubErrorf(utilds.CodeRegistry, tag, "injectable %s already registered for <%s>", d.Name(), tag)
		}
	}
	r.byTag[tag] = append(r.byTag[tag], d)
	return nil
}

// Freeze checks every tag's injectables for cycles and rejects further
// registrations.
func (r *Registry) Freeze() error {
	r.frozen = true
	for _, tag := range r.Tags() {
		if _, err := Order(tag, r.byTag[tag]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) For(tag string) []Descriptor {
	return r.byTag[tag]
}

func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (r *Registry) String() string {
	return fmt.Sprintf("inject.Registry(%d tags)", len(r.byTag))
}
