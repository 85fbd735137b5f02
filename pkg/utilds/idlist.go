// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package utilds

import (
	"sync"

	"github.com/google/uuid"
)

type idListEntry[T any] struct {
	id  string
	val T
}

// IdList is an insertion-ordered list of values addressable by a generated id.
// GetList returns a snapshot, so callers may register/unregister while iterating it.
type IdList[T any] struct {
	lock    sync.Mutex
	entries []idListEntry[T]
}

func (il *IdList[T]) Register(val T) string {
	il.lock.Lock()
	defer il.lock.Unlock()

	id := uuid.New().String()
	il.entries = append(il.entries, idListEntry[T]{id: id, val: val})
	return id
}

// Unregister returns false if the id was not present.
func (il *IdList[T]) Unregister(id string) bool {
	il.lock.Lock()
	defer il.lock.Unlock()

	for i, entry := range il.entries {
		if entry.id == id {
			il.entries = append(il.entries[:i], il.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (il *IdList[T]) Has(id string) bool {
	il.lock.Lock()
	defer il.lock.Unlock()

	for _, entry := range il.entries {
		if entry.id == id {
			return true
		}
	}
	return false
}

func (il *IdList[T]) Len() int {
	il.lock.Lock()
	defer il.lock.Unlock()
	return len(il.entries)
}

func (il *IdList[T]) GetList() []T {
	il.lock.Lock()
	defer il.lock.Unlock()

	result := make([]T, len(il.entries))
	for i, entry := range il.entries {
		result[i] = entry.val
	}
	return result
}
