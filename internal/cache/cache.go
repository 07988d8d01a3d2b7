// Copyright 2024 The OSS Rebuild Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides an interface and implementations for caching.
package cache

import (
	"sync"

	"github.com/pkg/errors"
)

// Cache is a simple interface defining a cache.
type Cache[K comparable, V any] interface {
	Get(K) (V, error)
	Set(K, func() (V, error)) error
	GetOrSet(K, func() (V, error)) (V, error)
	Del(K)
	Clear()
}

// ErrNotExist is returned when a key does not exist in the cache.
var ErrNotExist = errors.New("does not exist")

// CoalescingMemoryCache is a simple cache that coalesces concurrent requests for the same key.
// Failed fetches are not retained.
type CoalescingMemoryCache[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]*entry[V]
}

type entry[V any] struct {
	get func() (V, error)
}

func newEntry[V any](fetch func() (V, error)) *entry[V] {
	return &entry[V]{sync.OnceValues(fetch)}
}

func (c *CoalescingMemoryCache[K, V]) valueOrClear(key K, e *entry[V]) (V, error) {
	val, err := e.get()
	if err != nil {
		c.mu.Lock()
		if c.data[key] == e {
			delete(c.data, key)
		}
		c.mu.Unlock()
	}
	return val, err
}

// Get returns the value for the given key.
func (c *CoalescingMemoryCache[K, V]) Get(key K) (V, error) {
	c.mu.Lock()
	e, ok := c.data[key]
	c.mu.Unlock()
	if !ok {
		var zero V
		return zero, ErrNotExist
	}
	return c.valueOrClear(key, e)
}

// Set sets the value for the given key with the returned value from fetch.
func (c *CoalescingMemoryCache[K, V]) Set(key K, fetch func() (V, error)) error {
	e := newEntry(fetch)
	c.mu.Lock()
	if c.data == nil {
		c.data = make(map[K]*entry[V])
	}
	c.data[key] = e
	c.mu.Unlock()
	_, err := c.valueOrClear(key, e)
	return err
}

// GetOrSet returns the value for the given key, or sets it if it does not exist.
// Notably, this will coalesce simultaneous accesses to the same key.
func (c *CoalescingMemoryCache[K, V]) GetOrSet(key K, fetch func() (V, error)) (V, error) {
	c.mu.Lock()
	if c.data == nil {
		c.data = make(map[K]*entry[V])
	}
	e, ok := c.data[key]
	if !ok {
		e = newEntry(fetch)
		c.data[key] = e
	}
	c.mu.Unlock()
	return c.valueOrClear(key, e)
}

// Del deletes the value for the given key.
func (c *CoalescingMemoryCache[K, V]) Del(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *CoalescingMemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}

// Len returns the number of retained entries.
func (c *CoalescingMemoryCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

var _ Cache[string, []byte] = &CoalescingMemoryCache[string, []byte]{}
