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

package cache

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoalescingMemoryCache_GetSetDel(t *testing.T) {
	cache := &CoalescingMemoryCache[string, string]{}

	err := cache.Set("key", func() (string, error) { return "value", nil })
	if err != nil {
		t.Fatalf("cache.Set() failed: %v", err)
	}
	val, err := cache.Get("key")
	if err != nil {
		t.Fatalf("cache.Get() failed: %v", err)
	}
	if val != "value" {
		t.Fatalf("cache.Get() returned %v, want %v", val, "value")
	}
	if cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", cache.Len())
	}
	cache.Del("key")
	_, err = cache.Get("key")
	if err != ErrNotExist {
		t.Fatalf("cache.Get() = %v, want ErrNotExist", err)
	}
}

func TestCoalescingMemoryCache_GetSetErr(t *testing.T) {
	cache := &CoalescingMemoryCache[string, []byte]{}
	foo := errors.New("foo")
	err := cache.Set("key", func() ([]byte, error) { return nil, foo })
	if err != foo {
		t.Fatalf("cache.Set() failed: %v", err)
	}
	_, err = cache.Get("key")
	if err != ErrNotExist {
		t.Fatalf("cache.Get() failed: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("cache.Len() = %d, want 0", cache.Len())
	}
}

func TestCoalescingMemoryCache_Clear(t *testing.T) {
	cache := &CoalescingMemoryCache[int, int]{}
	for i := range 3 {
		if err := cache.Set(i, func() (int, error) { return i, nil }); err != nil {
			t.Fatalf("cache.Set() failed: %v", err)
		}
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("cache.Len() = %d, want 0", cache.Len())
	}
	if _, err := cache.Get(1); err != ErrNotExist {
		t.Fatalf("cache.Get() = %v, want ErrNotExist", err)
	}
}

func TestCoalescingMemoryCache_GetOrSet(t *testing.T) {
	cache := &CoalescingMemoryCache[string, string]{}

	want := "value"
	count := 5
	results := make(chan string, count)
	var called atomic.Int32
	for range count {
		go func() {
			val, err := cache.GetOrSet("key", func() (string, error) {
				called.Add(1)
				time.Sleep(100 * time.Millisecond)
				return want, nil
			})
			if err != nil {
				results <- ""
			} else {
				results <- val
			}
		}()
	}
	for range count {
		if got := <-results; got != want {
			t.Fatalf("results differed: want=%v,got=%v", want, got)
		}
	}
	if n := called.Load(); n != 1 {
		t.Fatalf("call count differed: want=1,got=%v", n)
	}
}
