// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package ratex provides rate limiting primitives.
package ratex

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrStopped is returned by Wait once the limiter has been stopped.
var ErrStopped = errors.New("limiter stopped")

// BackoffLimiter provides a threadsafe exponential backoff rate limiter
type BackoffLimiter struct {
	mu            sync.Mutex
	currentPeriod time.Duration
	minimum       time.Duration
	ch            chan struct{}
	done          chan struct{}
	stop          sync.Once
}

// NewBackoffLimiter returns a limiter permitting one event per minimum period.
// Stop must be called to release its goroutine.
func NewBackoffLimiter(minimum time.Duration) *BackoffLimiter {
	l := &BackoffLimiter{
		currentPeriod: minimum,
		minimum:       minimum,
		ch:            make(chan struct{}),
		done:          make(chan struct{}),
	}
	go func() {
		for l.tick() {
		}
	}()
	return l
}

func (l *BackoffLimiter) tick() bool {
	l.mu.Lock()
	duration := l.currentPeriod
	l.mu.Unlock()
	t := time.NewTimer(duration)
	defer t.Stop()
	select {
	case <-l.done:
		return false
	case <-t.C:
	}
	select {
	case <-l.done:
		return false
	case l.ch <- struct{}{}:
		return true
	}
}

// Wait blocks until the limiter permits another event to happen.
// If ctx becomes Done(), Wait will return an error.
func (l *BackoffLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	case <-l.ch:
		return nil
	}
}

// Stop releases the limiter. Pending and future calls to Wait fail.
func (l *BackoffLimiter) Stop() {
	l.stop.Do(func() { close(l.done) })
}

// Backoff will increase the period by 33%.
// This will not take effect until the next period.
func (l *BackoffLimiter) Backoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentPeriod = l.currentPeriod * 4 / 3
}

// Success will decrease the period by 10%.
// This will not take effect until the next period.
func (l *BackoffLimiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentPeriod = max(l.currentPeriod*9/10, l.minimum)
}

func (l *BackoffLimiter) CurrentPeriod() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPeriod
}
