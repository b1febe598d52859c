/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ringbuffer provides a fixed-capacity, insertion-ordered buffer that
// evicts its oldest element once full. It is safe for one writer and any
// number of concurrent readers; readers always receive copies.
package ringbuffer

import "sync"

// DefaultCapacity is the number of samples kept per monitored metric.
const DefaultCapacity = 60

// Buffer is a lock-guarded FIFO ring of T.
type Buffer[T any] struct {
	mu      sync.RWMutex
	entries []T
	next    int
	count   int
}

// New returns a buffer holding at most capacity elements. A non-positive
// capacity falls back to DefaultCapacity.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Buffer[T]{entries: make([]T, capacity)}
}

// Push appends v, overwriting the oldest element when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = v
	b.next = (b.next + 1) % len(b.entries)

	if b.count < len(b.entries) {
		b.count++
	}
}

// Reset drops every element while keeping the capacity.
func (b *Buffer[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.entries)
	b.next, b.count = 0, 0
}

// Len returns the number of elements currently held.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.count
}

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.entries)
}

// Values returns a copy of the contents, oldest first.
func (b *Buffer[T]) Values() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, b.count)

	start := b.next - b.count
	if start < 0 {
		start += len(b.entries)
	}

	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(start+i)%len(b.entries)]
	}

	return out
}

// Last returns the most recently pushed element.
func (b *Buffer[T]) Last() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var zero T
	if b.count == 0 {
		return zero, false
	}

	idx := b.next - 1
	if idx < 0 {
		idx = len(b.entries) - 1
	}

	return b.entries[idx], true
}
