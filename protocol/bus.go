// Copyright © 2025 Scrim contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/bus.go
// Summary: Broadcast control bus fanning messages out to every layer.
// Notes: Slow receivers lose the oldest messages rather than stalling the bus.

package protocol

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned by Recv once the bus is closed and the receiver's
// buffer is drained.
var ErrClosed = errors.New("protocol: bus closed")

// ErrLagged is returned by Recv when the receiver fell behind and messages
// were dropped. The receiver is still subscribed; the next Recv resumes with
// the oldest retained message.
type ErrLagged struct {
	Missed int
}

func (e ErrLagged) Error() string {
	return fmt.Sprintf("protocol: receiver lagged, %d messages dropped", e.Missed)
}

// The per-receiver buffer size. Generous enough for bursts of repaint and
// resize traffic; a receiver stuck for longer than this deserves ErrLagged.
const receiverBuffer = 64

// Bus broadcasts control messages to all subscribed receivers. Sends never
// block: a receiver whose buffer is full drops its oldest message and is told
// about the gap on its next Recv.
type Bus struct {
	mu     sync.Mutex
	subs   []*Receiver
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new receiver that observes every message sent after
// this call.
func (b *Bus) Subscribe() *Receiver {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := &Receiver{
		bus: b,
		ch:  make(chan Message, receiverBuffer),
	}
	if b.closed {
		close(r.ch)
		return r
	}
	b.subs = append(b.subs, r)
	return r
}

// Send broadcasts a message to all current receivers. Sending on a closed
// bus is a no-op.
func (b *Bus) Send(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, r := range b.subs {
		r.push(msg)
	}
}

// Close shuts the bus down. Receivers drain their buffers and then see
// ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, r := range b.subs {
		close(r.ch)
	}
	b.subs = nil
}

// Receiver is one subscriber's view of the bus.
type Receiver struct {
	bus *Bus
	ch  chan Message

	mu     sync.Mutex
	missed int
}

func (r *Receiver) push(msg Message) {
	for {
		select {
		case r.ch <- msg:
			return
		default:
		}
		// Buffer full: drop the oldest message to make room.
		select {
		case <-r.ch:
			r.mu.Lock()
			r.missed++
			r.mu.Unlock()
		default:
		}
	}
}

// Recv blocks until a message is available. It returns ErrLagged (keeping the
// subscription alive) if messages were dropped since the last call, and
// ErrClosed once the bus is closed and drained.
func (r *Receiver) Recv() (Message, error) {
	r.mu.Lock()
	if r.missed > 0 {
		missed := r.missed
		r.missed = 0
		r.mu.Unlock()
		return nil, ErrLagged{Missed: missed}
	}
	r.mu.Unlock()

	msg, ok := <-r.ch
	if !ok {
		return nil, ErrClosed
	}
	return msg, nil
}

// Chan exposes the receiver's channel for use in select loops. Callers that
// read from it directly should still call Recv occasionally, or check Lagged,
// to observe drop reporting.
func (r *Receiver) Chan() <-chan Message {
	return r.ch
}

// Lagged reports and clears the number of messages dropped since the last
// check. Used by select-based consumers that bypass Recv.
func (r *Receiver) Lagged() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.missed
	r.missed = 0
	return n
}
