////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package event surfaces client events, such as a sent message or a saved
// profile, to registered callbacks on a single reporting goroutine.
package event

import (
	"fmt"
	"sync"

	"github.com/caffeinepub/vibechat/stoppable"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// queueSize is how many events may wait for delivery before new ones are
// dropped.
const queueSize = 1000

// Priorities of reported events.
const (
	Debug = 10
	Info  = 20
	Warn  = 30
)

// Categories of reported events.
const (
	Session      = "session"
	Conversation = "conversation"
	Message      = "message"
	Profile      = "profile"
	Contacts     = "contacts"
)

// Event is one reported event.
type Event struct {
	Priority int
	Category string
	Type     string
	Details  string
}

// String returns a human-readable form of the event for logging.
func (e Event) String() string {
	return fmt.Sprintf("Event(%d, %s, %s, %s)", e.Priority, e.Category,
		e.Type, e.Details)
}

// Callback receives reported events.
type Callback func(e Event)

// Reporter reports events.
type Reporter interface {
	Report(priority int, category, evtType, details string)
}

// Manager queues reported events and hands them to every registered
// callback.
type Manager struct {
	eventCh   chan Event
	callbacks sync.Map
}

// NewManager returns a Manager with no callbacks. Events are only delivered
// while the Service is running.
func NewManager() *Manager {
	return &Manager{
		eventCh: make(chan Event, queueSize),
	}
}

// Report queues an event. It never blocks; when the queue is full the event
// is dropped and logged.
func (m *Manager) Report(priority int, category, evtType, details string) {
	e := Event{
		Priority: priority,
		Category: category,
		Type:     evtType,
		Details:  details,
	}
	select {
	case m.eventCh <- e:
		jww.TRACE.Printf("[EVENT] Reported: %s", e)
	default:
		jww.ERROR.Printf("[EVENT] Queue full, unable to report: %s", e)
	}
}

// RegisterCallback adds a callback under the name. Names are unique.
func (m *Manager) RegisterCallback(name string, cb Callback) error {
	if _, exists := m.callbacks.LoadOrStore(name, cb); exists {
		return errors.Errorf("Key %s already exists as event callback", name)
	}
	return nil
}

// UnregisterCallback removes the callback registered under the name.
func (m *Manager) UnregisterCallback(name string) {
	m.callbacks.Delete(name)
}

// Service starts delivering events. Callbacks run one at a time on the
// service goroutine, so a slow callback delays all later events.
func (m *Manager) Service() stoppable.Stoppable {
	return stoppable.Go("EventReporting", m.deliver)
}

func (m *Manager) deliver(quit <-chan struct{}) {
	jww.DEBUG.Print("[EVENT] Delivery started")
	for {
		select {
		case <-quit:
			jww.DEBUG.Print("[EVENT] Delivery stopped")
			return
		case e := <-m.eventCh:
			m.callbacks.Range(func(_, cb interface{}) bool {
				cb.(Callback)(e)
				return true
			})
		}
	}
}
