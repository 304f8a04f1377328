////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package stoppable

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Error message.
const closeMultiErr = "MultiStopper %q failed to close %d/%d stoppers: %s"

// Multi allows multiple stoppables to be stopped at once. Children that have
// already stopped are pruned on Add so long-lived owners do not accumulate
// finished pollers.
type Multi struct {
	stoppables []Stoppable
	name       string
	mux        sync.RWMutex
}

// NewMulti returns a new Multi Stoppable.
func NewMulti(name string) *Multi {
	return &Multi{
		name: name,
	}
}

// Add adds a Stoppable to the list of stoppables to stop.
func (m *Multi) Add(stoppable Stoppable) {
	m.mux.Lock()
	defer m.mux.Unlock()

	live := m.stoppables[:0]
	for _, s := range m.stoppables {
		if !s.IsStopped() {
			live = append(live, s)
		}
	}
	m.stoppables = append(live, stoppable)
}

// Len returns the number of tracked children.
func (m *Multi) Len() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return len(m.stoppables)
}

// Name returns the name of the Multi and the names of its children.
func (m *Multi) Name() string {
	m.mux.RLock()
	defer m.mux.RUnlock()

	names := make([]string, len(m.stoppables))
	for i, s := range m.stoppables {
		names[i] = s.Name()
	}

	return m.name + "{" + strings.Join(names, ", ") + "}"
}

// GetStatus returns the lowest status of all the children. A Multi with no
// children is Stopped.
func (m *Multi) GetStatus() Status {
	m.mux.RLock()
	defer m.mux.RUnlock()

	lowest := Stopped
	for _, s := range m.stoppables {
		if status := s.GetStatus(); status < lowest {
			lowest = status
		}
	}
	return lowest
}

// IsRunning returns true if any child is running.
func (m *Multi) IsRunning() bool {
	return m.GetStatus() == Running
}

// IsStopping returns true if no child is running and at least one is still
// stopping.
func (m *Multi) IsStopping() bool {
	return m.GetStatus() == Stopping
}

// IsStopped returns true if every child has stopped.
func (m *Multi) IsStopped() bool {
	return m.GetStatus() == Stopped
}

// Close closes all child stoppers. Children that are already stopping or
// stopped are skipped. Returns an error listing the children that failed.
func (m *Multi) Close() error {
	m.mux.RLock()
	children := make([]Stoppable, len(m.stoppables))
	copy(children, m.stoppables)
	m.mux.RUnlock()

	var errs []string
	for _, s := range children {
		if !s.IsRunning() {
			continue
		}
		if err := s.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		err := errors.Errorf(closeMultiErr, m.name, len(errs), len(children),
			strings.Join(errs, "; "))
		jww.ERROR.Print(err.Error())
		return err
	}

	return nil
}
