////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package stoppable

import (
	"sync"
	"time"

	jww "github.com/spf13/jwalterweatherman"
)

// Loop is the body of a background goroutine. It must return soon after quit
// is closed.
type Loop func(quit <-chan struct{})

// Single is the lifecycle of one background loop, such as the poller of a
// mounted query or the event delivery loop. Close asks the loop to quit and
// Wait blocks until it has returned.
type Single struct {
	name    string
	quit    chan struct{}
	stopped chan struct{}
	status  Status
	mux     sync.Mutex
}

// NewSingle returns a running Single whose loop is started by the caller. The
// loop must call ToStopped once it has observed Quit.
func NewSingle(name string) *Single {
	return &Single{
		name:    name,
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		status:  Running,
	}
}

// Go runs the loop on a new goroutine and marks the returned Single stopped
// when the loop returns, whether or not it was asked to quit.
func Go(name string, loop Loop) *Single {
	s := NewSingle(name)
	go func() {
		defer s.finish()
		loop(s.quit)
	}()
	return s
}

// Name returns the name of the Single.
func (s *Single) Name() string {
	return s.name
}

// GetStatus returns the status of the Single.
func (s *Single) GetStatus() Status {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.status
}

// IsRunning returns true until Close is called.
func (s *Single) IsRunning() bool {
	return s.GetStatus() == Running
}

// IsStopping returns true between Close and the loop returning.
func (s *Single) IsStopping() bool {
	return s.GetStatus() == Stopping
}

// IsStopped returns true once the loop has returned.
func (s *Single) IsStopped() bool {
	return s.GetStatus() == Stopped
}

// Quit returns a channel closed when the loop is asked to quit.
func (s *Single) Quit() <-chan struct{} {
	return s.quit
}

// Stopped returns a channel closed once the loop has returned.
func (s *Single) Stopped() <-chan struct{} {
	return s.stopped
}

// Close asks the loop to quit. It does not wait; see Wait. Closing a Single
// that is already stopping or stopped does nothing.
func (s *Single) Close() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.status != Running {
		return nil
	}
	s.status = Stopping
	close(s.quit)
	jww.TRACE.Printf("[STOPPABLE] %s stopping", s.name)
	return nil
}

// ToStopped records that the loop has returned. Panics if the Single was
// never closed, since a loop may only return after observing Quit.
func (s *Single) ToStopped() {
	s.mux.Lock()
	defer s.mux.Unlock()
	switch s.status {
	case Running:
		jww.FATAL.Panicf("[STOPPABLE] %s reported stopped while still "+
			"running", s.name)
	case Stopping:
		s.status = Stopped
		close(s.stopped)
		jww.TRACE.Printf("[STOPPABLE] %s stopped", s.name)
	}
}

// finish marks the Single stopped after its loop returned, closing Quit first
// if the loop ended on its own.
func (s *Single) finish() {
	s.mux.Lock()
	if s.status == Running {
		s.status = Stopping
		close(s.quit)
		jww.DEBUG.Printf("[STOPPABLE] %s returned without being closed",
			s.name)
	}
	s.mux.Unlock()
	s.ToStopped()
}

// Wait blocks until the loop has returned or the timeout elapses. Returns
// false on timeout.
func (s *Single) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.stopped:
		return true
	case <-t.C:
		return false
	}
}
