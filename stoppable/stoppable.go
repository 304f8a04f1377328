////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package stoppable tracks the lifecycle of long-running goroutines such as
// query pollers so that they can be stopped deterministically when their
// owner unmounts.
package stoppable

import (
	"strconv"
	"time"
)

// Stoppable is implemented by anything that owns a goroutine that can be
// asked to stop.
type Stoppable interface {
	// Close signals the goroutine to stop. It does not wait for it to exit.
	Close() error

	// GetStatus returns the current Status of the Stoppable.
	GetStatus() Status

	// IsRunning, IsStopping and IsStopped report the current Status.
	IsRunning() bool
	IsStopping() bool
	IsStopped() bool

	// Name returns the name used in logs.
	Name() string
}

// Status is the lifecycle state of a Stoppable.
type Status uint32

const (
	Running Status = iota
	Stopping
	Stopped
)

// String returns a human-readable name for the Status. Adheres to the
// fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "INVALID STATUS: " + strconv.FormatUint(uint64(s), 10)
	}
}

// WaitForStopped polls the Stoppable until it reports Stopped or the timeout
// elapses. Returns false on timeout.
func WaitForStopped(s Stoppable, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for !s.IsStopped() {
		select {
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
	return true
}
