////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package stoppable

import (
	"testing"
	"time"
)

// Tests that NewSingle returns a Single with the correct name and running.
func TestNewSingle(t *testing.T) {
	name := "threadName"
	single := NewSingle(name)

	if single.name != name {
		t.Errorf("NewSingle returned Single with incorrect name."+
			"\nexpected: %s\nreceived: %s", name, single.name)
	}

	if !single.IsRunning() {
		t.Errorf("NewSingle returned Single with incorrect status."+
			"\nexpected: %s\nreceived: %s", Running, single.GetStatus())
	}
}

// Tests that Single.Quit returns a channel that is triggered when the Single
// is closed.
func TestSingle_Quit(t *testing.T) {
	single := NewSingle("threadName")

	go func() {
		time.Sleep(time.Millisecond)
		_ = single.Close()
	}()

	select {
	case <-time.NewTimer(50 * time.Millisecond).C:
		t.Error("Timed out waiting for quit channel.")
	case <-single.Quit():
	}
}

// Tests the full lifecycle Running -> Stopping -> Stopped and that a second
// Close returns no error and does not panic.
func TestSingle_Close(t *testing.T) {
	single := NewSingle("threadName")

	if err := single.Close(); err != nil {
		t.Fatalf("Close returned an error: %+v", err)
	}
	if !single.IsStopping() {
		t.Errorf("Single not stopping after Close."+
			"\nexpected: %s\nreceived: %s", Stopping, single.GetStatus())
	}

	single.ToStopped()
	if !single.IsStopped() {
		t.Errorf("Single not stopped after ToStopped."+
			"\nexpected: %s\nreceived: %s", Stopped, single.GetStatus())
	}

	if err := single.Close(); err != nil {
		t.Errorf("Second Close returned an error: %+v", err)
	}
	single.ToStopped()
}

// Tests that ToStopped panics when the Single was never closed.
func TestSingle_ToStopped_Panic(t *testing.T) {
	single := NewSingle("threadName")

	defer func() {
		if r := recover(); r == nil {
			t.Error("ToStopped did not panic on a running Single.")
		}
	}()

	single.ToStopped()
}

// Tests that a loop started with Go is stopped by Close and that Wait
// returns once it has returned, timing out before.
func TestGo(t *testing.T) {
	ticks := make(chan struct{})
	single := Go("poller", func(quit <-chan struct{}) {
		for {
			select {
			case <-quit:
				return
			case ticks <- struct{}{}:
			}
		}
	})

	<-ticks
	if single.Wait(5 * time.Millisecond) {
		t.Error("Wait returned true for a running loop.")
	}

	_ = single.Close()
	if !single.Wait(time.Second) {
		t.Fatal("Wait timed out on a closed loop.")
	}
	if !single.IsStopped() {
		t.Errorf("Loop not stopped.\nexpected: %s\nreceived: %s",
			Stopped, single.GetStatus())
	}
	select {
	case <-single.Stopped():
	default:
		t.Error("Stopped channel not closed.")
	}
}

// Tests that a loop returning on its own marks the Single stopped and closes
// its quit channel.
func TestGo_ReturnsEarly(t *testing.T) {
	single := Go("oneShot", func(<-chan struct{}) {})

	if !single.Wait(time.Second) {
		t.Fatal("Wait timed out on a finished loop.")
	}
	select {
	case <-single.Quit():
	default:
		t.Error("Quit channel not closed after the loop returned.")
	}
	if err := single.Close(); err != nil {
		t.Errorf("Close after the loop returned failed: %+v", err)
	}
}

// Tests that WaitForStopped returns once every child reports stopped.
func TestWaitForStopped(t *testing.T) {
	single := Go("threadName", func(quit <-chan struct{}) { <-quit })

	if WaitForStopped(single, 5*time.Millisecond) {
		t.Error("WaitForStopped returned true for a running Single.")
	}

	_ = single.Close()
	if !WaitForStopped(single, time.Second) {
		t.Error("WaitForStopped timed out on a closed Single.")
	}
}

// Unit test of Status.String.
func TestStatus_String(t *testing.T) {
	testValues := []struct {
		status   Status
		expected string
	}{
		{Running, "running"},
		{Stopping, "stopping"},
		{Stopped, "stopped"},
		{100, "INVALID STATUS: 100"},
	}

	for i, val := range testValues {
		if val.status.String() != val.expected {
			t.Errorf("String did not return the expected value (%d)."+
				"\nexpected: %s\nreceived: %s", i, val.expected, val.status)
		}
	}
}
