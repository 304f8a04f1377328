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

// Tests that a Multi with no children reports stopped and closes cleanly.
func TestMulti_NoChildren(t *testing.T) {
	multi := NewMulti("testMulti")

	if !multi.IsStopped() {
		t.Errorf("Empty Multi has wrong status."+
			"\nexpected: %s\nreceived: %s", Stopped, multi.GetStatus())
	}
	if err := multi.Close(); err != nil {
		t.Errorf("Close returned an error: %+v", err)
	}
	if multi.Name() != "testMulti{}" {
		t.Errorf("Unexpected name.\nexpected: %s\nreceived: %s",
			"testMulti{}", multi.Name())
	}
}

// Tests that Multi.Close stops every running child and that the Multi reports
// the lowest child status throughout.
func TestMulti_Close(t *testing.T) {
	multi := NewMulti("testMulti")
	for _, name := range []string{"a", "b", "c"} {
		multi.Add(Go(name, func(quit <-chan struct{}) { <-quit }))
	}

	if !multi.IsRunning() {
		t.Errorf("Multi not running.\nexpected: %s\nreceived: %s",
			Running, multi.GetStatus())
	}

	if err := multi.Close(); err != nil {
		t.Fatalf("Close returned an error: %+v", err)
	}

	if !WaitForStopped(multi, time.Second) {
		t.Errorf("Multi did not stop.\nexpected: %s\nreceived: %s",
			Stopped, multi.GetStatus())
	}
}

// Tests that Multi.Add prunes children that have already stopped.
func TestMulti_Add_Prunes(t *testing.T) {
	multi := NewMulti("testMulti")
	done := NewSingle("done")
	_ = done.Close()
	done.ToStopped()
	multi.Add(done)

	multi.Add(NewSingle("live"))

	if multi.Len() != 1 {
		t.Errorf("Stopped child was not pruned.\nexpected: %d\nreceived: %d",
			1, multi.Len())
	}
}
