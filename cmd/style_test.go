////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/timeline"
	"github.com/stretchr/testify/require"
)

// Tests that the watch screen draws every bubble in order, own ones
// indented.
func Test_renderStyled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderStyled(&buf, timeline.View{
		Bubbles: []timeline.Bubble{
			{Message: remote.Message{Sender: "bob", Text: "hi"}},
			{Message: remote.Message{Sender: "alice", Text: "hey"}, Own: true},
		},
		ScrollTo: 1,
	}))

	out := buf.String()
	require.Less(t, strings.Index(out, "bob:"), strings.Index(out, "me:"))
	require.Contains(t, out, "hi")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "me:") {
			require.True(t, strings.HasPrefix(line,
				strings.Repeat(" ", ownBubbleIndent)), line)
		}
	}

	buf.Reset()
	require.NoError(t, renderStyled(&buf, timeline.View{Loading: true}))
	require.Contains(t, buf.String(), "Loading messages...")
}
