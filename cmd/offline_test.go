////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"testing"

	"github.com/caffeinepub/vibechat/remote"
	"github.com/stretchr/testify/require"
	"gitlab.com/elixxir/ekv"
)

// Tests that a conversation created in one offline run can be read in the
// next one on the same session store.
func TestOfflineStore(t *testing.T) {
	ctx := context.Background()
	fs, err := ekv.NewFilestore(t.TempDir(), "password")
	require.NoError(t, err)
	store := newOfflineStore(fs)

	first, err := store.load()
	require.NoError(t, err)
	id, err := first.As("alice").CreateConversation(ctx,
		[]remote.Identity{"bob"})
	require.NoError(t, err)
	require.NoError(t, first.As("alice").SendMessage(ctx, id, remote.Message{
		Sender: "alice", Text: "still here", Timestamp: 1}))
	require.NoError(t, store.save(first))

	second, err := newOfflineStore(fs).load()
	require.NoError(t, err)
	msgs, err := second.As("bob").GetMessages(ctx, id)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "still here", msgs[0].Text)
}
