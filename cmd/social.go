////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"fmt"

	"github.com/caffeinepub/vibechat/messenger"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/caffeinepub/vibechat/social"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
)

// socialClient returns the messenger's social client, exiting when no
// session directory holds the social store.
func socialClient(m *messenger.Messenger) *social.Client {
	s := m.Social()
	if s == nil {
		jww.FATAL.Panicf("Following and reactions need --%s", sessionFlag)
	}
	return s
}

func parsePrincipal(text string) remote.Identity {
	id, err := remote.ParseIdentity(text)
	if err != nil {
		jww.FATAL.Panicf("Invalid principal %q: %+v", text, err)
	}
	return id
}

var followCmd = &cobra.Command{
	Use:   "follow <principal>",
	Short: "Follows a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)
		exitOnErr(m, socialClient(m).Follow(context.Background(),
			parsePrincipal(args[0])))
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <principal>",
	Short: "Stops following a user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)
		exitOnErr(m, socialClient(m).Unfollow(context.Background(),
			parsePrincipal(args[0])))
	},
}

var followingCmd = &cobra.Command{
	Use:   "following",
	Short: "Lists the users you follow",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		ids, err := socialClient(m).Following().Read(context.Background())
		exitOnErr(m, err)
		for _, id := range ids {
			fmt.Println(id)
		}
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <message> <emoji>",
	Short: "Reacts to a message",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)
		exitOnErr(m, socialClient(m).Like(context.Background(), args[0], args[1]))
	},
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike <message>",
	Short: "Removes your reaction to a message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)
		exitOnErr(m, socialClient(m).Unlike(context.Background(), args[0]))
	},
}

var likesCmd = &cobra.Command{
	Use:   "likes <message>",
	Short: "Lists the reactions to a message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		likes, err := socialClient(m).Likes(args[0]).Read(context.Background())
		exitOnErr(m, err)
		for _, l := range likes {
			fmt.Printf("%s %s\n", l.Reaction, l.User)
		}
	},
}

func init() {
	rootCmd.AddCommand(followCmd, unfollowCmd, followingCmd, likeCmd,
		unlikeCmd, likesCmd)
}
