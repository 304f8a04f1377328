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
	"os"
	"os/signal"
	"syscall"

	"github.com/caffeinepub/vibechat/timeline"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// chatsCmd lists the caller's conversations.
var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Lists your conversations",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		rows, err := m.Conversations().Rows(context.Background())
		exitOnErr(m, err)
		if len(rows) == 0 {
			fmt.Println("No conversations yet")
			return
		}
		for _, r := range rows {
			if r.Err != nil {
				fmt.Printf("[%s] %s  (%v)\n", r.Initials, r.ConversationID, r.Err)
				continue
			}
			fmt.Printf("[%s] %s  %s\n", r.Initials, r.ConversationID,
				r.DisplayName)
		}
	},
}

// chatCmd groups the single-conversation subcommands.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Starts conversations",
}

// chatNewCmd creates a conversation with another user.
var chatNewCmd = &cobra.Command{
	Use:   "new <principal>",
	Short: "Starts a conversation with the user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		id, err := m.CreateConversation(context.Background(), args[0])
		exitOnErr(m, err)
		fmt.Println(id)
	},
}

// timelineCmd prints the messages of a conversation.
var timelineCmd = &cobra.Command{
	Use:   "timeline <conversation>",
	Short: "Prints the messages of a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)
		ctx := context.Background()

		if !viper.GetBool(watchFlag) {
			view, err := m.Timeline(args[0], nil).Refetch(ctx)
			if err != nil {
				jww.ERROR.Printf("Failed to load messages: %+v", err)
			}
			if err = timeline.Render(os.Stdout, view); err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			return
		}

		tl := m.Timeline(args[0], func(v timeline.View) {
			fmt.Print("\033[H\033[2J")
			if err := renderStyled(os.Stdout, v); err != nil {
				jww.ERROR.Printf("Failed to render: %+v", err)
			}
		})
		if err := tl.Mount(ctx); err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		defer tl.Unmount()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
	},
}

func init() {
	chatCmd.AddCommand(chatNewCmd)
	rootCmd.AddCommand(chatsCmd, chatCmd, timelineCmd)

	timelineCmd.Flags().BoolP(watchFlag, "w", false,
		"Keep polling and redraw on every new message until interrupted")
	viper.BindPFlag(watchFlag, timelineCmd.Flags().Lookup(watchFlag))
}
