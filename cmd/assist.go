////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"
	"strings"

	"github.com/caffeinepub/vibechat/assist"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// assistCmd groups the writing helpers. They run locally and need no session.
var assistCmd = &cobra.Command{
	Use:   "assist",
	Short: "Suggests replies and rewrites drafts",
}

var assistRepliesCmd = &cobra.Command{
	Use:   "replies <message>",
	Short: "Suggests quick replies to a received message",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range assist.SmartReplies(strings.Join(args, " ")) {
			fmt.Printf("%s. %s\n", r.ID, r.Text)
		}
	},
}

var assistRewriteCmd = &cobra.Command{
	Use:   "rewrite <draft>",
	Short: "Rewrites a draft in another tone",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mode, err := assist.ParseMode(viper.GetString(modeFlag))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Println(assist.Rewrite(strings.Join(args, " "), mode))
	},
}

func init() {
	assistCmd.AddCommand(assistRepliesCmd, assistRewriteCmd)
	rootCmd.AddCommand(assistCmd)

	assistRewriteCmd.Flags().String(modeFlag, "shorter",
		"Tone of the rewrite: shorter, friendly or formal")
	viper.BindPFlag(modeFlag, assistRewriteCmd.Flags().Lookup(modeFlag))
}
