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

	"github.com/caffeinepub/vibechat/composer"
	"github.com/caffeinepub/vibechat/messenger"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// sendCmd sends one message with optional attachments.
var sendCmd = &cobra.Command{
	Use:   "send <conversation>",
	Short: "Sends a message to a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		paths := viper.GetStringSlice(fileFlag)
		files := make([]composer.File, 0, len(paths))
		for _, path := range paths {
			f, err := composer.FileFromPath(path)
			if err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			files = append(files, f)
		}

		draft := messenger.Draft{
			Text:            viper.GetString(messageFlag),
			Files:           files,
			ShareToWhatsApp: viper.GetBool(whatsAppFlag),
		}
		result, err := m.Send(context.Background(), args[0], draft,
			func(percent int) {
				jww.INFO.Printf("Upload progress: %d%%", percent)
			})
		exitOnErr(m, err)

		if result.Notice != "" {
			fmt.Println(result.Notice)
		}
		if !result.Sent {
			fmt.Println("Nothing to send")
			return
		}
		fmt.Println("Sent")
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP(messageFlag, "m", "", "Message to send")
	viper.BindPFlag(messageFlag, sendCmd.Flags().Lookup(messageFlag))

	sendCmd.Flags().StringSliceP(fileFlag, "f", nil,
		"Image or video to attach. Repeat for several")
	viper.BindPFlag(fileFlag, sendCmd.Flags().Lookup(fileFlag))

	sendCmd.Flags().Bool(whatsAppFlag, false,
		"Also share the text on WhatsApp")
	viper.BindPFlag(whatsAppFlag, sendCmd.Flags().Lookup(whatsAppFlag))
}
