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
	"strings"

	"github.com/caffeinepub/vibechat/contacts"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// contactsCmd finds which phone numbers belong to registered users.
var contactsCmd = &cobra.Command{
	Use:   "contacts [numbers...]",
	Short: "Finds registered users among phone numbers",
	Long: "Finds registered users among the phone numbers given as " +
		"arguments or pasted into a text file, one or more per line",
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		numbers := contacts.ExtractPhoneNumbers(strings.Join(args, "\n"))
		if path := viper.GetString(contactsFileFlag); path != "" {
			text, err := os.ReadFile(path)
			if err != nil {
				jww.FATAL.Panicf("Failed to read %s: %+v", path, err)
			}
			numbers = append(numbers,
				contacts.ExtractPhoneNumbers(string(text))...)
		}
		if len(numbers) == 0 {
			fmt.Println("No phone numbers given")
			return
		}

		result, err := m.MatchContacts(context.Background(), numbers)
		exitOnErr(m, err)
		for _, p := range result.Matched {
			fmt.Printf("%s  %s\n", p.PhoneNumber, p.FullName)
		}
		fmt.Printf("%d found, %d not found\n", len(result.Matched),
			result.NotFound)
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)

	contactsCmd.Flags().String(contactsFileFlag, "",
		"Text file to extract phone numbers from")
	viper.BindPFlag(contactsFileFlag, contactsCmd.Flags().Lookup(contactsFileFlag))
}
