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
	"github.com/caffeinepub/vibechat/profile"
	"github.com/caffeinepub/vibechat/remote"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

// profileCmd groups the profile subcommands.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Shows and edits user profiles",
}

// profileShowCmd prints a profile, the caller's by default.
var profileShowCmd = &cobra.Command{
	Use:   "show [principal]",
	Short: "Prints a user's profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)
		ctx := context.Background()

		var p *remote.UserProfile
		var err error
		if len(args) == 0 {
			p, err = m.Profiles().Caller(ctx)
		} else {
			var id remote.Identity
			id, err = remote.ParseIdentity(args[0])
			if err != nil {
				jww.FATAL.Panicf("Invalid principal %q: %+v", args[0], err)
			}
			p, err = m.Profiles().Lookup(ctx, id)
		}
		exitOnErr(m, err)
		if p == nil {
			fmt.Println("No profile")
			return
		}

		fmt.Printf("Name:    %s\n", p.FullName)
		fmt.Printf("Phone:   %s\n", p.PhoneNumber)
		if p.ProfilePicture != nil {
			fmt.Printf("Picture: %s\n", p.ProfilePicture.DirectURL())
		}
	},
}

// profileSaveCmd saves the caller's profile.
var profileSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Saves your profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		d := profile.Draft{
			FullName:    viper.GetString(nameFlag),
			PhoneNumber: viper.GetString(phoneFlag),
		}
		if path := viper.GetString(pictureFlag); path != "" {
			f, err := composer.FileFromPath(path)
			if err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			d.Picture = &f
		}

		m.Profiles().OnProgress(func(percent int) {
			jww.INFO.Printf("Upload progress: %d%%", percent)
		})
		exitOnErr(m, m.SaveProfile(context.Background(), d))
		fmt.Println("Profile saved")
	},
}

// profileCheckPhoneCmd checks a phone number before registration.
var profileCheckPhoneCmd = &cobra.Command{
	Use:   "check-phone <number>",
	Short: "Checks that a phone number is valid and not registered",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		exitOnErr(m, m.Profiles().CheckPhone(context.Background(), args[0]))
		fmt.Println("Phone number is available")
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profileSaveCmd, profileCheckPhoneCmd)
	rootCmd.AddCommand(profileCmd)

	profileSaveCmd.Flags().String(nameFlag, "", "Full name")
	viper.BindPFlag(nameFlag, profileSaveCmd.Flags().Lookup(nameFlag))

	profileSaveCmd.Flags().String(phoneFlag, "", "Phone number")
	viper.BindPFlag(phoneFlag, profileSaveCmd.Flags().Lookup(phoneFlag))

	profileSaveCmd.Flags().String(pictureFlag, "",
		"JPEG, PNG or WebP profile picture. Empty keeps the current one")
	viper.BindPFlag(pictureFlag, profileSaveCmd.Flags().Lookup(pictureFlag))
}
