////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
)

// settingsCmd prints the device-local preferences.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Shows the local preferences",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		st, err := m.Settings().Load()
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Printf("Onboarding seen:        %t\n", st.OnboardingSeen)
		fmt.Printf("Install callout hidden: %t\n", st.InstallCalloutHidden)
		if !m.Settings().Persistent() {
			fmt.Printf("Settings are not saved without --%s\n", sessionFlag)
		}
	},
}

// settingsOnboardingCmd dismisses the welcome screen.
var settingsOnboardingCmd = &cobra.Command{
	Use:   "onboarding",
	Short: "Marks the welcome screen as seen",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		if err := m.Settings().MarkOnboardingSeen(); err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
	},
}

// settingsCalloutCmd hides or shows the install prompt.
var settingsCalloutCmd = &cobra.Command{
	Use:       "callout <hide|show>",
	Short:     "Hides or shows the install prompt",
	Args:      cobra.ExactValidArgs(1),
	ValidArgs: []string{"hide", "show"},
	Run: func(cmd *cobra.Command, args []string) {
		m := initMessenger()
		defer closeMessenger(m)

		var err error
		if args[0] == "hide" {
			err = m.Settings().SetInstallCalloutHidden(true)
		} else {
			err = m.Settings().ClearInstallCalloutHidden()
		}
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
	},
}

func init() {
	settingsCmd.AddCommand(settingsOnboardingCmd, settingsCalloutCmd)
	rootCmd.AddCommand(settingsCmd)
}
